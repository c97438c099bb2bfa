// Package realtime tracks which recipients hold a live connection and pushes
// named events to them.
//
// Hub keeps one broadcaster per connected recipient in a bounded LRU; every
// connection (browser tab) is a subscriber of its recipient's broadcaster.
// Delivery is fire-and-forget: a slow connection whose buffer is full misses
// events rather than blocking the sender. Stream serves a connection as
// Server-Sent Events.
package realtime
