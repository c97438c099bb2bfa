// Package cache provides a small generic LRU cache.
//
// LRU bounds per-key resources held in memory. An eviction callback lets the
// owner release whatever the evicted value holds (for example, closing a
// per-recipient broadcaster in the realtime hub).
package cache
