// Package broadcast fans typed messages out to in-process subscribers.
//
// A Broadcaster never blocks the publisher: each subscriber owns a buffered
// channel and a message that does not fit is dropped for that subscriber only.
// Subscriptions end when their context is cancelled or Close is called.
package broadcast
