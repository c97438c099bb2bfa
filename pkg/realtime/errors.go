package realtime

import "errors"

var (
	ErrNotConnected = errors.New("recipient is not connected")
	ErrNotDelivered = errors.New("event was not accepted by any connection")
	ErrHubClosed    = errors.New("hub is closed")
	ErrStreaming    = errors.New("failed to stream events")
)
