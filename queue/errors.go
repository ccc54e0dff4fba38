package queue

import "errors"

var (
	// ErrConnection is returned when the tracker's RPC channel is
	// unavailable. Never fatal within a worker's lifetime — the poll
	// loop retries on the next iteration.
	ErrConnection = errors.New("queue: connection error")

	// ErrProtocol is returned when a tracker response cannot be parsed
	// against the minimal schema this client expects.
	ErrProtocol = errors.New("queue: protocol error")
)
