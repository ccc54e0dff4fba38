package agent

import "errors"

var (
	// ErrAgentNotFound is returned when a named agent has no registered config.
	ErrAgentNotFound = errors.New("agent not found")
	// ErrAgentExists is returned by Register when the name is already taken.
	ErrAgentExists = errors.New("agent already registered")
	// ErrEmptyAgentName is returned when Register/Replace is called with "".
	ErrEmptyAgentName = errors.New("agent name must not be empty")
)
