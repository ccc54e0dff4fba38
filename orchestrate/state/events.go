package state

import "github.com/tailored-agentic-units/taskteam/observability"

const (
	// State operations
	EventStateCreate observability.EventType = "state.create"
	EventStateClone  observability.EventType = "state.clone"
	EventStateSet    observability.EventType = "state.set"
	EventStateMerge  observability.EventType = "state.merge"
)
