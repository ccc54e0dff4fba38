package domain

import "time"

// WorkerState is a worker's lifecycle tag, mirrored on the wire in
// WorkerEvent and held coordinator-side in WorkerStatus.
type WorkerState string

const (
	WorkerIdle      WorkerState = "idle"
	WorkerClaiming  WorkerState = "claiming"
	WorkerWorking   WorkerState = "working"
	WorkerCompleted WorkerState = "completed"
	WorkerFailed    WorkerState = "failed"
	WorkerStopped   WorkerState = "stopped"
)

// WorkerStatus is the coordinator-side, mutable view of one worker.
// current_task is non-empty only while State is WorkerClaiming or
// WorkerWorking; TasksCompleted/TasksFailed are monotonically
// non-decreasing; LastUpdate advances on every mutation (P2).
type WorkerStatus struct {
	WorkerID       int         `json:"worker_id"`
	State          WorkerState `json:"state"`
	CurrentTask    string      `json:"current_task,omitempty"`
	Message        string      `json:"message,omitempty"`
	TasksCompleted int         `json:"tasks_completed"`
	TasksFailed    int         `json:"tasks_failed"`
	StartedAt      time.Time   `json:"started_at"`
	LastUpdate     time.Time   `json:"last_update"`
}

// Update applies a lifecycle transition, clearing CurrentTask whenever the
// new state is neither claiming nor working, and always advancing
// LastUpdate.
func (s *WorkerStatus) Update(state WorkerState, task, message string) {
	s.State = state
	s.Message = message
	if state == WorkerClaiming || state == WorkerWorking {
		s.CurrentTask = task
	} else {
		s.CurrentTask = ""
	}
	s.LastUpdate = time.Now()
}

// StatusGlyph renders the compact bracket letter used in the coordinator's
// status line (spec.md §4.5).
func (s WorkerState) StatusGlyph() string {
	switch s {
	case WorkerWorking:
		return "*"
	case WorkerIdle:
		return "."
	case WorkerClaiming:
		return "?"
	case WorkerCompleted:
		return "✓" // ✓
	case WorkerFailed:
		return "!"
	case WorkerStopped:
		return "■" // ■
	default:
		return "?"
	}
}

// WorkerEvent is the wire format emitted as one JSON-line per event on a
// worker subprocess's stdout (spec.md §3). Exactly one of the two shapes
// is populated per logical event: Event == "state" carries State/Task/
// Message; Event == "result" carries Task/Success/Message.
type WorkerEvent struct {
	Event    string      `json:"event"`
	Ts       float64     `json:"ts"`
	WorkerID int         `json:"worker_id"`
	State    WorkerState `json:"state,omitempty"`
	Task     string      `json:"task,omitempty"`
	Message  string      `json:"message,omitempty"`
	Success  *bool       `json:"success,omitempty"`
}

const (
	EventKindState  = "state"
	EventKindResult = "result"
)

// TeamResult is the Coordinator's final aggregate, computed after every
// worker has permanently stopped.
type TeamResult struct {
	Completed       int            `json:"completed"`
	Failed          int            `json:"failed"`
	Skipped         int            `json:"skipped"`
	DurationSeconds float64        `json:"duration_seconds"`
	WorkerResults   []WorkerStatus `json:"worker_results"`
}

// Total is the number of tasks this run disposed of, one way or another.
func (r TeamResult) Total() int {
	return r.Completed + r.Failed + r.Skipped
}
