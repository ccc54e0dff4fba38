package coordinator

import (
	"context"

	"github.com/tailored-agentic-units/taskteam/domain"
	"github.com/tailored-agentic-units/taskteam/observability"
	"github.com/tailored-agentic-units/taskteam/orchestrate/config"
	"github.com/tailored-agentic-units/taskteam/orchestrate/hub"
	"github.com/tailored-agentic-units/taskteam/orchestrate/state"
)

// checkpointLoop is the Run-state Checkpoint subscriber: it folds the
// event stream into a state.State snapshot keyed by worker id and saves
// it to store every cfg.Interval events (cfg.Interval <= 1 means every
// event), so an operator can inspect the in-flight run without reading
// the coordinator's own memory. Run, once the team finishes, waits for
// this loop's final save and then deletes the snapshot when no task
// failed and cfg.Preserve is not set.
//
// Adapted from orchestrate/state's CheckpointStore, built for the DAG
// graph executor's node-by-node recovery — here it persists one
// accumulating snapshot per team run instead of per graph node, and
// RunID is the team name rather than a generated execution id.
func checkpointLoop(ctx context.Context, team string, ch *hub.MessageChannel[domain.WorkerEvent], store state.CheckpointStore, cfg config.CheckpointConfig) {
	snapshot := state.New(observability.NoOpObserver{})
	snapshot.RunID = team

	every := cfg.Interval
	if every < 1 {
		every = 1
	}
	seen := 0

	for {
		event, err := ch.Receive(ctx)
		if err != nil {
			if seen > 0 {
				_ = store.Save(snapshot)
			}
			return
		}

		key := workerStateKey(event.WorkerID)
		current, _ := snapshot.Get(key)
		entry, _ := current.(map[string]any)
		if entry == nil {
			entry = map[string]any{}
		}

		switch event.Event {
		case domain.EventKindState:
			entry["state"] = string(event.State)
			entry["task"] = event.Task
			entry["message"] = event.Message
		case domain.EventKindResult:
			if event.Success != nil && *event.Success {
				entry["last_result"] = "success"
			} else {
				entry["last_result"] = "failure"
			}
			entry["last_task"] = event.Task
		}

		snapshot = snapshot.Set(key, entry)
		seen++
		if seen%every == 0 {
			_ = store.Save(snapshot)
		}
	}
}

func workerStateKey(workerID int) string {
	return "worker:" + fmtInt(workerID)
}

func fmtInt(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var digits []byte
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	if neg {
		return "-" + string(digits)
	}
	return string(digits)
}
