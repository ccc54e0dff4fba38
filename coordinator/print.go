package coordinator

import (
	"context"
	"fmt"
	"strings"

	"github.com/tailored-agentic-units/taskteam/domain"
	"github.com/tailored-agentic-units/taskteam/orchestrate/hub"
)

// printStatusLoop consumes events from ch and reprints a one-line status
// summary after every event it receives, mirroring the original source's
// _print_status format: "W0[*:ENG-1] W1[.]  [2 done, 0 fail]".
//
// It keeps its own per-worker snapshot built purely from the event
// stream, independent of workerProcess, so this subscriber could in
// principle run in a separate process consuming the same bus.
func printStatusLoop(ctx context.Context, ch *hub.MessageChannel[domain.WorkerEvent]) {
	snapshots := map[int]domain.WorkerStatus{}

	for {
		event, err := ch.Receive(ctx)
		if err != nil {
			return
		}

		snap := snapshots[event.WorkerID]
		snap.WorkerID = event.WorkerID
		switch event.Event {
		case domain.EventKindState:
			if validWorkerState(event.State) {
				snap.State = event.State
			}
			if snap.State == domain.WorkerClaiming || snap.State == domain.WorkerWorking {
				snap.CurrentTask = event.Task
			} else {
				snap.CurrentTask = ""
			}
		case domain.EventKindResult:
			if event.Success != nil && *event.Success {
				snap.TasksCompleted++
			} else {
				snap.TasksFailed++
			}
		}
		snapshots[event.WorkerID] = snap

		printStatusLine(snapshots)
	}
}

func printStatusLine(snapshots map[int]domain.WorkerStatus) {
	ids := make([]int, 0, len(snapshots))
	for id := range snapshots {
		ids = append(ids, id)
	}
	sortInts(ids)

	var parts []string
	completed, failed := 0, 0
	for _, id := range ids {
		s := snapshots[id]
		completed += s.TasksCompleted
		failed += s.TasksFailed
		if s.CurrentTask != "" {
			parts = append(parts, fmt.Sprintf("W%d[%s:%s]", id, s.State.StatusGlyph(), s.CurrentTask))
		} else {
			parts = append(parts, fmt.Sprintf("W%d[%s]", id, s.State.StatusGlyph()))
		}
	}

	fmt.Printf("%s  [%d done, %d fail]\n", strings.Join(parts, " "), completed, failed)
}

func sortInts(ids []int) {
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j-1] > ids[j]; j-- {
			ids[j-1], ids[j] = ids[j], ids[j-1]
		}
	}
}

// printSummary prints the final run report, mirroring the original
// source's _print_summary format.
func printSummary(result domain.TeamResult) {
	fmt.Println()
	fmt.Println("=== TEAM RUN COMPLETE ===")
	fmt.Printf("Completed:  %d\n", result.Completed)
	fmt.Printf("Failed:     %d\n", result.Failed)
	fmt.Printf("Skipped:    %d\n", result.Skipped)
	fmt.Printf("Duration:   %.1f min\n", result.DurationSeconds/60)
	fmt.Println()
	for _, w := range result.WorkerResults {
		fmt.Printf("Worker %d: %d completed, %d failed\n", w.WorkerID, w.TasksCompleted, w.TasksFailed)
	}
}
