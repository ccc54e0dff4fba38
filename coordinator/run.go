package coordinator

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/tailored-agentic-units/taskteam/domain"
	"github.com/tailored-agentic-units/taskteam/orchestrate/state"
)

// Run spawns cfg.NumWorkers worker subprocesses, monitors them to
// completion (restarting crashed workers up to MaxWorkerRestarts times),
// and returns the aggregated TeamResult. extraArgs are appended verbatim
// to each worker's argv, e.g. tracker/provider connection flags that do
// not belong in the persisted TeamConfig.
func Run(ctx context.Context, cfg domain.TeamConfig, extraArgs []string, logger *slog.Logger) (domain.TeamResult, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.NumWorkers < 1 {
		return domain.TeamResult{}, fmt.Errorf("coordinator: num_workers must be >= 1, got %d", cfg.NumWorkers)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	start := time.Now()
	hubCfg := cfg.EventBus
	if hubCfg.Name == "" {
		hubCfg.Name = cfg.Team
	}
	if hubCfg.Logger == nil {
		hubCfg.Logger = logger
	}
	bus := newEventBus(ctx, hubCfg)
	defer bus.closeAll()

	statusCh := bus.subscribe()
	go printStatusLoop(ctx, statusCh)

	checkpointCh := bus.subscribe()
	checkpointStore, err := state.GetCheckpointStore(cfg.Checkpoint.Store)
	if err != nil {
		return domain.TeamResult{}, fmt.Errorf("coordinator: %w", err)
	}
	checkpointCtx, stopCheckpoint := context.WithCancel(ctx)
	defer stopCheckpoint()
	checkpointDone := make(chan struct{})
	go func() {
		checkpointLoop(checkpointCtx, cfg.Team, checkpointCh, checkpointStore, cfg.Checkpoint)
		close(checkpointDone)
	}()

	workers := make([]*workerProcess, cfg.NumWorkers)
	for i := range workers {
		workers[i] = newWorkerProcess(i, cfg, extraArgs)
	}

	var wg sync.WaitGroup
	for _, w := range workers {
		wg.Add(1)
		go func(w *workerProcess) {
			defer wg.Done()
			runWithRestarts(ctx, w, bus, logger)
		}(w)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		logger.Info("coordinator: shutdown requested, stopping workers")
		for _, w := range workers {
			w.stop()
		}
		<-done
	}

	result := aggregate(workers, time.Since(start))
	printSummary(result)

	// Let the checkpoint loop make its final save before deciding whether
	// to delete, so the delete is not undone by a later flush.
	stopCheckpoint()
	<-checkpointDone

	if result.Failed == 0 && !cfg.Checkpoint.Preserve {
		_ = checkpointStore.Delete(cfg.Team)
	}

	return result, nil
}

// runWithRestarts starts w, waits for it to exit, and respawns it up to
// MaxWorkerRestarts times if it exits with a code other than 0 or 130
// (interrupted) while ctx is still live.
func runWithRestarts(ctx context.Context, w *workerProcess, bus *eventBus, logger *slog.Logger) {
	for {
		if err := w.start(ctx, bus, logger); err != nil {
			w.mu.Lock()
			w.status.Update(domain.WorkerFailed, "", fmt.Sprintf("failed to start: %s", err))
			w.mu.Unlock()
			return
		}

		code := w.wait()
		if ctx.Err() != nil {
			return
		}
		if code == 0 || code == 130 {
			return
		}

		w.mu.Lock()
		w.restartCount++
		restartCount := w.restartCount
		w.mu.Unlock()

		if restartCount > MaxWorkerRestarts {
			w.mu.Lock()
			w.status.Update(domain.WorkerFailed, "", fmt.Sprintf("exited code=%d, restart budget exhausted", code))
			w.mu.Unlock()
			logger.Error("coordinator: worker exhausted restart budget", "worker_id", w.workerID, "exit_code", code)
			return
		}

		w.mu.Lock()
		w.status.Update(domain.WorkerFailed, "", fmt.Sprintf("crashed (code=%d), restarting in %s", code, RestartBackoff))
		w.mu.Unlock()
		logger.Warn("coordinator: worker crashed, restarting",
			"worker_id", w.workerID, "exit_code", code, "attempt", restartCount)

		select {
		case <-ctx.Done():
			return
		case <-time.After(RestartBackoff):
		}
	}
}

// aggregate sums completed/failed across all workers into a TeamResult.
// Skipped is always zero: this core has no notion of a task abandoned
// without ever being attempted by some worker.
func aggregate(workers []*workerProcess, duration time.Duration) domain.TeamResult {
	result := domain.TeamResult{DurationSeconds: roundTo1(duration.Seconds())}
	result.WorkerResults = make([]domain.WorkerStatus, len(workers))
	for i, w := range workers {
		snap := w.snapshot()
		result.WorkerResults[i] = snap
		result.Completed += snap.TasksCompleted
		result.Failed += snap.TasksFailed
	}
	return result
}

func roundTo1(v float64) float64 {
	return float64(int64(v*10+0.5)) / 10
}
