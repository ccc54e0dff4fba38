// Package worker implements the Worker process: a loop that polls the
// Task Queue Client, claims the highest-priority available task, drives
// it through a fresh Execution Engine Adapter, reports the outcome back
// to the tracker, and emits JSON-line lifecycle events on stdout for the
// Coordinator to consume.
//
// Grounded directly on the original source's worker.py — the poll/claim/
// execute/report loop, the three-consecutive-empty-poll exit condition,
// and the 2-second inter-task pause are all carried over unchanged in
// meaning; the JSON-lines event emission is carried over in shape
// (domain.WorkerEvent mirrors _emit/_emit_state/_emit_result).
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/tailored-agentic-units/taskteam/agent"
	"github.com/tailored-agentic-units/taskteam/budget"
	"github.com/tailored-agentic-units/taskteam/core/config"
	"github.com/tailored-agentic-units/taskteam/domain"
	"github.com/tailored-agentic-units/taskteam/engine"
	"github.com/tailored-agentic-units/taskteam/queue"
	"github.com/tailored-agentic-units/taskteam/recorder"
	"github.com/tailored-agentic-units/taskteam/session"
)

// maxConsecutiveEmptyPolls is the number of empty poll cycles a worker
// tolerates before concluding the queue is drained and exiting.
const maxConsecutiveEmptyPolls = 3

// interTaskPause separates one task's disposal from the next poll.
const interTaskPause = 2 * time.Second

// defaultMaxTokens bounds the budget monitor when the caller does not
// override it via Config.MaxTokens.
const defaultMaxTokens = 100_000

// Config is the immutable input to Run, assembled by the Coordinator (or
// by main.go's subprocess re-exec path) from CLI flags and environment.
type Config struct {
	WorkerID     int
	Team         domain.TeamConfig
	TrackerURL   string
	TrackerKey   string
	ProviderURL  string
	ProviderKey  string
	MaxTokens    int
	Logger       *slog.Logger
	EventsOut    io.Writer
}

// Run executes the worker loop to completion, returning the final status.
// It never returns an error for ordinary task failures — those are
// reflected in the returned WorkerStatus and reported to the tracker and
// the Coordinator inline. A non-nil error indicates the worker could not
// even connect to the tracker.
func Run(ctx context.Context, cfg Config) (domain.WorkerStatus, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	emitter := newEmitter(cfg.EventsOut, cfg.WorkerID)

	status := domain.WorkerStatus{WorkerID: cfg.WorkerID, StartedAt: time.Now()}
	emitter.state(domain.WorkerIdle, "", "starting")

	q := queue.New(cfg.Team.Team, cfg.TrackerURL, cfg.TrackerKey, logger)
	if err := q.Connect(); err != nil {
		msg := fmt.Sprintf("failed to connect to task tracker: %s", err)
		logger.Error("worker: connect failed", "worker_id", cfg.WorkerID, "error", err)
		emitter.state(domain.WorkerFailed, "", msg)
		status.Update(domain.WorkerFailed, "", msg)
		return status, err
	}
	defer q.Disconnect()

	consecutiveEmpty := 0

	for {
		if ctx.Err() != nil {
			logger.Info("worker: cancelled", "worker_id", cfg.WorkerID)
			break
		}

		if cfg.Team.MaxTasks > 0 && status.TasksCompleted >= cfg.Team.MaxTasks {
			logger.Info("worker: reached max_tasks", "worker_id", cfg.WorkerID, "max_tasks", cfg.Team.MaxTasks)
			break
		}

		emitter.state(domain.WorkerIdle, "", "polling for tasks")
		tasks, err := q.GetTodo(ctx, "")
		if err != nil {
			logger.Warn("worker: poll error", "worker_id", cfg.WorkerID, "error", err)
			if sleepOrDone(ctx, cfg.Team.PollInterval) {
				break
			}
			continue
		}

		if len(tasks) == 0 {
			consecutiveEmpty++
			if consecutiveEmpty >= maxConsecutiveEmptyPolls {
				logger.Info("worker: no tasks after repeated polls, exiting",
					"worker_id", cfg.WorkerID, "polls", consecutiveEmpty)
				break
			}
			emitter.state(domain.WorkerIdle, "", fmt.Sprintf("no tasks (poll %d/%d)", consecutiveEmpty, maxConsecutiveEmptyPolls))
			if sleepOrDone(ctx, cfg.Team.PollInterval) {
				break
			}
			continue
		}
		consecutiveEmpty = 0

		task, claimed := claimHighestPriority(ctx, q, tasks, cfg.WorkerID, emitter)
		if !claimed {
			emitter.state(domain.WorkerIdle, "", "all tasks claimed by others, waiting")
			if sleepOrDone(ctx, cfg.Team.PollInterval) {
				break
			}
			continue
		}

		logger.Info("worker: executing task", "worker_id", cfg.WorkerID, "task", task.Identifier, "title", task.Title)
		success, execErr := executeTask(ctx, cfg, task, logger)
		if execErr != nil {
			logger.Error("worker: task crashed", "worker_id", cfg.WorkerID, "task", task.Identifier, "error", execErr)
		}

		if success {
			status.TasksCompleted++
			if err := q.Complete(ctx, task.Identifier, cfg.WorkerID); err != nil {
				logger.Warn("worker: complete report failed", "task", task.Identifier, "error", err)
			}
			emitter.result(task.Identifier, true, fmt.Sprintf("done: %s", task.Title))
			status.Update(domain.WorkerCompleted, task.Identifier, fmt.Sprintf("done: %s", task.Title))
		} else {
			status.TasksFailed++
			reason := fmt.Sprintf("worker-%d failed to execute", cfg.WorkerID)
			if execErr != nil {
				reason = execErr.Error()
			}
			if err := q.Fail(ctx, task.Identifier, cfg.WorkerID, reason); err != nil {
				logger.Warn("worker: fail report failed", "task", task.Identifier, "error", err)
			}
			emitter.result(task.Identifier, false, reason)
			status.Update(domain.WorkerFailed, task.Identifier, reason)
		}

		if sleepOrDone(ctx, interTaskPause) {
			break
		}
	}

	status.Update(domain.WorkerStopped, "", "worker finished")
	emitter.state(domain.WorkerStopped, "", "worker finished")
	return status, nil
}

// recorderAdapter discards RecordEvent's return value so *recorder.Recorder
// satisfies engine.EventRecorder without the engine package importing
// recorder (and thereby depending on its concrete Session/SessionEvent
// types).
type recorderAdapter struct {
	rec *recorder.Recorder
}

func (r recorderAdapter) RecordEvent(eventType string, data map[string]any) {
	r.rec.RecordEvent(eventType, data)
}

// claimHighestPriority tries each task in priority order (GetTodo already
// sorted them) until one successfully claims, or none do.
func claimHighestPriority(ctx context.Context, q *queue.TaskQueue, tasks []domain.Task, workerID int, emitter *emitter) (domain.Task, bool) {
	for _, task := range tasks {
		if task.Identifier == "" {
			continue
		}
		emitter.state(domain.WorkerClaiming, task.Identifier, fmt.Sprintf("claiming %s", task.Identifier))
		if q.Claim(ctx, task.Identifier, workerID) {
			return task, true
		}
	}
	return domain.Task{}, false
}

// executeTask builds a fresh Agent and Execution Engine Adapter per task
// (spec.md §4.4's hard invariant) and drives it to a terminal status.
func executeTask(ctx context.Context, cfg Config, task domain.Task, logger *slog.Logger) (bool, error) {
	a, err := agent.New(&config.AgentConfig{
		Provider: &config.ProviderConfig{Name: "ollama", BaseURL: cfg.ProviderURL, APIKey: cfg.ProviderKey},
		Model:    &config.ModelConfig{Name: cfg.Team.Model},
	})
	if err != nil {
		return false, fmt.Errorf("worker: build agent: %w", err)
	}

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	rec := recorder.New(cfg.Team.ProjectDir, logger)
	if _, err := rec.Start(task.Identifier); err != nil {
		logger.Warn("worker: session recorder start failed", "task", task.Identifier, "error", err)
	}

	ad := engine.New(a, session.NewMemorySession(), budget.New(maxTokens),
		engine.WithRecorder(recorderAdapter{rec}),
		engine.WithCheckpointDir(cfg.Team.ProjectDir))
	prompt := engine.BuildPrompt(engine.PromptParams{Team: cfg.Team.Team, ProjectDir: cfg.Team.ProjectDir, Task: task})

	result, err := ad.Run(ctx, prompt)

	endStatus := recorder.StatusCompleted
	if err != nil || result.Status == engine.StatusError {
		endStatus = recorder.StatusFailed
	}
	if _, endErr := rec.End(endStatus); endErr != nil {
		logger.Warn("worker: session recorder end failed", "task", task.Identifier, "error", endErr)
	}

	if err != nil {
		return false, err
	}

	switch result.Status {
	case engine.StatusComplete:
		return true, nil
	case engine.StatusContextLimit:
		// The task ran out of budget before finishing; treat as a
		// retryable failure so it returns to Todo for another worker.
		return false, fmt.Errorf("context limit reached: %s", result.Response)
	default:
		return false, fmt.Errorf("task did not complete: %s", result.Response)
	}
}

// sleepOrDone sleeps for d, or returns true immediately if ctx is done.
func sleepOrDone(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return true
	case <-timer.C:
		return false
	}
}

// emitter writes domain.WorkerEvent JSON lines to an output stream —
// stdout in production, so the Coordinator's per-child reader goroutine
// can parse them; anything else (e.g. a buffer) in tests.
type emitter struct {
	out      io.Writer
	workerID int
}

func newEmitter(out io.Writer, workerID int) *emitter {
	return &emitter{out: out, workerID: workerID}
}

func (e *emitter) state(state domain.WorkerState, task, message string) {
	e.emit(domain.WorkerEvent{
		Event:    domain.EventKindState,
		Ts:       nowUnix(),
		WorkerID: e.workerID,
		State:    state,
		Task:     task,
		Message:  message,
	})
}

func (e *emitter) result(task string, success bool, message string) {
	s := success
	e.emit(domain.WorkerEvent{
		Event:    domain.EventKindResult,
		Ts:       nowUnix(),
		WorkerID: e.workerID,
		Task:     task,
		Message:  message,
		Success:  &s,
	})
}

func (e *emitter) emit(event domain.WorkerEvent) {
	if e.out == nil {
		return
	}
	line, err := json.Marshal(event)
	if err != nil {
		return
	}
	line = append(line, '\n')
	_, _ = e.out.Write(line)
}

func nowUnix() float64 {
	return float64(time.Now().UnixNano()) / 1e9
}
