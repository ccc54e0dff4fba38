// Package queue implements the Task Queue Client: a thin, protocol-level
// client over the tracker's remote tool-invocation protocol, bound to one
// team. Grounded on the original source's TaskQueue
// (src/axon_agent/team/task_queue.py), with the tool round-trips carried
// over a Connect RPC procedure (see invoker.go) instead of an MCP/SSE
// session.
package queue

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/tailored-agentic-units/taskteam/domain"
)

// claimMarker is the exact comment body a successful claim appends
// (spec.md §6).
func claimMarker(workerID int) string {
	return fmt.Sprintf("__CLAIM__worker-%d__", workerID)
}

// TaskQueue is a stateful client bound to one team. Connect is idempotent
// within the client's lifetime; Disconnect is safe to call multiple times.
type TaskQueue struct {
	team     string
	baseURL  string
	apiKey   string
	logger   *slog.Logger
	invoker  *toolInvoker
	connected bool
}

// New creates a TaskQueue bound to team, talking to the tracker at baseURL.
// apiKey is sent as a bearer token when non-empty.
func New(team, baseURL, apiKey string, logger *slog.Logger) *TaskQueue {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskQueue{team: team, baseURL: baseURL, apiKey: apiKey, logger: logger}
}

// Connect opens the client's RPC channel. Idempotent: calling it again
// while already connected is a no-op.
func (q *TaskQueue) Connect() error {
	if q.connected {
		return nil
	}
	if q.baseURL == "" {
		return fmt.Errorf("%w: empty tracker URL", ErrConnection)
	}
	q.invoker = newToolInvoker(defaultHTTPClient, q.baseURL, q.apiKey)
	q.connected = true
	return nil
}

// Disconnect closes the client's channel. Safe to call multiple times.
func (q *TaskQueue) Disconnect() {
	q.connected = false
	q.invoker = nil
}

func (q *TaskQueue) callTool(ctx context.Context, tool string, args map[string]any) (map[string]any, error) {
	if !q.connected || q.invoker == nil {
		return nil, fmt.Errorf("%w: not connected", ErrConnection)
	}
	return q.invoker.Invoke(ctx, tool, args)
}

// GetTodo returns tasks in state Todo for the bound team, sorted by
// priority ascending (urgent first), then by the tracker's natural order.
// An unrecognized priority sorts last.
func (q *TaskQueue) GetTodo(ctx context.Context, project string) ([]domain.Task, error) {
	args := map[string]any{"team": q.team, "state": domain.StateTodo}
	if project != "" {
		args["project"] = project
	}

	result, err := q.callTool(ctx, "Task_ListIssues", args)
	if err != nil {
		return nil, err
	}

	raw, ok := result["issues"].([]any)
	if !ok {
		return nil, fmt.Errorf("%w: Task_ListIssues: missing issues array", ErrProtocol)
	}

	tasks := make([]domain.Task, 0, len(raw))
	for _, item := range raw {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		tasks = append(tasks, taskFromMap(m))
	}

	sort.SliceStable(tasks, func(i, j int) bool {
		return domain.ParsePriority(tasks[i].Priority) < domain.ParsePriority(tasks[j].Priority)
	})

	return tasks, nil
}

func taskFromMap(m map[string]any) domain.Task {
	return domain.Task{
		Identifier:  stringField(m, "identifier"),
		Title:       stringField(m, "title"),
		Description: stringField(m, "description"),
		Priority:    stringField(m, "priority"),
		State:       stringField(m, "state"),
	}
}

func stringField(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

// getIssueState fetches the current state of an issue without the rest
// of GetTodo's list/sort machinery, used by Claim's check step.
func (q *TaskQueue) getIssueState(ctx context.Context, identifier string) (string, error) {
	result, err := q.callTool(ctx, "Task_GetIssue", map[string]any{"issue_id": identifier})
	if err != nil {
		return "", err
	}
	issue, ok := result["issue"].(map[string]any)
	if !ok {
		// Some trackers flatten the single-issue response.
		issue = result
	}
	state := stringField(issue, "state")
	if state == "" {
		return "", fmt.Errorf("%w: Task_GetIssue: missing state", ErrProtocol)
	}
	return state, nil
}

// Claim performs the check-then-transition sequence (spec.md §4.1): it
// re-reads the task, and if its state is not Todo, returns false without
// side effects; otherwise it appends the claim marker comment and
// transitions the task to In Progress. Any error anywhere in the sequence
// is treated as a failed claim — the caller must not assume the
// transition did not occur, since the tracker's own transition is the
// linearization point two racing workers contend on.
func (q *TaskQueue) Claim(ctx context.Context, identifier string, workerID int) bool {
	state, err := q.getIssueState(ctx, identifier)
	if err != nil {
		q.logger.Warn("claim: get issue failed", "identifier", identifier, "error", err)
		return false
	}
	if state != domain.StateTodo {
		return false
	}

	if _, err := q.callTool(ctx, "Task_AddComment", map[string]any{
		"issue": identifier,
		"body":  claimMarker(workerID),
	}); err != nil {
		q.logger.Warn("claim: add comment failed", "identifier", identifier, "error", err)
		return false
	}

	if _, err := q.callTool(ctx, "Task_TransitionIssueState", map[string]any{
		"issue_id":     identifier,
		"target_state": domain.StateInProgress,
	}); err != nil {
		q.logger.Warn("claim: transition failed", "identifier", identifier, "error", err)
		return false
	}

	return true
}

// Complete appends a completion comment and transitions the task to Done.
func (q *TaskQueue) Complete(ctx context.Context, identifier string, workerID int) error {
	if _, err := q.callTool(ctx, "Task_AddComment", map[string]any{
		"issue": identifier,
		"body":  fmt.Sprintf("Completed by worker-%d", workerID),
	}); err != nil {
		return err
	}
	_, err := q.callTool(ctx, "Task_TransitionIssueState", map[string]any{
		"issue_id":     identifier,
		"target_state": domain.StateDone,
	})
	return err
}

// Fail appends a failure comment with reason and transitions the task
// back to Todo, releasing it for another worker.
func (q *TaskQueue) Fail(ctx context.Context, identifier string, workerID int, reason string) error {
	if _, err := q.callTool(ctx, "Task_AddComment", map[string]any{
		"issue": identifier,
		"body":  fmt.Sprintf("Failed by worker-%d: %s", workerID, reason),
	}); err != nil {
		return err
	}
	_, err := q.callTool(ctx, "Task_TransitionIssueState", map[string]any{
		"issue_id":     identifier,
		"target_state": domain.StateTodo,
	})
	return err
}

// Ping is a cheap reachability probe for the tracker: it issues the same
// Task_ListIssues call GetTodo uses and discards the result, treating any
// error (including not-connected) as unreachable.
func (q *TaskQueue) Ping(ctx context.Context) error {
	_, err := q.callTool(ctx, "Task_ListIssues", map[string]any{"team": q.team, "state": domain.StateTodo})
	return err
}

// Comment appends a free-form comment to an issue.
func (q *TaskQueue) Comment(ctx context.Context, identifier, body string) error {
	_, err := q.callTool(ctx, "Task_AddComment", map[string]any{
		"issue": identifier,
		"body":  body,
	})
	return err
}
