// Package engine implements the Execution Engine Adapter: drives one LLM
// agent session through a deterministic task prompt and classifies the
// outcome as continue, error, complete, or context_limit.
//
// Structurally this generalizes the teacher's kernel.Kernel.Run observe/
// think/act loop (kernel/kernel.go) — same agent+tools+session
// composition, same per-iteration observer events — but replaces its
// open-ended "return the final assistant message" semantics with the
// sentinel/budget-driven status classification of spec.md §4.3, and
// threads a budget.Monitor and a checkpoint directory through explicitly
// rather than leaving either a hidden global (spec.md §9's redesign note
// on the Context Budget Monitor's global mutable state).
package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/tailored-agentic-units/taskteam/agent"
	"github.com/tailored-agentic-units/taskteam/budget"
	"github.com/tailored-agentic-units/taskteam/core/protocol"
	"github.com/tailored-agentic-units/taskteam/domain"
	"github.com/tailored-agentic-units/taskteam/observability"
	"github.com/tailored-agentic-units/taskteam/session"
	"github.com/tailored-agentic-units/taskteam/tools"
)

// Sentinels an agent emits to signal a terminal condition (spec.md §6).
const (
	SentinelAllTasksDone = "ALL_TASKS_DONE:"
	SentinelContextLimit = "CONTEXT_LIMIT_REACHED:"
)

// Status classifies the outcome of one Run.
type Status string

const (
	StatusContinue     Status = "continue"
	StatusError        Status = "error"
	StatusComplete     Status = "complete"
	StatusContextLimit Status = "context_limit"
)

// Result is the outcome of driving one task through the engine.
type Result struct {
	Status   Status
	Response string
}

// ToolExecutor abstracts tool listing and execution, matching the
// teacher's kernel.ToolExecutor seam for testability.
type ToolExecutor interface {
	List() []protocol.Tool
	Execute(ctx context.Context, name string, args json.RawMessage) (tools.Result, error)
}

type globalToolExecutor struct{}

func (globalToolExecutor) List() []protocol.Tool { return tools.List() }

func (globalToolExecutor) Execute(ctx context.Context, name string, args json.RawMessage) (tools.Result, error) {
	return tools.Execute(ctx, name, args)
}

// maxIterations bounds a single task's tool-call loop as a last-resort
// circuit breaker; the budget monitor is the primary shutdown signal.
const maxIterations = 50

// Adapter drives one task to completion. A fresh Adapter (and the Agent
// it wraps) must be constructed per task — spec.md §4.4 makes this a hard
// invariant, so Adapter holds no cross-task state.
type Adapter struct {
	agent         agent.Agent
	session       session.Session
	monitor       *budget.Monitor
	toolExec      ToolExecutor
	observer      observability.Observer
	recorder      EventRecorder
	checkpointDir string
}

// EventRecorder is the subset of the Session Recorder the adapter uses to
// log tool-use traces as Session Events, without depending on the
// recorder package directly (kept narrow per the teacher's convention of
// small, interface-scoped collaborators).
type EventRecorder interface {
	RecordEvent(eventType string, data map[string]any)
}

// noopRecorder discards tool-use traces when no recorder is supplied.
type noopRecorder struct{}

func (noopRecorder) RecordEvent(string, map[string]any) {}

// Option configures an Adapter at construction.
type Option func(*Adapter)

// WithToolExecutor overrides the default global tool executor.
func WithToolExecutor(e ToolExecutor) Option {
	return func(a *Adapter) { a.toolExec = e }
}

// WithObserver overrides the default no-op observer.
func WithObserver(o observability.Observer) Option {
	return func(a *Adapter) { a.observer = o }
}

// WithRecorder attaches a Session Recorder so tool calls are traced as
// Session Events, not just returned in the Result.
func WithRecorder(r EventRecorder) Option {
	return func(a *Adapter) { a.recorder = r }
}

// WithCheckpointDir sets the directory PrepareGracefulShutdown writes its
// checkpoint file to. Callers should pass the task's project directory
// (domain.TeamConfig.ProjectDir) so the checkpoint lands alongside the
// work it describes. Defaults to "." if never set.
func WithCheckpointDir(dir string) Option {
	return func(a *Adapter) { a.checkpointDir = dir }
}

// New builds an Adapter around a fresh agent, a fresh conversation session,
// and the given budget monitor.
func New(a agent.Agent, sesh session.Session, monitor *budget.Monitor, opts ...Option) *Adapter {
	ad := &Adapter{
		agent:         a,
		session:       sesh,
		monitor:       monitor,
		toolExec:      globalToolExecutor{},
		observer:      observability.NoOpObserver{},
		recorder:      noopRecorder{},
		checkpointDir: ".",
	}
	for _, opt := range opts {
		opt(ad)
	}
	return ad
}

// PromptParams are the deterministic inputs to BuildPrompt.
type PromptParams struct {
	Team       string
	ProjectDir string
	Task       domain.Task
}

// BuildPrompt constructs the deterministic task prompt (spec.md §4.3):
// team, working directory, task identifier/title/description, a fixed
// five-step instruction list, and the termination sentinel instruction.
func BuildPrompt(p PromptParams) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Team: %s\n", p.Team)
	fmt.Fprintf(&b, "Working directory: %s\n\n", p.ProjectDir)
	fmt.Fprintf(&b, "Task %s: %s\n\n%s\n\n", p.Task.Identifier, p.Task.Title, p.Task.Description)
	b.WriteString("Instructions:\n")
	b.WriteString("1. Read the task description and the relevant project files.\n")
	b.WriteString("2. Make the necessary changes to satisfy the task.\n")
	b.WriteString("3. Run any available checks to verify your change.\n")
	b.WriteString("4. Summarize what changed and why.\n")
	b.WriteString("5. Confirm the task is fully resolved before finishing.\n\n")
	fmt.Fprintf(&b, "When the task is fully complete, end your final message with: %s\n", SentinelAllTasksDone)
	return b.String()
}

// Run drives the agent through the prompt, iterating on tool calls until
// the agent produces a final message, the iteration ceiling is hit, or
// the budget monitor signals shutdown.
func (a *Adapter) Run(ctx context.Context, prompt string) (Result, error) {
	a.session.AddMessage(protocol.NewMessage(protocol.RoleUser, prompt))
	a.monitor.Add(budget.BucketHistory, estimateTokens(prompt))

	for iteration := 0; iteration < maxIterations; iteration++ {
		if err := ctx.Err(); err != nil {
			return Result{Status: StatusError, Response: err.Error()}, err
		}

		resp, err := a.agent.Tools(ctx, a.session.Messages(), a.toolExec.List())
		if err != nil {
			return Result{Status: StatusError, Response: err.Error()}, nil
		}
		if len(resp.Choices) == 0 {
			return Result{Status: StatusError, Response: "agent returned empty response"}, nil
		}

		choice := resp.Choices[0]
		a.monitor.Add(budget.BucketHistory, estimateTokens(choice.Message.Content))

		if len(choice.Message.ToolCalls) == 0 {
			a.session.AddMessage(protocol.Message{
				Role:    protocol.RoleAssistant,
				Content: choice.Message.Content,
			})

			if a.monitor.ShouldTriggerShutdown() {
				return a.contextLimitResult(choice.Message.Content)
			}

			return classifyFinalMessage(choice.Message.Content), nil
		}

		a.session.AddMessage(protocol.Message{
			Role:      protocol.RoleAssistant,
			Content:   choice.Message.Content,
			ToolCalls: choice.Message.ToolCalls,
		})

		for _, tc := range choice.Message.ToolCalls {
			a.observer.OnEvent(ctx, observability.Event{
				Type:      observability.EventType("engine.tool_call"),
				Level:     observability.LevelVerbose,
				Timestamp: time.Now(),
				Source:    "engine.Run",
				Data:      map[string]any{"name": tc.Name},
			})

			result, toolErr := a.toolExec.Execute(ctx, tc.Name, json.RawMessage(tc.Arguments))

			content := result.Content
			isError := result.IsError
			if toolErr != nil {
				content = fmt.Sprintf("error: %s", toolErr)
				isError = true
			}
			content = a.monitor.TrackToolOutput(tc.Name, content)

			a.session.AddMessage(protocol.Message{
				Role:       protocol.RoleTool,
				Content:    content,
				ToolCallID: tc.ID,
			})

			a.recorder.RecordEvent(recorderEventType(tc.Name), map[string]any{
				"name":           tc.Name,
				"arguments":      tc.Arguments,
				"result_preview": content,
				"is_error":       isError,
			})
		}

		if a.monitor.ShouldTriggerShutdown() {
			return a.contextLimitResult("")
		}
	}

	return Result{Status: StatusError, Response: "exceeded iteration ceiling without a final response"}, nil
}

func (a *Adapter) contextLimitResult(trailing string) (Result, error) {
	summary, err := a.monitor.PrepareGracefulShutdown(a.checkpointPath())
	if err != nil {
		a.observer.OnEvent(context.Background(), observability.Event{
			Type:      observability.EventType("engine.checkpoint_error"),
			Level:     observability.LevelError,
			Timestamp: time.Now(),
			Source:    "engine.Run",
			Data:      map[string]any{"error": err.Error()},
		})
	}
	response := SentinelContextLimit + " " + summary
	if trailing != "" {
		response = SentinelContextLimit + " " + trailing
	}
	return Result{Status: StatusContextLimit, Response: response}, nil
}

func (a *Adapter) checkpointPath() string {
	return a.checkpointDir + "/context-checkpoint.md"
}

func classifyFinalMessage(content string) Result {
	switch {
	case strings.Contains(content, SentinelAllTasksDone):
		return Result{Status: StatusComplete, Response: content}
	case strings.Contains(content, SentinelContextLimit):
		return Result{Status: StatusContextLimit, Response: content}
	default:
		return Result{Status: StatusContinue, Response: content}
	}
}

func recorderEventType(toolName string) string {
	switch toolName {
	case "bash", "shell", "run_command":
		return "bash"
	case "write_file", "edit_file":
		return "file_write"
	default:
		return "tool_call"
	}
}

func estimateTokens(text string) int {
	return (len(text) + 3) / 4
}
