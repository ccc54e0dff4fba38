package engine_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/tailored-agentic-units/taskteam/budget"
	"github.com/tailored-agentic-units/taskteam/core/protocol"
	"github.com/tailored-agentic-units/taskteam/core/response"
	"github.com/tailored-agentic-units/taskteam/domain"
	"github.com/tailored-agentic-units/taskteam/engine"
	"github.com/tailored-agentic-units/taskteam/session"
	"github.com/tailored-agentic-units/taskteam/tools"
)

// sequentialAgent returns a scripted response per call, in order.
type sequentialAgent struct {
	responses []*response.ToolsResponse
	calls     int
}

func (a *sequentialAgent) ID() string { return "sequential-agent" }

func (a *sequentialAgent) Tools(ctx context.Context, messages []protocol.Message, t []protocol.Tool) (*response.ToolsResponse, error) {
	i := a.calls
	a.calls++
	if i >= len(a.responses) {
		return nil, errors.New("no more responses configured")
	}
	return a.responses[i], nil
}

func finalResponse(content string) *response.ToolsResponse {
	resp := &response.ToolsResponse{Model: "mock"}
	resp.Choices = append(resp.Choices, struct {
		Index   int `json:"index"`
		Message struct {
			Role      string              `json:"role"`
			Content   string              `json:"content"`
			ToolCalls []protocol.ToolCall `json:"tool_calls,omitempty"`
		} `json:"message"`
		FinishReason string `json:"finish_reason,omitempty"`
	}{
		Index: 0,
		Message: struct {
			Role      string              `json:"role"`
			Content   string              `json:"content"`
			ToolCalls []protocol.ToolCall `json:"tool_calls,omitempty"`
		}{Role: "assistant", Content: content},
	})
	return resp
}

func toolCallResponse(calls ...protocol.ToolCall) *response.ToolsResponse {
	resp := &response.ToolsResponse{Model: "mock"}
	resp.Choices = append(resp.Choices, struct {
		Index   int `json:"index"`
		Message struct {
			Role      string              `json:"role"`
			Content   string              `json:"content"`
			ToolCalls []protocol.ToolCall `json:"tool_calls,omitempty"`
		} `json:"message"`
		FinishReason string `json:"finish_reason,omitempty"`
	}{
		Index: 0,
		Message: struct {
			Role      string              `json:"role"`
			Content   string              `json:"content"`
			ToolCalls []protocol.ToolCall `json:"tool_calls,omitempty"`
		}{Role: "assistant", ToolCalls: calls},
	})
	return resp
}

type fakeToolExecutor struct {
	handler func(ctx context.Context, name string, args json.RawMessage) (tools.Result, error)
}

func (e *fakeToolExecutor) List() []protocol.Tool { return nil }

func (e *fakeToolExecutor) Execute(ctx context.Context, name string, args json.RawMessage) (tools.Result, error) {
	return e.handler(ctx, name, args)
}

func TestAdapter_Run_CompletesOnSentinel(t *testing.T) {
	agent := &sequentialAgent{responses: []*response.ToolsResponse{
		finalResponse("all done. " + engine.SentinelAllTasksDone),
	}}

	a := engine.New(agent, session.NewMemorySession(), budget.New(10_000))

	result, err := a.Run(context.Background(), "do the task")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Status != engine.StatusComplete {
		t.Errorf("Status = %v, want StatusComplete", result.Status)
	}
}

func TestAdapter_Run_ContinuesWithoutSentinel(t *testing.T) {
	agent := &sequentialAgent{responses: []*response.ToolsResponse{
		finalResponse("still working on it"),
	}}

	a := engine.New(agent, session.NewMemorySession(), budget.New(10_000))

	result, err := a.Run(context.Background(), "do the task")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Status != engine.StatusContinue {
		t.Errorf("Status = %v, want StatusContinue", result.Status)
	}
}

func TestAdapter_Run_ExecutesToolCallsThenCompletes(t *testing.T) {
	agent := &sequentialAgent{responses: []*response.ToolsResponse{
		toolCallResponse(protocol.NewToolCall("call_1", "bash", `{"cmd":"ls"}`)),
		finalResponse("finished. " + engine.SentinelAllTasksDone),
	}}

	var executed string
	executor := &fakeToolExecutor{handler: func(ctx context.Context, name string, args json.RawMessage) (tools.Result, error) {
		executed = name
		return tools.Result{Content: "file1 file2"}, nil
	}}

	a := engine.New(agent, session.NewMemorySession(), budget.New(10_000), engine.WithToolExecutor(executor))

	result, err := a.Run(context.Background(), "list files")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if executed != "bash" {
		t.Errorf("executed tool = %q, want bash", executed)
	}
	if result.Status != engine.StatusComplete {
		t.Errorf("Status = %v, want StatusComplete", result.Status)
	}
}

func TestAdapter_Run_ContextLimitWhenBudgetExhausted(t *testing.T) {
	agent := &sequentialAgent{responses: []*response.ToolsResponse{
		finalResponse(strings.Repeat("x", 4000)),
	}}

	monitor := budget.New(100)
	a := engine.New(agent, session.NewMemorySession(), monitor, engine.WithCheckpointDir(t.TempDir()))

	result, err := a.Run(context.Background(), "a prompt long enough to blow the budget")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Status != engine.StatusContextLimit {
		t.Errorf("Status = %v, want StatusContextLimit", result.Status)
	}
	if !strings.Contains(result.Response, engine.SentinelContextLimit) {
		t.Errorf("Response = %q, want it to contain the context-limit sentinel", result.Response)
	}
}

func TestAdapter_Run_AgentErrorSurfacesAsErrorStatus(t *testing.T) {
	agent := &sequentialAgent{}

	a := engine.New(agent, session.NewMemorySession(), budget.New(10_000))

	result, err := a.Run(context.Background(), "do the task")
	if err != nil {
		t.Fatalf("Run() error = %v, want nil (error carried in Result)", err)
	}
	if result.Status != engine.StatusError {
		t.Errorf("Status = %v, want StatusError", result.Status)
	}
}

func TestBuildPrompt_IncludesTaskAndSentinel(t *testing.T) {
	prompt := engine.BuildPrompt(engine.PromptParams{
		Team:       "team-a",
		ProjectDir: "/work",
		Task:       domain.Task{Identifier: "ENG-1", Title: "Fix bug", Description: "Do the fix"},
	})

	for _, want := range []string{"team-a", "/work", "ENG-1", "Fix bug", "Do the fix", engine.SentinelAllTasksDone} {
		if !strings.Contains(prompt, want) {
			t.Errorf("BuildPrompt() missing %q in:\n%s", want, prompt)
		}
	}
}
