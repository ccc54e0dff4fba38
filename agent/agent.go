// Package agent defines the narrow interface the execution engine uses to
// drive a model through a tool-calling conversation, plus a registry for
// named agent instances and a generic HTTP-transport implementation.
//
// The agent runtime itself — the model, its weights, its serving stack —
// is an external collaborator. This package owns only the thin contract
// the rest of the module needs to hold a conversation with it.
package agent

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/tailored-agentic-units/taskteam/agent/providers"
	"github.com/tailored-agentic-units/taskteam/core/config"
	"github.com/tailored-agentic-units/taskteam/core/model"
	"github.com/tailored-agentic-units/taskteam/core/protocol"
	"github.com/tailored-agentic-units/taskteam/core/response"
)

// Agent drives a single tools-calling conversation turn against a model.
type Agent interface {
	// ID uniquely identifies this agent instance.
	ID() string

	// Tools sends the conversation so far, with the available tool
	// definitions, and returns the model's next turn.
	Tools(ctx context.Context, messages []protocol.Message, tools []protocol.Tool) (*response.ToolsResponse, error)
}

// New instantiates an Agent from configuration. The only supported
// provider today is Ollama-compatible; unset Provider.Name also resolves
// to it, since it is the reference local backend used in development.
func New(cfg *config.AgentConfig) (Agent, error) {
	if cfg == nil || cfg.Provider == nil {
		return nil, fmt.Errorf("agent: config requires a provider")
	}
	if cfg.Model == nil || cfg.Model.Name == "" {
		return nil, fmt.Errorf("agent: config requires a model name")
	}

	p, err := providers.NewOllama(cfg.Provider)
	if err != nil {
		return nil, fmt.Errorf("agent: %w", err)
	}

	return &httpAgent{
		id:       uuid.New().String(),
		provider: p,
		model:    &model.Model{Name: cfg.Model.Name},
		client:   http.DefaultClient,
	}, nil
}

// httpAgent is a generic OpenAI-compatible tools-calling client. It is
// not a specification target in its own right — only a concrete fixture
// the execution engine adapter can drive against any compatible endpoint.
type httpAgent struct {
	id       string
	provider providers.Provider
	model    *model.Model
	client   *http.Client
}

func (a *httpAgent) ID() string { return a.id }

func (a *httpAgent) Tools(ctx context.Context, messages []protocol.Message, tools []protocol.Tool) (*response.ToolsResponse, error) {
	body, err := a.provider.Marshal(protocol.Tools, &providers.ToolsData{
		Model:    a.model.Name,
		Messages: messages,
		Tools:    tools,
		Options:  a.model.OptionsFor(protocol.Tools),
	})
	if err != nil {
		return nil, fmt.Errorf("agent: marshal tools request: %w", err)
	}

	url := a.provider.BaseURL() + "/v1/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("agent: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("agent: request to %s: %w", a.provider.Name(), err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("agent: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("agent: %s returned status %d: %s", a.provider.Name(), resp.StatusCode, string(respBody))
	}

	return response.ParseTools(respBody)
}
