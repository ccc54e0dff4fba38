package providers

import (
	"encoding/json"
	"fmt"
	"maps"

	"github.com/tailored-agentic-units/taskteam/core/protocol"
)

// Provider marshals protocol-specific request data into the wire format a
// concrete model backend expects.
type Provider interface {
	Name() string
	BaseURL() string
	Marshal(p protocol.Protocol, data any) ([]byte, error)
}

// BaseProvider is a generic OpenAI-compatible provider: each protocol's
// data struct is flattened into a single JSON object, with Options merged
// in last so callers can override any field.
type BaseProvider struct {
	name    string
	baseURL string
}

// NewBaseProvider creates a BaseProvider with the given name and base URL.
func NewBaseProvider(name, baseURL string) *BaseProvider {
	return &BaseProvider{name: name, baseURL: baseURL}
}

func (b *BaseProvider) Name() string    { return b.name }
func (b *BaseProvider) BaseURL() string { return b.baseURL }

// Marshal encodes data into the wire body for the given protocol. data
// must be the pointer type matching p (e.g. *ChatData for protocol.Chat).
func (b *BaseProvider) Marshal(p protocol.Protocol, data any) ([]byte, error) {
	switch p {
	case protocol.Chat:
		d, ok := data.(*ChatData)
		if !ok {
			return nil, fmt.Errorf("providers: chat protocol requires *ChatData, got %T", data)
		}
		body := map[string]any{"model": d.Model, "messages": d.Messages}
		maps.Copy(body, d.Options)
		return json.Marshal(body)

	case protocol.Vision:
		d, ok := data.(*VisionData)
		if !ok {
			return nil, fmt.Errorf("providers: vision protocol requires *VisionData, got %T", data)
		}
		body := map[string]any{"model": d.Model, "messages": d.Messages, "images": d.Images}
		maps.Copy(body, d.VisionOptions)
		maps.Copy(body, d.Options)
		return json.Marshal(body)

	case protocol.Tools:
		d, ok := data.(*ToolsData)
		if !ok {
			return nil, fmt.Errorf("providers: tools protocol requires *ToolsData, got %T", data)
		}
		body := map[string]any{"model": d.Model, "messages": d.Messages, "tools": d.Tools}
		maps.Copy(body, d.Options)
		return json.Marshal(body)

	case protocol.Embeddings:
		d, ok := data.(*EmbeddingsData)
		if !ok {
			return nil, fmt.Errorf("providers: embeddings protocol requires *EmbeddingsData, got %T", data)
		}
		body := map[string]any{"model": d.Model, "input": d.Input}
		maps.Copy(body, d.Options)
		return json.Marshal(body)

	case protocol.Audio:
		d, ok := data.(*AudioData)
		if !ok {
			return nil, fmt.Errorf("providers: audio protocol requires *AudioData, got %T", data)
		}
		body := map[string]any{"model": d.Model, "input": d.Input}
		maps.Copy(body, d.AudioOptions)
		maps.Copy(body, d.Options)
		return json.Marshal(body)

	default:
		return nil, fmt.Errorf("providers: unsupported protocol %q", p)
	}
}
