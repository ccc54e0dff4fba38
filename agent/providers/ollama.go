package providers

import (
	"fmt"

	"github.com/tailored-agentic-units/taskteam/core/config"
)

// NewOllama builds the Provider for a local Ollama-compatible backend.
// Ollama speaks the same flattened-JSON wire shape as BaseProvider, so no
// protocol-specific marshalling is needed beyond the base behavior.
func NewOllama(cfg *config.ProviderConfig) (Provider, error) {
	if cfg == nil || cfg.BaseURL == "" {
		return nil, fmt.Errorf("providers: ollama requires a base URL")
	}
	name := cfg.Name
	if name == "" {
		name = "ollama"
	}
	return NewBaseProvider(name, cfg.BaseURL), nil
}
