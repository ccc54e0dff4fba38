// Package config holds configuration structures for agents, the models
// they drive, and the providers that transport requests to those models.
package config

import "maps"

// ProviderConfig configures the transport to a model-serving backend.
type ProviderConfig struct {
	Name    string `json:"name"`
	BaseURL string `json:"base_url"`
	APIKey  string `json:"api_key,omitempty"`
}

// ModelConfig names a model and the protocol-specific capabilities it
// supports. Capabilities maps a protocol name (e.g. "chat", "tools") to
// its per-protocol option defaults.
type ModelConfig struct {
	Name         string                    `json:"name"`
	Capabilities map[string]map[string]any `json:"capabilities,omitempty"`
}

// AgentConfig configures one named agent: which provider it talks to and
// which model it drives through that provider.
type AgentConfig struct {
	Provider *ProviderConfig `json:"provider,omitempty"`
	Model    *ModelConfig    `json:"model,omitempty"`
}

// DefaultAgentConfig returns the zero-value AgentConfig (no provider or
// model configured).
func DefaultAgentConfig() AgentConfig {
	return AgentConfig{}
}

// Merge applies non-zero values from source into c.
func (c *AgentConfig) Merge(source *AgentConfig) {
	if source.Provider != nil {
		if c.Provider == nil {
			c.Provider = &ProviderConfig{}
		}
		if source.Provider.Name != "" {
			c.Provider.Name = source.Provider.Name
		}
		if source.Provider.BaseURL != "" {
			c.Provider.BaseURL = source.Provider.BaseURL
		}
		if source.Provider.APIKey != "" {
			c.Provider.APIKey = source.Provider.APIKey
		}
	}

	if source.Model != nil {
		if c.Model == nil {
			c.Model = &ModelConfig{Capabilities: make(map[string]map[string]any)}
		}
		if source.Model.Name != "" {
			c.Model.Name = source.Model.Name
		}
		if len(source.Model.Capabilities) > 0 {
			if c.Model.Capabilities == nil {
				c.Model.Capabilities = make(map[string]map[string]any)
			}
			maps.Copy(c.Model.Capabilities, source.Model.Capabilities)
		}
	}
}
