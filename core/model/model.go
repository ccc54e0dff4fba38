// Package model describes the model being driven through a provider,
// independent of the transport used to reach it.
package model

import "github.com/tailored-agentic-units/taskteam/core/protocol"

// Model names a backend model and holds per-protocol option defaults
// (e.g. temperature for Chat, response_format for Audio).
type Model struct {
	Name    string
	Options map[protocol.Protocol]map[string]any
}

// OptionsFor returns the configured options for a protocol, or an empty
// map if none were set.
func (m *Model) OptionsFor(p protocol.Protocol) map[string]any {
	if m.Options == nil {
		return map[string]any{}
	}
	if opts, ok := m.Options[p]; ok {
		return opts
	}
	return map[string]any{}
}
