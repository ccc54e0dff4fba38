package config

import (
	"log/slog"
	"time"
)

// HubConfig sizes and names an Event Bus instance (coordinator/coordinator.go's
// eventBus, spec.md §2 item 9): one publisher (a worker's stdout reader)
// fanning out to multiple subscribers (status printer, aggregator,
// Run-state Checkpoint).
type HubConfig struct {
	// Name identifies the bus instance in logs (e.g. the team name).
	Name string `json:"name"`

	// ChannelBufferSize sizes each subscriber's channel.
	ChannelBufferSize int `json:"channel_buffer_size"`

	// DefaultTimeout bounds how long publish will wait for a single slow
	// subscriber before giving up on that send and moving to the next.
	DefaultTimeout time.Duration `json:"default_timeout"`

	// Logger receives a warning when a publish times out against a
	// subscriber.
	Logger *slog.Logger `json:"-"`
}

// DefaultHubConfig returns a HubConfig with sensible defaults.
func DefaultHubConfig() HubConfig {
	return HubConfig{
		Name:              "default",
		ChannelBufferSize: 64,
		DefaultTimeout:    30 * time.Second,
		Logger:            slog.Default(),
	}
}

func (c *HubConfig) Merge(source *HubConfig) {
	if source.Name != "" {
		c.Name = source.Name
	}

	if source.ChannelBufferSize > 0 {
		c.ChannelBufferSize = source.ChannelBufferSize
	}

	if source.DefaultTimeout > 0 {
		c.DefaultTimeout = source.DefaultTimeout
	}

	if source.Logger != nil {
		c.Logger = source.Logger
	}
}
