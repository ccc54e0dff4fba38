package config

// CheckpointConfig controls how often and how long run-state snapshots are
// persisted during a coordinator run.
//
// Configuration fields:
//   - Store: Name of CheckpointStore implementation to use (resolved via registry)
//   - Interval: Save a snapshot every N worker events (0 means every event)
//   - Preserve: Keep the snapshot after a successful run (false = auto-cleanup)
type CheckpointConfig struct {
	// Store identifies which CheckpointStore to use (resolved via registry)
	Store string `json:"store"`

	// Interval controls checkpoint frequency (0 = every event, N = every Nth event)
	Interval int `json:"interval"`

	// Preserve keeps the checkpoint after successful execution (false = auto-cleanup)
	Preserve bool `json:"preserve"`
}

// DefaultCheckpointConfig returns checkpoint configuration that snapshots on
// every worker event and discards the snapshot once the run completes.
func DefaultCheckpointConfig() CheckpointConfig {
	return CheckpointConfig{
		Store:    "memory",
		Interval: 0,
		Preserve: false,
	}
}

func (c *CheckpointConfig) Merge(source *CheckpointConfig) {
	if source.Store != "" {
		c.Store = source.Store
	}

	if source.Interval > 0 {
		c.Interval = source.Interval
	}

	if source.Preserve {
		c.Preserve = source.Preserve
	}
}
