package domain

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/tailored-agentic-units/taskteam/orchestrate/config"
)

// TeamConfig is the immutable configuration for one coordinator run,
// grounded on the original source's frozen TeamConfig dataclass.
type TeamConfig struct {
	Team          string                  `json:"team"`
	ProjectDir    string                  `json:"project_dir"`
	Model         string                  `json:"model"`
	NumWorkers    int                     `json:"num_workers"`
	MaxTasks      int                     `json:"max_tasks,omitempty"` // 0 means unbounded
	PollInterval  time.Duration           `json:"poll_interval"`
	DashboardPort int                     `json:"dashboard_port"`
	NoDashboard   bool                    `json:"no_dashboard"`
	Checkpoint    config.CheckpointConfig `json:"checkpoint"`
	EventBus      config.HubConfig        `json:"event_bus"`
}

// DefaultTeamConfig returns the baseline configuration, mirroring the
// original source's dataclass field defaults.
func DefaultTeamConfig() TeamConfig {
	return TeamConfig{
		NumWorkers:    3,
		PollInterval:  10 * time.Second,
		DashboardPort: 8003,
		Checkpoint:    config.DefaultCheckpointConfig(),
		EventBus:      config.DefaultHubConfig(),
	}
}

// Merge applies non-zero fields from source into c, following this
// module's config-layering convention (DefaultX + Merge + LoadConfig).
func (c *TeamConfig) Merge(source *TeamConfig) {
	if source.Team != "" {
		c.Team = source.Team
	}
	if source.ProjectDir != "" {
		c.ProjectDir = source.ProjectDir
	}
	if source.Model != "" {
		c.Model = source.Model
	}
	if source.NumWorkers != 0 {
		c.NumWorkers = source.NumWorkers
	}
	if source.MaxTasks != 0 {
		c.MaxTasks = source.MaxTasks
	}
	if source.PollInterval != 0 {
		c.PollInterval = source.PollInterval
	}
	if source.DashboardPort != 0 {
		c.DashboardPort = source.DashboardPort
	}
	if source.NoDashboard {
		c.NoDashboard = true
	}
	c.Checkpoint.Merge(&source.Checkpoint)
	c.EventBus.Merge(&source.EventBus)
}

// LoadTeamConfig reads an optional JSON config file, merges it over
// DefaultTeamConfig, and returns the result. A missing filename (empty
// string) is not an error — it simply yields the defaults.
func LoadTeamConfig(filename string) (TeamConfig, error) {
	cfg := DefaultTeamConfig()
	if filename == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return cfg, fmt.Errorf("domain: read team config: %w", err)
	}

	var loaded TeamConfig
	if err := json.Unmarshal(data, &loaded); err != nil {
		return cfg, fmt.Errorf("domain: parse team config: %w", err)
	}

	cfg.Merge(&loaded)
	return cfg, nil
}
