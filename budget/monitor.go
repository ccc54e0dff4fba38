// Package budget implements the Context Budget Monitor: per-session,
// single-threaded tracking of cumulative token estimates across four
// buckets, with a graceful-shutdown checkpoint write.
//
// spec.md §9 flags the original source's monitor as a process-wide
// singleton and directs that the redesign own it as an explicit object
// passed into the engine adapter — that is the only shape this package
// exposes; there is no package-level mutable state.
package budget

import (
	"fmt"
	"time"

	"github.com/tailored-agentic-units/taskteam/internal/atomicfile"
)

// Bucket names a category of token consumption.
type Bucket string

const (
	BucketSystem  Bucket = "system"
	BucketHistory Bucket = "history"
	BucketTools   Bucket = "tools"
	BucketScratch Bucket = "scratch"
)

// shutdownThresholdPercent is the fraction of max_tokens usage at which
// should_trigger_shutdown begins reporting true (spec.md §4.2).
const shutdownThresholdPercent = 0.85

// maxToolOutputChars bounds track_tool_output's truncation. Longer output
// is cut to this many characters plus "...", the same convention as the
// session recorder's previews, which use a 500-character bound.
const maxToolOutputChars = 2000

// Mode describes the monitor's operating regime, reported in Stats.
type Mode string

const (
	ModeNormal  Mode = "normal"
	ModeCompact Mode = "compact"
)

// Stats is the snapshot returned by GetStats.
type Stats struct {
	Mode         Mode    `json:"mode"`
	TotalUsed    int     `json:"total_used"`
	MaxTokens    int     `json:"max_tokens"`
	UsagePercent float64 `json:"usage_percent"`
}

// Monitor tracks token usage for one agent session. Not safe for
// concurrent use — each session owns exactly one Monitor, matching the
// single-threaded execution engine adapter that drives it.
type Monitor struct {
	maxTokens int
	usage     map[Bucket]int
	mode      Mode
}

// New creates a Monitor with the given token budget.
func New(maxTokens int) *Monitor {
	return &Monitor{
		maxTokens: maxTokens,
		usage: map[Bucket]int{
			BucketSystem:  0,
			BucketHistory: 0,
			BucketTools:   0,
			BucketScratch: 0,
		},
		mode: ModeNormal,
	}
}

// Add increases a bucket's token estimate.
func (m *Monitor) Add(bucket Bucket, tokens int) {
	m.usage[bucket] += tokens
}

// total sums all buckets.
func (m *Monitor) total() int {
	sum := 0
	for _, v := range m.usage {
		sum += v
	}
	return sum
}

// TrackToolOutput records a tool result's estimated token cost against the
// tools bucket (roughly 4 characters per token, a common rough estimator)
// and returns the text, truncated if it exceeds the preview bound.
func (m *Monitor) TrackToolOutput(name, text string) string {
	m.Add(BucketTools, estimateTokens(text))

	if len(text) <= maxToolOutputChars {
		return text
	}
	return text[:maxToolOutputChars] + "..."
}

func estimateTokens(text string) int {
	return (len(text) + 3) / 4
}

// ShouldTriggerShutdown reports whether total usage has crossed 85% of
// the configured budget.
func (m *Monitor) ShouldTriggerShutdown() bool {
	if m.maxTokens <= 0 {
		return false
	}
	return float64(m.total())/float64(m.maxTokens) >= shutdownThresholdPercent
}

// GetStats returns a snapshot of current usage.
func (m *Monitor) GetStats() Stats {
	total := m.total()
	percent := 0.0
	if m.maxTokens > 0 {
		percent = float64(total) / float64(m.maxTokens) * 100
	}
	return Stats{
		Mode:         m.mode,
		TotalUsed:    total,
		MaxTokens:    m.maxTokens,
		UsagePercent: percent,
	}
}

// PrepareGracefulShutdown atomically writes a human-readable checkpoint to
// memoryPath using the same temp-file-plus-rename idiom as the session
// recorder, and returns a one-line summary of the shutdown.
func (m *Monitor) PrepareGracefulShutdown(memoryPath string) (string, error) {
	stats := m.GetStats()
	m.mode = ModeCompact

	checkpoint := fmt.Sprintf(
		"# Context checkpoint\n\nWritten: %s\nUsage: %d/%d tokens (%.1f%%)\nBuckets: system=%d history=%d tools=%d scratch=%d\n",
		time.Now().UTC().Format(time.RFC3339),
		stats.TotalUsed, stats.MaxTokens, stats.UsagePercent,
		m.usage[BucketSystem], m.usage[BucketHistory], m.usage[BucketTools], m.usage[BucketScratch],
	)

	if err := atomicfile.Write(memoryPath, []byte(checkpoint)); err != nil {
		return "", fmt.Errorf("budget: write checkpoint: %w", err)
	}

	return fmt.Sprintf("context checkpoint written: %d/%d tokens (%.1f%%)", stats.TotalUsed, stats.MaxTokens, stats.UsagePercent), nil
}
