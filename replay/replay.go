// Package replay implements the read-only Replay API: listing and
// retrieving session-{N}.json files written by the Session Recorder.
//
// list() parses candidate files concurrently via
// orchestrate/workflows.ProcessParallel — the same worker-pool pattern
// the teacher pack uses for any independent per-item workload — run in
// collect-all-errors mode so one corrupt file degrades to a skipped
// entry with a logged warning rather than failing the whole listing
// (spec.md §4.7).
package replay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/tailored-agentic-units/taskteam/domain"
	"github.com/tailored-agentic-units/taskteam/orchestrate/config"
	"github.com/tailored-agentic-units/taskteam/orchestrate/workflows"
	"github.com/tailored-agentic-units/taskteam/recorder"
)

// Bounds on list's pagination parameters (spec.md §4.7).
const (
	MinLimit     = 1
	MaxLimit     = 500
	DefaultLimit = 50
)

// ErrNotFound is returned by Get when no session file exists for the id.
var ErrNotFound = fmt.Errorf("replay: session not found")

// ErrCorrupted is returned by Get when the session file exists but could
// not be parsed.
var ErrCorrupted = fmt.Errorf("replay: session file corrupted")

// ErrInvalidParams is returned by List when limit or offset is out of range.
var ErrInvalidParams = fmt.Errorf("replay: invalid pagination parameters")

// Summary is one entry in a List response.
type Summary struct {
	ID              int      `json:"id"`
	StartedAt       string   `json:"started_at"`
	EndedAt         *string  `json:"ended_at"`
	DurationSeconds *float64 `json:"duration_seconds"`
	EventsCount     int      `json:"events_count"`
	Status          string   `json:"status"`
	IssueID         string   `json:"issue_id,omitempty"`
}

// ListParams filters and paginates a List call.
type ListParams struct {
	Limit   int
	Offset  int
	Status  string // optional equality filter
	IssueID string // optional equality filter
}

// ListResult is the paginated response of List.
type ListResult struct {
	Sessions []Summary `json:"sessions"`
	Total    int       `json:"total"`
	Limit    int       `json:"limit"`
	Offset   int       `json:"offset"`
}

// TrackerProber is the narrow seam handleHealth uses to check the task
// tracker's reachability, satisfied by *queue.TaskQueue.Ping without this
// package depending on queue directly.
type TrackerProber interface {
	Ping(ctx context.Context) error
}

// Store reads sessions from one project's sessions directory.
type Store struct {
	sessionsDir string
	logger      *slog.Logger
	tracker     TrackerProber
}

// New creates a Store rooted at projectDir.
func New(projectDir string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		sessionsDir: filepath.Join(projectDir, recorder.SessionsDirName),
		logger:      logger,
	}
}

// WithTracker attaches a TrackerProber so CheckHealth can report the
// tracker's reachability instead of always reporting it unchecked.
func (s *Store) WithTracker(tracker TrackerProber) *Store {
	s.tracker = tracker
	return s
}

// CheckHealth probes the tracker (if one is configured) and the sessions
// directory's writability, for the GET /healthz endpoint (spec.md §3).
func (s *Store) CheckHealth(ctx context.Context) domain.HealthStatus {
	status := domain.HealthStatus{
		Tracker:     domain.HealthOK,
		SessionsDir: domain.HealthOK,
		CheckedAt:   time.Now(),
	}

	if s.tracker != nil {
		if err := s.tracker.Ping(ctx); err != nil {
			s.logger.Warn("replay: tracker health probe failed", "error", err)
			status.Tracker = domain.HealthUnreachable
		}
	}

	if err := s.checkSessionsDirWritable(); err != nil {
		s.logger.Warn("replay: sessions dir health probe failed", "error", err)
		status.SessionsDir = domain.HealthUnwritable
	}

	return status
}

// checkSessionsDirWritable creates the sessions directory if absent and
// writes then removes a throwaway probe file, the same atomic-write-
// adjacent check the Session Recorder implicitly relies on at Start time.
func (s *Store) checkSessionsDirWritable() error {
	if err := os.MkdirAll(s.sessionsDir, 0o755); err != nil {
		return fmt.Errorf("replay: sessions dir not writable: %w", err)
	}
	probe := filepath.Join(s.sessionsDir, ".healthz-probe")
	if err := os.WriteFile(probe, []byte{}, 0o644); err != nil {
		return fmt.Errorf("replay: sessions dir not writable: %w", err)
	}
	return os.Remove(probe)
}

var sessionFileRe = regexp.MustCompile(`^session-(\d+)\.json$`)

// List enumerates session files newest-first, applies optional filters,
// and paginates. total is the post-filter, pre-pagination count.
func (s *Store) List(ctx context.Context, p ListParams) (ListResult, error) {
	if p.Limit == 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit < MinLimit || p.Limit > MaxLimit || p.Offset < 0 {
		return ListResult{}, ErrInvalidParams
	}

	ids, err := s.listSessionIDs()
	if err != nil {
		return ListResult{}, err
	}
	sort.Sort(sort.Reverse(sort.IntSlice(ids)))

	cfg := config.DefaultParallelConfig()
	noFailFast := false
	cfg.FailFastNil = &noFailFast

	result, err := workflows.ProcessParallel(ctx, cfg, ids, s.loadSummary, nil)
	var parseErr *workflows.ParallelError[int]
	if err != nil && !errors.As(err, &parseErr) {
		return ListResult{}, fmt.Errorf("replay: list: %w", err)
	}
	for _, taskErr := range result.Errors {
		s.logger.Warn("replay: skipping corrupt session file", "session_id", taskErr.Item, "error", taskErr.Err)
	}

	summaries := result.Results
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].ID > summaries[j].ID })

	filtered := summaries[:0]
	for _, sum := range summaries {
		if p.Status != "" && sum.Status != p.Status {
			continue
		}
		if p.IssueID != "" && sum.IssueID != p.IssueID {
			continue
		}
		filtered = append(filtered, sum)
	}

	total := len(filtered)
	start := p.Offset
	if start > total {
		start = total
	}
	end := start + p.Limit
	if end > total {
		end = total
	}

	page := make([]Summary, end-start)
	copy(page, filtered[start:end])

	return ListResult{Sessions: page, Total: total, Limit: p.Limit, Offset: p.Offset}, nil
}

// Get returns the full, parsed session record for id.
func (s *Store) Get(id int) (*recorder.Session, error) {
	path := sessionPath(s.sessionsDir, id)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("replay: read session %d: %w", id, err)
	}

	var session recorder.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, ErrCorrupted
	}
	return &session, nil
}

func (s *Store) listSessionIDs() ([]int, error) {
	entries, err := os.ReadDir(s.sessionsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("replay: read sessions dir: %w", err)
	}

	var ids []int
	for _, e := range entries {
		if m := sessionFileRe.FindStringSubmatch(e.Name()); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				ids = append(ids, n)
			}
		}
	}
	return ids, nil
}

func (s *Store) loadSummary(ctx context.Context, id int) (Summary, error) {
	path := sessionPath(s.sessionsDir, id)
	data, err := os.ReadFile(path)
	if err != nil {
		return Summary{}, fmt.Errorf("read: %w", err)
	}

	var session recorder.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return Summary{}, fmt.Errorf("parse: %w", err)
	}

	return Summary{
		ID:              session.SessionID,
		StartedAt:       session.StartedAt,
		EndedAt:         session.EndedAt,
		DurationSeconds: duration(session.StartedAt, session.EndedAt),
		EventsCount:     len(session.Events),
		Status:          session.Status,
		IssueID:         session.IssueID,
	}, nil
}

func duration(startedAt string, endedAt *string) *float64 {
	if endedAt == nil {
		return nil
	}
	start, err := time.Parse(time.RFC3339, startedAt)
	if err != nil {
		return nil
	}
	end, err := time.Parse(time.RFC3339, *endedAt)
	if err != nil {
		return nil
	}
	d := end.Sub(start).Seconds()
	rounded := float64(int64(d*10+0.5)) / 10
	return &rounded
}

func sessionPath(dir string, id int) string {
	return filepath.Join(dir, fmt.Sprintf("session-%d.json", id))
}
