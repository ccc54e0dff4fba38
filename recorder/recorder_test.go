package recorder_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tailored-agentic-units/taskteam/recorder"
)

func TestRecorder_Start_AssignsSequentialIDs(t *testing.T) {
	dir := t.TempDir()
	r := recorder.New(dir, nil)

	s, err := r.Start("ENG-1")
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if s.SessionID != 1 {
		t.Errorf("SessionID = %d, want 1", s.SessionID)
	}

	if _, err := r.End(recorder.StatusCompleted); err != nil {
		t.Fatalf("End() error = %v", err)
	}

	s2, err := r.Start("ENG-2")
	if err != nil {
		t.Fatalf("second Start() error = %v", err)
	}
	if s2.SessionID != 2 {
		t.Errorf("second SessionID = %d, want 2", s2.SessionID)
	}
}

func TestRecorder_Start_RejectsConcurrentSession(t *testing.T) {
	dir := t.TempDir()
	r := recorder.New(dir, nil)

	if _, err := r.Start("ENG-1"); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	if _, err := r.Start("ENG-2"); err != recorder.ErrAlreadyInProgress {
		t.Errorf("second Start() error = %v, want ErrAlreadyInProgress", err)
	}
}

func TestRecorder_RecordEvent_TruncatesPreviews(t *testing.T) {
	dir := t.TempDir()
	r := recorder.New(dir, nil)
	r.Start("ENG-1")

	long := strings.Repeat("x", 600)
	event := r.RecordEvent(recorder.EventTool, map[string]any{
		"result_preview": long,
		"other":          "untouched",
	})

	if event == nil {
		t.Fatal("RecordEvent returned nil with an active session")
	}
	got := event.Data["result_preview"].(string)
	if len(got) > recorder.MaxPreviewLength+3 {
		t.Errorf("result_preview length = %d, want <= %d", len(got), recorder.MaxPreviewLength+3)
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("result_preview = %q, want ellipsis suffix", got)
	}
	if event.Data["other"] != "untouched" {
		t.Errorf("unrelated data key was modified")
	}
}

func TestRecorder_RecordEvent_NoActiveSession(t *testing.T) {
	dir := t.TempDir()
	r := recorder.New(dir, nil)

	if event := r.RecordEvent(recorder.EventBash, nil); event != nil {
		t.Error("RecordEvent() with no active session should return nil")
	}
}

func TestRecorder_End_PersistsValidJSON(t *testing.T) {
	dir := t.TempDir()
	r := recorder.New(dir, nil)
	r.Start("ENG-1")
	r.RecordEvent(recorder.EventBash, map[string]any{"cmd": "ls"})

	s, err := r.End(recorder.StatusCompleted)
	if err != nil {
		t.Fatalf("End() error = %v", err)
	}
	if s.EndedAt == nil {
		t.Fatal("EndedAt is nil after End()")
	}

	path := filepath.Join(r.SessionsDir(), "session-1.json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading persisted session: %v", err)
	}

	var decoded recorder.Session
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("persisted session is not valid JSON: %v", err)
	}
	if decoded.SessionID != 1 || decoded.Status != recorder.StatusCompleted {
		t.Errorf("decoded session = %+v, want SessionID=1 Status=completed", decoded)
	}

	for _, entry := range dirEntries(t, r.SessionsDir()) {
		if strings.HasPrefix(entry, ".tmp-") {
			t.Errorf("leftover temp file after End(): %s", entry)
		}
	}
}

func TestRecorder_Rotation_BoundsSessionCount(t *testing.T) {
	dir := t.TempDir()
	r := recorder.New(dir, nil)

	for i := 0; i < recorder.MaxSessions+2; i++ {
		if _, err := r.Start("ENG-X"); err != nil {
			t.Fatalf("Start() #%d error = %v", i, err)
		}
		if _, err := r.End(recorder.StatusCompleted); err != nil {
			t.Fatalf("End() #%d error = %v", i, err)
		}
	}

	entries := dirEntries(t, r.SessionsDir())
	if len(entries) != recorder.MaxSessions {
		t.Fatalf("sessions dir has %d files, want %d", len(entries), recorder.MaxSessions)
	}

	if fileExists(t, r.SessionsDir(), "session-1.json") {
		t.Error("session-1.json should have been rotated out")
	}
	if fileExists(t, r.SessionsDir(), "session-2.json") {
		t.Error("session-2.json should have been rotated out")
	}
	if !fileExists(t, r.SessionsDir(), "session-102.json") {
		t.Error("session-102.json should still be present")
	}
}

func dirEntries(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir(%s): %v", dir, err)
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
	}
	return names
}

func fileExists(t *testing.T, dir, name string) bool {
	t.Helper()
	_, err := os.Stat(filepath.Join(dir, name))
	return err == nil
}
