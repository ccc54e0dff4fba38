package queue_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/tailored-agentic-units/taskteam/domain"
	"github.com/tailored-agentic-units/taskteam/queue"
)

// fakeTracker is a minimal stand-in for the tracker's InvokeTool RPC,
// scripted per test with a tool -> response table. Unscripted tools
// return an empty Struct, which matches how Task_AddComment and
// Task_TransitionIssueState respond on success.
type fakeTracker struct {
	responses map[string]map[string]any
	calls     []string
	comments  []string
}

func newFakeTracker() *fakeTracker {
	return &fakeTracker{responses: map[string]map[string]any{}}
}

func (f *fakeTracker) handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle(connect.NewUnaryHandler(
		"/tracker.v1.TaskTrackerService/InvokeTool",
		func(ctx context.Context, req *connect.Request[structpb.Struct]) (*connect.Response[structpb.Struct], error) {
			m := req.Msg.AsMap()
			tool, _ := m["tool"].(string)
			f.calls = append(f.calls, tool)
			if args, ok := m["arguments"].(map[string]any); ok {
				if body, ok := args["body"].(string); ok {
					f.comments = append(f.comments, body)
				}
			}

			out, ok := f.responses[tool]
			if !ok {
				out = map[string]any{}
			}
			s, err := structpb.NewStruct(out)
			if err != nil {
				return nil, err
			}
			return connect.NewResponse(s), nil
		},
	))
	return mux
}

func startTracker(t *testing.T, f *fakeTracker) string {
	t.Helper()
	srv := httptest.NewServer(f.handler())
	t.Cleanup(srv.Close)
	return srv.URL
}

func TestTaskQueue_GetTodo_SortsByPriority(t *testing.T) {
	tracker := newFakeTracker()
	tracker.responses["Task_ListIssues"] = map[string]any{
		"issues": []any{
			map[string]any{"identifier": "ENG-1", "priority": "low", "state": "Todo"},
			map[string]any{"identifier": "ENG-2", "priority": "urgent", "state": "Todo"},
			map[string]any{"identifier": "ENG-3", "priority": "high", "state": "Todo"},
		},
	}

	q := queue.New("team-a", startTracker(t, tracker), "", nil)
	if err := q.Connect(); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer q.Disconnect()

	tasks, err := q.GetTodo(context.Background(), "")
	if err != nil {
		t.Fatalf("GetTodo() error = %v", err)
	}
	if len(tasks) != 3 {
		t.Fatalf("len(tasks) = %d, want 3", len(tasks))
	}
	if tasks[0].Identifier != "ENG-2" {
		t.Errorf("tasks[0] = %s, want ENG-2 (urgent first)", tasks[0].Identifier)
	}
}

func TestTaskQueue_Claim_FailsWhenAlreadyInProgress(t *testing.T) {
	tracker := newFakeTracker()
	tracker.responses["Task_GetIssue"] = map[string]any{
		"issue": map[string]any{"state": "In Progress"},
	}

	q := queue.New("team-a", startTracker(t, tracker), "", nil)
	q.Connect()
	defer q.Disconnect()

	if q.Claim(context.Background(), "ENG-1", 0) {
		t.Error("Claim() = true for a task already in progress, want false")
	}
	for _, call := range tracker.calls {
		if call == "Task_AddComment" || call == "Task_TransitionIssueState" {
			t.Errorf("Claim() on a non-Todo task should not call %s", call)
		}
	}
}

func TestTaskQueue_Claim_SucceedsAndAppendsMarker(t *testing.T) {
	tracker := newFakeTracker()
	tracker.responses["Task_GetIssue"] = map[string]any{
		"issue": map[string]any{"state": domain.StateTodo},
	}

	q := queue.New("team-a", startTracker(t, tracker), "", nil)
	q.Connect()
	defer q.Disconnect()

	if !q.Claim(context.Background(), "ENG-1", 3) {
		t.Fatal("Claim() = false, want true for a Todo task")
	}

	var sawComment, sawTransition bool
	for _, call := range tracker.calls {
		switch call {
		case "Task_AddComment":
			sawComment = true
		case "Task_TransitionIssueState":
			sawTransition = true
		}
	}
	if !sawComment || !sawTransition {
		t.Errorf("calls = %v, want both Task_AddComment and Task_TransitionIssueState", tracker.calls)
	}

	const wantMarker = "__CLAIM__worker-3__"
	var sawMarker bool
	for _, body := range tracker.comments {
		if body == wantMarker {
			sawMarker = true
		}
	}
	if !sawMarker {
		t.Errorf("comments = %v, want the claim marker %q", tracker.comments, wantMarker)
	}
}

func TestTaskQueue_CallTool_NotConnected(t *testing.T) {
	q := queue.New("team-a", "http://unused", "", nil)

	if q.Claim(context.Background(), "ENG-1", 0) {
		t.Error("Claim() before Connect() should fail closed")
	}
}
