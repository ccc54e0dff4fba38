package queue

import (
	"context"
	"fmt"
	"net/http"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/structpb"
)

// toolInvoker is the tracker's remote tool-invocation protocol realized as
// a single Connect RPC procedure. Every tool call — Task_ListIssues,
// Task_GetIssue, Task_AddComment, Task_TransitionIssueState — goes through
// this one unary method, carrying the tool name and its arguments as a
// protobuf Struct and getting back a Struct of the tool's JSON result.
//
// This mirrors how a generated Connect client is shaped (a thin wrapper
// around a *connect.Client[Req, Res] bound to one fully-qualified
// procedure path) without requiring .proto codegen for a tool surface
// that spec.md §9 treats as dynamically-typed JSON at the call site.
type toolInvoker struct {
	client *connect.Client[structpb.Struct, structpb.Struct]
}

const invokeToolProcedure = "/tracker.v1.TaskTrackerService/InvokeTool"

// newToolInvoker builds the invoker bound to baseURL. apiKey, if non-empty,
// is sent as a bearer token on every call.
func newToolInvoker(httpClient connect.HTTPClient, baseURL, apiKey string) *toolInvoker {
	var opts []connect.ClientOption
	if apiKey != "" {
		opts = append(opts, connect.WithInterceptors(bearerInterceptor{token: apiKey}))
	}

	return &toolInvoker{
		client: connect.NewClient[structpb.Struct, structpb.Struct](
			httpClient,
			baseURL+invokeToolProcedure,
			opts...,
		),
	}
}

// Invoke calls the named tool with the given arguments and returns its
// JSON result decoded as a plain map. Any transport failure is wrapped in
// ErrConnection; a response the tracker's minimal schema can't validate
// should be wrapped in ErrProtocol by the caller.
func (t *toolInvoker) Invoke(ctx context.Context, tool string, arguments map[string]any) (map[string]any, error) {
	argStruct, err := structpb.NewStruct(arguments)
	if err != nil {
		return nil, fmt.Errorf("%w: encode arguments for %s: %v", ErrProtocol, tool, err)
	}

	req := connect.NewRequest(&structpb.Struct{
		Fields: map[string]*structpb.Value{
			"tool":      structpb.NewStringValue(tool),
			"arguments": structpb.NewStructValue(argStruct),
		},
	})

	resp, err := t.client.CallUnary(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrConnection, tool, err)
	}

	return resp.Msg.AsMap(), nil
}

type bearerInterceptor struct {
	token string
}

func (i bearerInterceptor) WrapUnary(next connect.UnaryFunc) connect.UnaryFunc {
	return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		req.Header().Set("Authorization", "Bearer "+i.token)
		return next(ctx, req)
	}
}

func (i bearerInterceptor) WrapStreamingClient(next connect.StreamingClientFunc) connect.StreamingClientFunc {
	return next
}

func (i bearerInterceptor) WrapStreamingHandler(next connect.StreamingHandlerFunc) connect.StreamingHandlerFunc {
	return next
}

// defaultHTTPClient is used when the caller does not supply one.
var defaultHTTPClient connect.HTTPClient = http.DefaultClient
