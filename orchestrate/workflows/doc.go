// Package workflows provides composable workflow patterns for orchestrating multi-step processes.
//
// This package implements generic workflow primitives that work with any item and
// result types.
//
// # Parallel Execution Pattern
//
// The parallel execution pattern processes items concurrently using a worker pool.
// Results are aggregated and returned in original item order despite concurrent
// execution. Supports both fail-fast and collect-all-errors modes.
//
// Example with fail-fast mode:
//
//	questions := []string{"What is AI?", "What is ML?", "What is DL?"}
//
//	processor := func(ctx context.Context, question string) (string, error) {
//	    response, err := agent.Chat(ctx, question)
//	    if err != nil {
//	        return "", err
//	    }
//	    return response.Content(), nil
//	}
//
//	cfg := config.DefaultParallelConfig() // FailFast() returns true
//	result, err := workflows.ProcessParallel(ctx, cfg, questions, processor, nil)
//	if err != nil {
//	    log.Fatal(err) // First error stops all processing
//	}
//
// Example with collect-all-errors mode:
//
//	failFast := false
//	cfg := config.ParallelConfig{
//	    FailFastNil: &failFast,
//	}
//	result, err := workflows.ProcessParallel(ctx, cfg, items, processor, nil)
//	if err != nil {
//	    log.Fatal("All items failed")
//	}
//	if len(result.Errors) > 0 {
//	    fmt.Printf("%d succeeded, %d failed\n", len(result.Results), len(result.Errors))
//	    for _, taskErr := range result.Errors {
//	        log.Printf("Item %d failed: %v", taskErr.Index, taskErr.Err)
//	    }
//	}
//
// # Worker Pool Auto-Detection
//
// Parallel execution automatically sizes the worker pool based on workload and system
// resources when MaxWorkers is 0 (default):
//
//	workers = min(NumCPU * 2, WorkerCap, len(items))
//
// The 2x CPU multiplier is optimal for I/O-bound work like agent API calls. For CPU-bound
// work, set MaxWorkers to runtime.NumCPU(). The WorkerCap (default 16) prevents excessive
// goroutines for large item sets.
//
// # Error Handling Modes
//
// Fail-Fast Mode (FailFast=true, default):
//   - Stops on first error
//   - Cancels all workers immediately
//   - Returns ParallelError with partial results
//
// Collect-All-Errors Mode (FailFast=false):
//   - Continues processing all items
//   - Collects all errors in result.Errors
//   - Returns error only if ALL items failed
//   - Check result.Errors for partial failures
//
// # Observer Integration
//
// Parallel execution emits events at key points for observability:
//
//   - EventParallelStart, EventParallelComplete
//   - EventWorkerStart, EventWorkerComplete (per item, includes worker ID)
//
// Default observer is "slog" (structured logging). Use "noop" for zero overhead.
//
// # Progress Callbacks
//
// ProcessParallel supports an optional progress callback for monitoring execution:
//
//	progress := func(completed, total int, result string) {
//	    fmt.Printf("Parallel: %d/%d items complete\n", completed, total)
//	}
//
// Progress callbacks are called after each successful item completion, using atomic
// counters for thread-safe progress tracking.
//
// # Error Types
//
// ParallelError (parallel execution):
//   - Errors: All task failures with context
//   - Error(): Categorized summary with error types and counts
//   - Unwrap(): All underlying errors (Go 1.20+ multiple unwrapping)
//
// TaskError (parallel execution failures):
//   - Index: Original item position
//   - Item: Item that failed
//   - Err: Underlying error
//
// # Deadlock Prevention
//
// Parallel execution uses three-channel coordination with background result collection
// to prevent deadlocks:
//
//   - Work queue (buffered to len(items))
//   - Result channel (buffered to len(items))
//   - Done signal (unbuffered)
//
// The background collector drains the result channel concurrently with worker execution,
// preventing blocking even when all workers complete simultaneously.
//
// # Context Cancellation
//
// Workers select on context before each item. Fail-fast mode creates a cancellable
// child context; the first error triggers cancellation. A caller can also cancel the
// original context in any mode.
package workflows
