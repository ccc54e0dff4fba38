package workflows

// ProgressFunc provides visibility into ProcessParallel's progress.
// Called after each successful item completion. Not called for items that
// fail. Useful for progress bars, logging, or monitoring.
//
// Parameters:
//
//   - completed: Number of items completed successfully so far (1-indexed)
//   - total: Total number of items passed to ProcessParallel
//   - state: Result of the item that just completed
//
// Example:
//
//	progress := func(completed, total int, result string) {
//	    fmt.Printf("Progress: %d/%d\n", completed, total)
//	}
type ProgressFunc[TContext any] func(
	completed int,
	total int,
	state TContext,
)
