// Package state provides an immutable, observer-integrated key-value
// snapshot type plus a pluggable CheckpointStore for persisting it.
//
// # State Type
//
// State uses map[string]any for maximum flexibility, similar to LangGraph's dictionary-based
// approach. All operations are immutable - modifications return new State instances.
//
//	observer := observability.NoOpObserver{}
//	s := state.New(observer)
//	s = s.Set("user", "alice")
//	s = s.Set("count", 42)
//
//	value, exists := s.Get("user")  // "alice", true
//
// # Immutability
//
// State operations never modify the original state. This enables:
//   - Safe concurrent access across goroutines
//   - Predictable workflow execution
//   - Easy debugging (state snapshots)
//   - Rollback capability through checkpointing
//
// # Observer Integration
//
// All state operations emit events through the observer interface, enabling
// production-grade observability without retrofit friction:
//
//	observer := &MyObserver{}
//	s := state.New(observer)
//	s = s.Set("key", "value")  // Emits EventStateSet
//
// When observability is not needed, use NoOpObserver for zero overhead.
//
package state
