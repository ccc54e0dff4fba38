// Package config provides configuration structures for orchestration components:
// parallel task execution and run-state checkpointing, each with a DefaultX
// constructor and a Merge method for layering a loaded config over defaults.
//
// # Design Principles
//
// Following tau-orchestrate design principles:
//
//   - Configuration only exists during initialization
//   - Does not persist into runtime components
//   - Validation happens at point of use (workflows/state packages)
//   - No circular dependencies with domain packages
//
// # Configuration Merging
//
// All configuration types support a Merge pattern following tau-core conventions.
// This enables layered configuration where loaded configs merge over defaults:
//
//	cfg := config.DefaultParallelConfig()
//	var loaded config.ParallelConfig
//	json.Unmarshal(data, &loaded)
//	cfg.Merge(&loaded)
//
// Merge semantics by field type:
//
//   - Strings: Merge if source is non-empty
//   - Integers: Merge if source is greater than zero
//   - Durations: Merge if source is greater than zero
//   - Pointers: Merge if source is non-nil
//   - Nested configs: Recursive merge
//
// # Boolean Fields with Non-False Defaults
//
// For boolean fields where the default is true (e.g., ParallelConfig.FailFast),
// a pointer type (*bool) is used with an accessor method to distinguish between:
//
//   - nil: Field not specified, accessor returns default value
//   - &false: Explicitly set to false, accessor returns false
//   - &true: Explicitly set to true, accessor returns true
//
// The convention is to name the field with a "Nil" suffix (e.g., FailFastNil)
// and provide an accessor method with the original name (e.g., FailFast()):
//
//	type ParallelConfig struct {
//	    FailFastNil *bool `json:"fail_fast"`
//	}
//
//	func (c *ParallelConfig) FailFast() bool {
//	    if c.FailFastNil == nil {
//	        return true  // default
//	    }
//	    return *c.FailFastNil
//	}
//
// This prevents unintended behavior when unmarshaling partial JSON configs,
// where unspecified boolean fields would otherwise unmarshal to false and
// incorrectly override a true default.
//
// Example:
//
//	// Config file omits fail_fast entirely
//	{"max_workers": 4}
//
//	// Without *bool: FailFast becomes false (zero value), overriding default
//	// With *bool: FailFastNil is nil, FailFast() returns true (default)
//
// For boolean fields with false defaults, plain bool is sufficient since
// the zero value matches the default and only explicit true values need merging.
package config
