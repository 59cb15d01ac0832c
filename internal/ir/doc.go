// Package ir provides the canonical data model for the Loom workflow engine.
//
// This package contains type definitions only. All other internal packages
// import ir; ir imports nothing internal. This ensures ir remains the
// foundational layer with no circular dependencies.
//
// Key design constraints:
//   - NO float types anywhere - use int64 for numbers (floats break
//     deterministic hashing)
//   - Deltas and Receipts are immutable once constructed
//   - All JSON tags use snake_case
//   - Transaction ordering uses logical seq numbers, never wall-clock
//     timestamps
package ir
