// Package store provides SQLite-backed history of verification runs.
//
// Every recorded run keeps both check outcomes side by side:
//   - runs: one row per run (engine, limit, totals, remainder, verdicts,
//     canonical report JSON)
//   - run_counts: per-branch extraction counts and per-label tally counts
//
// # Critical Patterns
//
// Logical Ordering
//   - Runs are ordered by seq INTEGER (logical clock), NEVER timestamps
//   - All queries include: ORDER BY seq ASC, id COLLATE BINARY ASC
//
// Content Identity
//   - log_digest (see ir.LogDigest) identifies byte-identical logs, so
//     repeated checks of one log can be compared
//   - run IDs are UUIDv7
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
