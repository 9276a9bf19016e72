// Package ir provides the shared data model for tinv.
//
// Both checks (cycle extraction and structural tally) produce values defined
// here, and every other internal package imports ir; ir imports nothing
// internal.
//
// Key design constraints:
//   - Positions are byte offsets into the immutable log text
//   - Counts are plain ints; NO float types in canonical output
//   - All JSON tags use snake_case
//   - Canonical JSON (RFC 8785) is the only serialization used for digests
//     and golden snapshots
package ir
