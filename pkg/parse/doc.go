// Package parse normalizes the list-valued cells of tabular business data.
//
// Two kinds of lists appear in the dataset:
//
//   - Phase lists (Worker.AvailableSlots, Task.PreferredPhases) accept bracketed
//     ("[1,2,3]"), comma-separated ("1,2,3") and range ("1-3") syntax and parse
//     to ordered integer sequences. Bad tokens are reported, not fatal.
//   - Comma lists (skills, requested task IDs) parse to trimmed, non-empty
//     strings with no error reporting.
//
// All functions are pure and safe for concurrent use.
//
// # Canonical Form
//
// FormatPhaseList produces "1,2,3" and FormatBracketed produces "[1,2,3]".
// Re-parsing a canonical serialization yields the same sequence:
//
//	phases, _ := parse.ParsePhaseList("2-4")
//	again, _ := parse.ParsePhaseList(parse.FormatBracketed(phases))
//	// again == phases
package parse
