// Package extract implements the sequential cycle extractor.
//
// The extractor repeatedly takes the leftmost complete cycle out of a
// sequence log, classifies it against the strict template of every branch,
// and reports whatever text no cycle consumed.
//
// A cycle is an entry label, then a fork label, then every label of at
// least one branch in order, then an exit label. Arbitrary noise (other
// text, other labels, line breaks) may appear between any two of them. The
// consumed span runs from the start of the entry label through the end of
// the first exit label that follows a completed branch, so a cycle never
// reaches into the opening of the next one.
//
// Two engines are available:
//
//	fsm      tokenizer plus a deterministic matcher over the token stream,
//	         linear in the log size (default)
//	pattern  backtracking regular expressions over the raw text with literal
//	         splicing of consumed spans, kept for parity diagnostics
//
// The engines agree on well-formed logs. They differ when a cycle mixes the
// opening labels of one branch with a complete later branch: the pattern
// engine commits to the branch starting at the earliest position that can
// still be completed anywhere later and runs to the first exit after it,
// while the fsm engine closes on the first exit after any branch completes.
package extract
