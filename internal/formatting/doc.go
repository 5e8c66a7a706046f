// Package formatting implements the plain-text structural editing engine used
// by the note editor: list continuation, indentation, marker toggling and line
// reordering.
//
// Every function is pure. It takes the full document text plus a selection
// and returns the new text together with the selection to apply afterwards.
// Offsets count characters (runes), not bytes, and out-of-range offsets are
// clamped rather than rejected.
//
// A line is made of a marker prefix and a body. The prefix is, in order:
//
//	indent   leading whitespace
//	list     "• ", "N. " or the legacy "- "
//	task     "[ ] " or "[x] "
//	star     "⭐ "
//
// ParsePrefix and ComposePrefix are the only places that know this grammar.
// Transforms edit the parsed Prefix instead of scanning lines themselves.
package formatting
