// Package differ provides line-oriented text diffing based on a longest common
// subsequence of lines.
//
// The pipeline is: split both texts into lines, compute which lines belong to
// a longest common subsequence (ComputeMembership), then walk both sequences
// once to emit unchanged, added and removed lines (Emit).
package differ

import (
	"fmt"
	"strings"
)

// Result holds the outcome of comparing two texts.
type Result struct {
	Summary Summary `json:"summary"`
	Diff    string  `json:"diff"`
	Lines   []Line  `json:"-"`
}

// SplitLines splits text on "\n". An empty text has no lines; a trailing
// newline yields a trailing empty line.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

// TextDiff computes the full line diff from original to modified.
func TextDiff(original, modified string) Result {
	return DiffLines(SplitLines(original), SplitLines(modified))
}

// DiffLines computes the diff of two already split line sequences.
func DiffLines(a, b []string) Result {
	lines, sum := Emit(a, b, ComputeMembership(a, b))
	return Result{
		Summary: sum,
		Diff:    Render(lines),
		Lines:   lines,
	}
}

// HasChanges reports whether any line was added or removed.
func (r Result) HasChanges() bool {
	return r.Summary.Added > 0 || r.Summary.Removed > 0
}

// Describe returns a human-readable summary of the diff.
func (r Result) Describe() string {
	if !r.HasChanges() {
		return "No changes detected"
	}
	return fmt.Sprintf("%d additions, %d deletions, %d unchanged", r.Summary.Added, r.Summary.Removed, r.Summary.Unchanged)
}
