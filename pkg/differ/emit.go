package differ

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Kind tags a diff line.
type Kind int

const (
	Unchanged Kind = iota
	Added
	Removed
)

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case Unchanged:
		return "unchanged"
	case Added:
		return "added"
	case Removed:
		return "removed"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Prefix returns the one-character marker used when rendering.
func (k Kind) Prefix() string {
	switch k {
	case Added:
		return "+"
	case Removed:
		return "-"
	default:
		return " "
	}
}

// MarshalJSON encodes the kind by name.
func (k Kind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// Line is one line of diff output.
type Line struct {
	Kind Kind   `json:"kind"`
	Text string `json:"text"`
}

// String renders the line with its prefix.
func (l Line) String() string {
	return l.Kind.Prefix() + l.Text
}

// Summary holds the counts of a diff.
type Summary struct {
	Added         int `json:"added"`
	Removed       int `json:"removed"`
	Unchanged     int `json:"unchanged"`
	TotalOriginal int `json:"totalOriginal"`
	TotalModified int `json:"totalModified"`
}

// Emit walks a and b once and produces the tagged diff lines.
//
// Lines of b outside the common subsequence are emitted before the pending
// lines of a are consumed, so a replaced block lists its additions ahead of
// its removals.
func Emit(a, b []string, mem Membership) ([]Line, Summary) {
	m, n := len(a), len(b)
	lines := make([]Line, 0, max(m, n))

	i, j := 0, 0
	for i < m || j < n {
		switch {
		case i < m && mem.A[i] && j < n && mem.B[j]:
			lines = append(lines, Line{Kind: Unchanged, Text: a[i]})
			i++
			j++
		case j < n && !mem.B[j]:
			lines = append(lines, Line{Kind: Added, Text: b[j]})
			j++
		case i < m:
			lines = append(lines, Line{Kind: Removed, Text: a[i]})
			i++
		default:
			lines = append(lines, Line{Kind: Added, Text: b[j]})
			j++
		}
	}

	sum := Summary{TotalOriginal: m, TotalModified: n}
	for _, l := range lines {
		switch l.Kind {
		case Added:
			sum.Added++
		case Removed:
			sum.Removed++
		default:
			sum.Unchanged++
		}
	}
	return lines, sum
}

// Render joins the prefixed lines with newlines. There is no trailing newline.
func Render(lines []Line) string {
	var sb strings.Builder
	for i, l := range lines {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(l.Kind.Prefix())
		sb.WriteString(l.Text)
	}
	return sb.String()
}
