// Package gitdiff extracts change statistics from `git diff` output.
package gitdiff

import (
	"path"
	"regexp"
	"sort"
	"strings"
)

// FileChange describes one file section of a git diff.
type FileChange struct {
	File      string `json:"file"`
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
	IsNew     bool   `json:"isNew"`
	IsDeleted bool   `json:"isDeleted"`
	IsRenamed bool   `json:"isRenamed"`
}

// ExtensionStats aggregates changes for one file extension.
type ExtensionStats struct {
	Files     int `json:"files"`
	Additions int `json:"additions"`
	Deletions int `json:"deletions"`
}

// Summary holds the totals of an analysis.
type Summary struct {
	FilesChanged   int `json:"filesChanged"`
	TotalAdditions int `json:"totalAdditions"`
	TotalDeletions int `json:"totalDeletions"`
	NetChange      int `json:"netChange"`
	NewFiles       int `json:"newFiles"`
	DeletedFiles   int `json:"deletedFiles"`
	RenamedFiles   int `json:"renamedFiles"`
}

// Analysis is the result of Analyze.
type Analysis struct {
	Summary     Summary                    `json:"summary"`
	ByExtension map[string]*ExtensionStats `json:"byExtension"`
	Files       []FileChange               `json:"files"`
}

var (
	sectionRe = regexp.MustCompile(`(?m)^diff --git `)
	headerRe  = regexp.MustCompile(`a/(.+?)\s+b/(.+)`)
)

// NoExtension is the ByExtension key for files without a dot in their name.
const NoExtension = "(none)"

// Analyze parses diff and reports per-file and aggregate statistics.
// Sections whose header cannot be parsed are skipped.
func Analyze(diff string) Analysis {
	a := Analysis{
		ByExtension: make(map[string]*ExtensionStats),
		Files:       []FileChange{},
	}

	for _, chunk := range split(diff) {
		m := headerRe.FindStringSubmatch(chunk)
		if m == nil {
			continue
		}
		fc := FileChange{
			File:      m[2],
			IsNew:     strings.Contains(chunk, "new file mode"),
			IsDeleted: strings.Contains(chunk, "deleted file mode"),
			IsRenamed: m[1] != m[2],
		}
		for _, line := range strings.Split(chunk, "\n") {
			switch {
			case strings.HasPrefix(line, "+") && !strings.HasPrefix(line, "+++"):
				fc.Additions++
			case strings.HasPrefix(line, "-") && !strings.HasPrefix(line, "---"):
				fc.Deletions++
			}
		}
		a.Files = append(a.Files, fc)
	}

	for _, f := range a.Files {
		a.Summary.TotalAdditions += f.Additions
		a.Summary.TotalDeletions += f.Deletions
		if f.IsNew {
			a.Summary.NewFiles++
		}
		if f.IsDeleted {
			a.Summary.DeletedFiles++
		}
		if f.IsRenamed {
			a.Summary.RenamedFiles++
		}

		ext := Extension(f.File)
		st, ok := a.ByExtension[ext]
		if !ok {
			st = &ExtensionStats{}
			a.ByExtension[ext] = st
		}
		st.Files++
		st.Additions += f.Additions
		st.Deletions += f.Deletions
	}
	a.Summary.FilesChanged = len(a.Files)
	a.Summary.NetChange = a.Summary.TotalAdditions - a.Summary.TotalDeletions
	return a
}

// Extension returns the text after the last dot of the file name, with the
// dot, or NoExtension.
func Extension(file string) string {
	base := path.Base(file)
	i := strings.LastIndex(base, ".")
	if i < 0 {
		return NoExtension
	}
	return base[i:]
}

// Extensions returns the keys of ByExtension in sorted order.
func (a Analysis) Extensions() []string {
	keys := make([]string, 0, len(a.ByExtension))
	for k := range a.ByExtension {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func split(diff string) []string {
	var chunks []string
	for _, c := range sectionRe.Split(diff, -1) {
		if c != "" {
			chunks = append(chunks, c)
		}
	}
	return chunks
}
