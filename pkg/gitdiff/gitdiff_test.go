package gitdiff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `diff --git a/main.go b/main.go
index 1111111..2222222 100644
--- a/main.go
+++ b/main.go
@@ -1,3 +1,4 @@
 package main
-import "fmt"
+import (
+	"fmt"
+)
diff --git a/docs/NOTES b/docs/NOTES
new file mode 100644
--- /dev/null
+++ b/docs/NOTES
@@ -0,0 +1 @@
+hello
diff --git a/old.go b/pkg/new.go
similarity index 90%
rename from old.go
rename to pkg/new.go
diff --git a/gone.txt b/gone.txt
deleted file mode 100644
--- a/gone.txt
+++ /dev/null
@@ -1,2 +0,0 @@
-a
-b
`

func TestAnalyze(t *testing.T) {
	a := Analyze(sample)

	require.Len(t, a.Files, 4)
	assert.Equal(t, FileChange{File: "main.go", Additions: 3, Deletions: 1}, a.Files[0])
	assert.Equal(t, FileChange{File: "docs/NOTES", Additions: 1, IsNew: true}, a.Files[1])
	assert.Equal(t, FileChange{File: "pkg/new.go", IsRenamed: true}, a.Files[2])
	assert.Equal(t, FileChange{File: "gone.txt", Deletions: 2, IsDeleted: true}, a.Files[3])

	assert.Equal(t, Summary{
		FilesChanged:   4,
		TotalAdditions: 4,
		TotalDeletions: 3,
		NetChange:      1,
		NewFiles:       1,
		DeletedFiles:   1,
		RenamedFiles:   1,
	}, a.Summary)

	assert.Equal(t, []string{"(none)", ".go", ".txt"}, a.Extensions())
	assert.Equal(t, ExtensionStats{Files: 2, Additions: 3, Deletions: 1}, *a.ByExtension[".go"])
}

func TestAnalyze_NoSections(t *testing.T) {
	a := Analyze("just some text\nwithout headers")
	assert.Empty(t, a.Files)
	assert.Equal(t, Summary{}, a.Summary)
}

func TestExtension(t *testing.T) {
	assert.Equal(t, ".go", Extension("a/b/c.go"))
	assert.Equal(t, ".gz", Extension("archive.tar.gz"))
	assert.Equal(t, NoExtension, Extension("Makefile"))
	assert.Equal(t, NoExtension, Extension("dir.d/Makefile"))
}
