package diff

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(edits []Edit) string {
	lines := make([]string, len(edits))
	for i, edit := range edits {
		lines[i] = edit.String()
	}
	return strings.Join(lines, "\n")
}

func TestDiffClassicExample(t *testing.T) {
	a := "A\nB\nC\nA\nB\nB\nA"
	b := "C\nB\nA\nB\nA\nC"

	expected := strings.Join([]string{
		"-A",
		"-B",
		" C",
		"+B",
		" A",
		" B",
		"-B",
		" A",
		"+C",
	}, "\n")

	assert.Equal(t, expected, render(Diff(a, b)))
}

func TestDiffEqualDocuments(t *testing.T) {
	doc := "one\ntwo\nthree\n"

	edits := Diff(doc, doc)
	require.Len(t, edits, 3)
	for _, edit := range edits {
		assert.Equal(t, Eql, edit.Type)
	}
	assert.Empty(t, FilterHunks(edits))
}

func TestDiffAgainstEmptyDocument(t *testing.T) {
	edits := Diff("", "a\nb\n")
	require.Len(t, edits, 2)
	assert.Equal(t, Ins, edits[0].Type)
	assert.Equal(t, Ins, edits[1].Type)

	edits = Diff("a\nb\n", "")
	require.Len(t, edits, 2)
	assert.Equal(t, Del, edits[0].Type)
	assert.Equal(t, Del, edits[1].Type)
}

func TestLinesNumbering(t *testing.T) {
	lines := Lines("a\nb\nc\n")
	require.Len(t, lines, 3)
	assert.Equal(t, 1, lines[0].Number)
	assert.Equal(t, "c", lines[2].Text)

	assert.Nil(t, Lines(""))
}

func TestHunkHeaderAndContext(t *testing.T) {
	var aLines, bLines []string
	for _, n := range []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "10"} {
		aLines = append(aLines, n)
		bLines = append(bLines, n)
	}
	bLines[6] = "changed"

	hunks := DiffHunks(strings.Join(aLines, "\n"), strings.Join(bLines, "\n"))
	require.Len(t, hunks, 1)

	hunk := hunks[0]
	assert.Equal(t, "@@ -4,7 +4,7 @@", hunk.Header())

	// Three lines of context either side of the del/ins pair.
	assert.Equal(t, 8, len(hunk.Edits))
	assert.Equal(t, Eql, hunk.Edits[0].Type)
	assert.Equal(t, Del, hunk.Edits[3].Type)
	assert.Equal(t, Ins, hunk.Edits[4].Type)
	assert.Equal(t, Eql, hunk.Edits[7].Type)
}

func TestHunkSplitsDistantChanges(t *testing.T) {
	var aLines []string
	for i := 0; i < 30; i++ {
		aLines = append(aLines, "ctx")
	}
	bLines := append([]string(nil), aLines...)
	bLines[0] = "first"
	bLines[29] = "last"

	hunks := DiffHunks(strings.Join(aLines, "\n"), strings.Join(bLines, "\n"))
	assert.Len(t, hunks, 2)
}
