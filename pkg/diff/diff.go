// Package diff computes shortest-edit-script diffs between documents and
// groups them into unified hunks.
package diff

import "strings"

type EditType int

const (
	Eql EditType = iota
	Ins
	Del
)

func (t EditType) String() string {
	switch t {
	case Ins:
		return "+"
	case Del:
		return "-"
	default:
		return " "
	}
}

// Line is one document line tagged with its 1-based number.
type Line struct {
	Number int
	Text   string
}

// Edit is one step of an edit script. ALine and BLine are nil on the side
// the edit does not touch.
type Edit struct {
	Type  EditType
	ALine *Line
	BLine *Line
}

func (e Edit) String() string {
	line := e.ALine
	if line == nil {
		line = e.BLine
	}
	return e.Type.String() + line.Text
}

// Lines splits a document for diffing, numbering from 1.
func Lines(document string) []Line {
	if document == "" {
		return nil
	}

	raw := strings.Split(strings.TrimSuffix(document, "\n"), "\n")
	lines := make([]Line, len(raw))
	for i, text := range raw {
		lines[i] = Line{Number: i + 1, Text: text}
	}
	return lines
}

// Diff returns the edit script turning document a into document b.
func Diff(a, b string) []Edit {
	return newMyers(Lines(a), Lines(b)).diff()
}

// DiffHunks diffs two documents and groups the edits into context hunks.
func DiffHunks(a, b string) []*Hunk {
	return FilterHunks(Diff(a, b))
}
