package diff

import "fmt"

const hunkContext = 3

// Hunk is a run of edits surrounded by up to hunkContext lines of unchanged
// context, as printed under one `@@` header.
type Hunk struct {
	AStart int
	BStart int
	Edits  []Edit
}

// FilterHunks splits an edit script into its displayable hunks, dropping
// unchanged regions between them.
func FilterHunks(edits []Edit) []*Hunk {
	var hunks []*Hunk
	offset := 0

	for {
		for offset < len(edits) && edits[offset].Type == Eql {
			offset++
		}
		if offset >= len(edits) {
			return hunks
		}

		offset -= hunkContext + 1

		aStart, bStart := 0, 0
		if offset >= 0 {
			if line := edits[offset].ALine; line != nil {
				aStart = line.Number
			}
			if line := edits[offset].BLine; line != nil {
				bStart = line.Number
			}
		}

		hunk := &Hunk{AStart: aStart, BStart: bStart}
		offset = hunk.build(edits, offset)
		hunks = append(hunks, hunk)
	}
}

// Header renders the `@@ -a,n +b,m @@` line.
func (h *Hunk) Header() string {
	aStart, aLines := h.offsetsFor(func(e Edit) *Line { return e.ALine }, h.AStart)
	bStart, bLines := h.offsetsFor(func(e Edit) *Line { return e.BLine }, h.BStart)

	return fmt.Sprintf("@@ -%d,%d +%d,%d @@", aStart, aLines, bStart, bLines)
}

func (h *Hunk) build(edits []Edit, offset int) int {
	counter := -1

	for counter != 0 {
		if offset >= 0 && counter > 0 {
			h.Edits = append(h.Edits, edits[offset])
		}

		offset++
		if offset >= len(edits) {
			break
		}

		if offset+hunkContext < len(edits) {
			switch edits[offset+hunkContext].Type {
			case Ins, Del:
				counter = 2*hunkContext + 1
			default:
				counter--
			}
		}
	}

	return offset
}

func (h *Hunk) offsetsFor(side func(Edit) *Line, fallback int) (int, int) {
	var lines []*Line
	for _, edit := range h.Edits {
		if line := side(edit); line != nil {
			lines = append(lines, line)
		}
	}

	start := fallback
	if len(lines) > 0 {
		start = lines[0].Number
	}
	return start, len(lines)
}
