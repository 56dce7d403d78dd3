package diff

// myers implements the basic Myers shortest edit script algorithm over two
// line sequences.
type myers struct {
	a []Line
	b []Line
}

func newMyers(a, b []Line) *myers {
	return &myers{a: a, b: b}
}

func (m *myers) diff() []Edit {
	var edits []Edit

	for _, move := range m.backtrack() {
		var aLine, bLine *Line
		if move.prevX < len(m.a) {
			aLine = &m.a[move.prevX]
		}
		if move.prevY < len(m.b) {
			bLine = &m.b[move.prevY]
		}

		switch {
		case move.x == move.prevX:
			edits = append(edits, Edit{Type: Ins, BLine: bLine})
		case move.y == move.prevY:
			edits = append(edits, Edit{Type: Del, ALine: aLine})
		default:
			edits = append(edits, Edit{Type: Eql, ALine: aLine, BLine: bLine})
		}
	}

	// Backtracking walks end to start.
	for i, j := 0, len(edits)-1; i < j; i, j = i+1, j-1 {
		edits[i], edits[j] = edits[j], edits[i]
	}
	return edits
}

type move struct {
	prevX, prevY, x, y int
}

func (m *myers) backtrack() []move {
	x, y := len(m.a), len(m.b)
	var result []move

	trace := m.shortestEdit()
	for d := len(trace) - 1; d >= 0; d-- {
		v := trace[d]
		k := x - y

		var prevK int
		if k == -d || (k != d && v[k-1] < v[k+1]) {
			prevK = k + 1
		} else {
			prevK = k - 1
		}

		prevX := v[prevK]
		prevY := prevX - prevK

		for x > prevX && y > prevY {
			result = append(result, move{prevX: x - 1, prevY: y - 1, x: x, y: y})
			x, y = x-1, y-1
		}

		if d > 0 {
			result = append(result, move{prevX: prevX, prevY: prevY, x: x, y: y})
		}

		x, y = prevX, prevY
	}

	return result
}

func (m *myers) shortestEdit() []map[int]int {
	n, mLen := len(m.a), len(m.b)
	max := n + mLen

	v := map[int]int{1: 0}
	var trace []map[int]int

	for d := 0; d <= max; d++ {
		snapshot := make(map[int]int, len(v))
		for k, val := range v {
			snapshot[k] = val
		}
		trace = append(trace, snapshot)

		for k := -d; k <= d; k += 2 {
			var x int
			if k == -d || (k != d && v[k-1] < v[k+1]) {
				x = v[k+1]
			} else {
				x = v[k-1] + 1
			}

			y := x - k
			for x < n && y < mLen && m.a[x].Text == m.b[y].Text {
				x, y = x+1, y+1
			}

			v[k] = x

			if x >= n && y >= mLen {
				return trace
			}
		}
	}

	return trace
}
