package domain

// directions are scanned in this order from every occupied cell:
// right, down, down-right, up-right. Each is {dRow, dCol}.
var directions = [4][2]int{{0, 1}, {1, 0}, {1, 1}, {-1, 1}}

// Winner returns the mark owning a line of WinLength, or Empty if there is
// none. A full board without a line also yields Empty.
func Winner(b Board) Cell {
	line := WinningLine(b)
	if line == nil {
		return Empty
	}
	return b[line[0]]
}

// WinningLine returns the cells of the first line of WinLength found when
// scanning row-major and then by direction, or nil. Longer runs report the
// first WinLength cells from where the scan entered them.
func WinningLine(b Board) []Index {
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			mark := b[r*Size+c]
			if mark == Empty {
				continue
			}
			for _, d := range directions {
				if line := walk(b, r, c, d[0], d[1], mark); line != nil {
					return line
				}
			}
		}
	}
	return nil
}

func walk(b Board, r, c, dr, dc int, mark Cell) []Index {
	n := 1
	for rr, cc := r+dr, c+dc; rr >= 0 && rr < Size && cc >= 0 && cc < Size; rr, cc = rr+dr, cc+dc {
		if b[rr*Size+cc] != mark {
			return nil
		}
		n++
		if n == WinLength {
			line := make([]Index, WinLength)
			for k := range line {
				line[k] = Index((r+k*dr)*Size + c + k*dc)
			}
			return line
		}
	}
	return nil
}
