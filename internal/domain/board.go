package domain

import (
	"errors"
	"fmt"
	"strconv"
)

// Cell represents a board cell state.
type Cell uint8

const (
	Empty Cell = iota
	X
	O
)

func (c Cell) String() string {
	switch c {
	case X:
		return "X"
	case O:
		return "O"
	default:
		return ""
	}
}

const (
	// Size is the number of rows and columns.
	Size = 15
	// Cells is the number of cells on a board.
	Cells = Size * Size
	// WinLength is the number of marks in a line that wins.
	WinLength = 5
)

// ErrOutOfBounds is returned when a coordinate does not name a cell.
var ErrOutOfBounds = errors.New("out of bounds")

// Index is a row-major cell position in [0, Cells).
type Index int

// IndexAt returns the index of row r, column c.
func IndexAt(r, c int) (Index, error) {
	if r < 0 || r >= Size || c < 0 || c >= Size {
		return 0, fmt.Errorf("cell (%d,%d): %w", r, c, ErrOutOfBounds)
	}
	return Index(r*Size + c), nil
}

// ParseIndex parses a decimal cell index.
func ParseIndex(s string) (Index, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("cell %q: %w", s, err)
	}
	if n < 0 || n >= Cells {
		return 0, fmt.Errorf("cell %d: %w", n, ErrOutOfBounds)
	}
	return Index(n), nil
}

// Valid reports whether i names a cell.
func (i Index) Valid() bool { return i >= 0 && i < Cells }

func (i Index) Row() int { return int(i) / Size }
func (i Index) Col() int { return int(i) % Size }

func (i Index) mustValid() {
	if !i.Valid() {
		panic(fmt.Sprintf("domain: cell index %d out of range [0,%d)", int(i), Cells))
	}
}

// Board is a fixed 15x15 board stored row-major. Boards are values: With
// returns a copy, so a stored snapshot never changes.
type Board [Cells]Cell

// At returns the mark at i.
func (b Board) At(i Index) Cell {
	i.mustValid()
	return b[i]
}

// With returns a copy of b with i set to c.
func (b Board) With(i Index, c Cell) Board {
	i.mustValid()
	b[i] = c
	return b
}
