package domain

import (
	"errors"
	"fmt"
	"slices"
)

// Errors reported by TryPlay for moves that are rejected.
var (
	ErrOccupied = errors.New("cell occupied")
	ErrGameOver = errors.New("game over")
)

// History is the ordered list of board snapshots of one game plus the
// snapshot currently viewed. Snapshot 0 is the empty board and snapshot k is
// the board after move k. History is a value: Play and JumpTo return a new
// History and leave the receiver untouched.
type History struct {
	snapshots []Board
	current   int
}

// NewHistory returns a game with one empty board, X to move.
func NewHistory() History {
	return History{snapshots: []Board{{}}}
}

// Len is the number of snapshots, including the empty starting board.
func (h History) Len() int {
	if h.snapshots == nil {
		return 1
	}
	return len(h.snapshots)
}

// Current is the index of the viewed snapshot.
func (h History) Current() int { return h.current }

// Snapshot returns snapshot k. It panics when k is out of range.
func (h History) Snapshot(k int) Board {
	h.mustHave(k)
	if h.snapshots == nil {
		return Board{}
	}
	return h.snapshots[k]
}

// Board returns the viewed board.
func (h History) Board() Board { return h.Snapshot(h.current) }

// Turn returns the mark to play at the viewed snapshot: X on even moves.
func (h History) Turn() Cell {
	if h.current%2 == 0 {
		return X
	}
	return O
}

// Winner returns the winner of the viewed board, or Empty.
func (h History) Winner() Cell { return Winner(h.Board()) }

// Status is the one-line summary shown above the board.
func (h History) Status() string {
	if w := h.Winner(); w != Empty {
		return "Winner: " + w.String()
	}
	return "Next player: " + h.Turn().String()
}

// Play places the current turn's mark at i. Moves from a won position or
// onto an occupied cell are ignored and h is returned as is.
func (h History) Play(i Index) History {
	next, _ := h.TryPlay(i)
	return next
}

// TryPlay is Play reporting why a move was rejected. On error the returned
// History is h. Playing from a past snapshot drops the snapshots after it.
func (h History) TryPlay(i Index) (History, error) {
	i.mustValid()
	board := h.Board()
	if Winner(board) != Empty {
		return h, ErrGameOver
	}
	if board[i] != Empty {
		return h, ErrOccupied
	}
	kept := []Board{{}}
	if h.snapshots != nil {
		kept = h.snapshots[:h.current+1]
	}
	// Clip so append never writes into an array another History still sees.
	snapshots := append(slices.Clip(kept), board.With(i, h.Turn()))
	return History{snapshots: snapshots, current: len(snapshots) - 1}, nil
}

// JumpTo views snapshot k without changing the recorded snapshots. It panics
// when k is out of range.
func (h History) JumpTo(k int) History {
	h.mustHave(k)
	h.current = k
	return h
}

// Has reports whether k names a recorded snapshot.
func (h History) Has(k int) bool { return k >= 0 && k < h.Len() }

func (h History) mustHave(k int) {
	if !h.Has(k) {
		panic(fmt.Sprintf("domain: snapshot %d out of range [0,%d)", k, h.Len()))
	}
}

// MoveLabel is the caption for jumping to snapshot k.
func MoveLabel(k int) string {
	if k == 0 {
		return "Go to game start"
	}
	return fmt.Sprintf("Go to move #%d", k)
}
