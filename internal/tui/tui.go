// Package tui is a line-oriented terminal front end for a single hot-seat
// game. It reads commands, forwards them to a domain.History and redraws.
package tui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"

	"github.com/jaminalder/codex-gomoku/internal/domain"
)

const help = `commands:
  <row> <col>   place the next mark (0-14 each)
  jump <k>      view snapshot k (0 is the game start)
  moves         list the recorded snapshots
  help          show this text
  quit          leave the game`

// UI holds the game being played and where it is drawn.
type UI struct {
	hist  domain.History
	out   io.Writer
	log   logrus.FieldLogger
	marks map[domain.Cell]*color.Color
	win   *color.Color
	dim   *color.Color
}

// Option configures a UI.
type Option func(*UI)

// WithoutColor draws plain text.
func WithoutColor() Option {
	return func(u *UI) {
		for _, c := range u.marks {
			c.DisableColor()
		}
		u.win.DisableColor()
		u.dim.DisableColor()
	}
}

// WithLogger sets the logger used for command tracing.
func WithLogger(log logrus.FieldLogger) Option {
	return func(u *UI) {
		if log != nil {
			u.log = log
		}
	}
}

// New returns a UI with a fresh game drawing to out.
func New(out io.Writer, opts ...Option) *UI {
	u := &UI{
		hist: domain.NewHistory(),
		out:  out,
		log:  logrus.StandardLogger(),
		marks: map[domain.Cell]*color.Color{
			domain.X: color.New(color.FgRed, color.Bold),
			domain.O: color.New(color.FgBlue, color.Bold),
		},
		win: color.New(color.BgYellow, color.FgBlack, color.Bold),
		dim: color.New(color.Faint),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// History returns the game as it stands.
func (u *UI) History() domain.History { return u.hist }

// Run draws the board and executes commands from in until quit or EOF.
func (u *UI) Run(in io.Reader) error {
	u.Render()
	sc := bufio.NewScanner(in)
	for {
		fmt.Fprintf(u.out, "%s> ", u.hist.Turn())
		if !sc.Scan() {
			fmt.Fprintln(u.out)
			return sc.Err()
		}
		if u.Exec(sc.Text()) {
			return nil
		}
	}
}

// Exec runs one command line and reports whether the user asked to quit.
func (u *UI) Exec(line string) bool {
	fields := strings.Fields(line)
	u.log.WithField("cmd", line).Trace("exec")
	if len(fields) == 0 {
		return false
	}
	switch fields[0] {
	case "quit", "exit", "q":
		return true
	case "help", "?":
		fmt.Fprintln(u.out, help)
	case "moves":
		u.listMoves()
	case "jump":
		u.jump(fields[1:])
	default:
		u.play(fields)
	}
	return false
}

func (u *UI) jump(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(u.out, "usage: jump <k>")
		return
	}
	k, err := strconv.Atoi(args[0])
	if err != nil || !u.hist.Has(k) {
		fmt.Fprintf(u.out, "no such move: %s (0-%d)\n", args[0], u.hist.Len()-1)
		return
	}
	u.hist = u.hist.JumpTo(k)
	u.Render()
}

func (u *UI) play(args []string) {
	if len(args) != 2 {
		fmt.Fprintf(u.out, "unknown command %q, try help\n", strings.Join(args, " "))
		return
	}
	r, errR := strconv.Atoi(args[0])
	c, errC := strconv.Atoi(args[1])
	if errR != nil || errC != nil {
		fmt.Fprintf(u.out, "unknown command %q, try help\n", strings.Join(args, " "))
		return
	}
	i, err := domain.IndexAt(r, c)
	if err != nil {
		fmt.Fprintf(u.out, "error: %v\n", err)
		return
	}
	next, err := u.hist.TryPlay(i)
	switch {
	case errors.Is(err, domain.ErrOccupied):
		fmt.Fprintln(u.out, "cell occupied")
		return
	case errors.Is(err, domain.ErrGameOver):
		fmt.Fprintln(u.out, "game over, jump back to play on")
		return
	}
	u.hist = next
	u.Render()
}

func (u *UI) listMoves() {
	for k := 0; k < u.hist.Len(); k++ {
		marker := " "
		if k == u.hist.Current() {
			marker = "*"
		}
		fmt.Fprintf(u.out, "%s %2d. %s\n", marker, k, domain.MoveLabel(k))
	}
}

// Render draws the viewed board and the status line.
func (u *UI) Render() {
	b := u.hist.Board()
	win := make(map[domain.Index]bool, domain.WinLength)
	for _, i := range domain.WinningLine(b) {
		win[i] = true
	}

	var sb strings.Builder
	sb.WriteString("   ")
	for c := 0; c < domain.Size; c++ {
		fmt.Fprintf(&sb, "%3d", c)
	}
	sb.WriteString("\n")
	for r := 0; r < domain.Size; r++ {
		fmt.Fprintf(&sb, "%3d", r)
		for c := 0; c < domain.Size; c++ {
			i := domain.Index(r*domain.Size + c)
			sb.WriteString("  ")
			switch mark := b.At(i); {
			case win[i]:
				sb.WriteString(u.win.Sprint(mark.String()))
			case mark == domain.Empty:
				sb.WriteString(u.dim.Sprint("."))
			default:
				sb.WriteString(u.marks[mark].Sprint(mark.String()))
			}
		}
		sb.WriteString("\n")
	}
	fmt.Fprintf(&sb, "%s  (move %d of %d)\n", u.hist.Status(), u.hist.Current(), u.hist.Len()-1)
	_, _ = io.WriteString(u.out, sb.String())
}
