package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/jaminalder/codex-gomoku/internal/app"
	"github.com/jaminalder/codex-gomoku/internal/domain"
)

type handlers struct {
	svc       *app.Service
	tpl       *templates
	heartbeat time.Duration
	log       logrus.FieldLogger
}

func (h *handlers) renderBoard(gs app.GameState, errMsg string) []byte {
	return renderTemplate(h.tpl.board, "", newBoardView(gs, errMsg))
}

func writeHTML(w http.ResponseWriter, b []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

func (h *handlers) index(w http.ResponseWriter, r *http.Request) {
	writeHTML(w, renderTemplate(h.tpl.index, "base", nil))
}

func (h *handlers) create(w http.ResponseWriter, r *http.Request) {
	gs, err := h.svc.CreateGame()
	if err != nil {
		http.Error(w, "failed to create", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/game/"+gs.ID, http.StatusSeeOther)
}

func (h *handlers) view(w http.ResponseWriter, r *http.Request) {
	gs, ok := h.svc.Get(chi.URLParam(r, "id"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	writeHTML(w, renderTemplate(h.tpl.game, "base", newBoardView(*gs, "")))
}

func formInt(r *http.Request, key string) (int, error) {
	if err := r.ParseForm(); err != nil {
		return 0, fmt.Errorf("parse form: %w", err)
	}
	v := r.Form.Get(key)
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.New("invalid " + key)
	}
	return n, nil
}

// formIndex reads the target cell either as a flat "cell" index or as an
// "r"/"c" coordinate pair.
func formIndex(r *http.Request) (domain.Index, error) {
	if err := r.ParseForm(); err != nil {
		return 0, fmt.Errorf("parse form: %w", err)
	}
	if r.Form.Has("cell") {
		return domain.ParseIndex(r.Form.Get("cell"))
	}
	ri, err := formInt(r, "r")
	if err != nil {
		return 0, err
	}
	ci, err := formInt(r, "c")
	if err != nil {
		return 0, err
	}
	return domain.IndexAt(ri, ci)
}

func (h *handlers) play(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	idx, err := formIndex(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	gs, err := h.svc.Play(id, idx)
	var errMsg string
	switch {
	case err == nil:
	case errors.Is(err, app.ErrNotFound):
		http.NotFound(w, r)
		return
	case errors.Is(err, domain.ErrOccupied):
		errMsg = "Cell is occupied"
	case errors.Is(err, domain.ErrGameOver):
		errMsg = "Game is over"
	default:
		errMsg = "Invalid move"
	}
	if gs == nil {
		http.NotFound(w, r)
		return
	}
	writeHTML(w, h.renderBoard(*gs, errMsg))
}

func (h *handlers) jump(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	k, err := formInt(r, "move")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	gs, err := h.svc.JumpTo(id, k)
	switch {
	case err == nil:
	case errors.Is(err, app.ErrNotFound):
		http.NotFound(w, r)
		return
	case errors.Is(err, app.ErrMoveOutOfRange):
		http.Error(w, "No such move", http.StatusBadRequest)
		return
	default:
		http.Error(w, "Invalid move", http.StatusBadRequest)
		return
	}
	writeHTML(w, h.renderBoard(*gs, ""))
}

// stateResponse is the JSON view of a game at its viewed snapshot.
type stateResponse struct {
	ID      string   `json:"id"`
	Board   []string `json:"board"`
	Turn    string   `json:"turn"`
	Winner  string   `json:"winner,omitempty"`
	Status  string   `json:"status"`
	Current int      `json:"current"`
	Moves   int      `json:"moves"`
	Line    []int    `json:"line,omitempty"`
}

func newStateResponse(gs app.GameState) stateResponse {
	hist := gs.History
	b := hist.Board()
	resp := stateResponse{
		ID:      gs.ID,
		Board:   make([]string, domain.Cells),
		Turn:    hist.Turn().String(),
		Winner:  hist.Winner().String(),
		Status:  hist.Status(),
		Current: hist.Current(),
		Moves:   hist.Len(),
	}
	for i, c := range b {
		resp.Board[i] = c.String()
	}
	for _, i := range domain.WinningLine(b) {
		resp.Line = append(resp.Line, int(i))
	}
	return resp
}

func (h *handlers) state(w http.ResponseWriter, r *http.Request) {
	gs, ok := h.svc.Get(chi.URLParam(r, "id"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(newStateResponse(*gs)); err != nil {
		h.log.WithError(err).Warn("encode state")
	}
}

func (h *handlers) events(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := h.svc.Get(id); !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")
	// In tests or non-EventSource requests, just acknowledge headers and return
	if r.Header.Get("Accept") != "text/event-stream" {
		w.WriteHeader(http.StatusOK)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		w.WriteHeader(http.StatusOK)
		return
	}
	ctx := r.Context()
	ch, unsub, err := h.svc.Subscribe(ctx, id)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer unsub()
	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()
	flusher.Flush()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = io.WriteString(w, ": ping\n\n")
			flusher.Flush()
		case b, ok := <-ch:
			if !ok {
				return
			}
			writeEvent(w, "board", b)
			flusher.Flush()
		}
	}
}

// writeEvent emits one SSE event; every payload line gets its own data field.
func writeEvent(w io.Writer, name string, payload []byte) {
	var sb strings.Builder
	sb.WriteString("event: " + name + "\n")
	for _, line := range strings.Split(string(payload), "\n") {
		sb.WriteString("data: " + line + "\n")
	}
	sb.WriteString("\n")
	_, _ = io.WriteString(w, sb.String())
}
