package web

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaminalder/codex-gomoku/internal/app"
	"github.com/jaminalder/codex-gomoku/internal/domain"
)

func newTestServer(t *testing.T) (*app.Service, http.Handler) {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	s := app.NewService(app.WithLogger(log))
	h := NewServer(s, WithLogger(log), WithHeartbeat(time.Second))
	return s, h
}

func post(h http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", path, nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestIndexPage(t *testing.T) {
	_, h := newTestServer(t)
	rr := get(h, "/")
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "<form")
	assert.Contains(t, body, `action="/game"`)
}

func TestCreateRedirectsToGame(t *testing.T) {
	_, h := newTestServer(t)
	rr := post(h, "/game", nil)
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.True(t, strings.HasPrefix(rr.Result().Header.Get("Location"), "/game/"))
}

func TestGamePageRendersBoard(t *testing.T) {
	svc, h := newTestServer(t)
	gs, _ := svc.CreateGame()

	rr := get(h, "/game/"+url.PathEscape(gs.ID))
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Equal(t, domain.Cells, strings.Count(body, `class="square`))
	assert.Contains(t, body, `name="cell" value="224"`)
	assert.Contains(t, body, "Next player: X")
	assert.Contains(t, body, "Go to game start")
	assert.Contains(t, body, `hx-ext="sse"`)
	assert.Contains(t, body, "/game/"+gs.ID+"/events")
}

func TestUnknownGameIsNotFound(t *testing.T) {
	_, h := newTestServer(t)
	assert.Equal(t, http.StatusNotFound, get(h, "/game/missing").Code)
	assert.Equal(t, http.StatusNotFound, get(h, "/game/missing/state").Code)
	assert.Equal(t, http.StatusNotFound, get(h, "/game/missing/events").Code)
	assert.Equal(t, http.StatusNotFound, post(h, "/game/missing/play", url.Values{"r": {"0"}, "c": {"0"}}).Code)
	assert.Equal(t, http.StatusNotFound, post(h, "/game/missing/jump", url.Values{"move": {"0"}}).Code)
}

func TestPlayEndpointUpdatesStateAndReturnsFragment(t *testing.T) {
	svc, h := newTestServer(t)
	gs, _ := svc.CreateGame()

	rr := post(h, "/game/"+gs.ID+"/play", url.Values{"r": {"7"}, "c": {"7"}})
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, `id="board"`)
	assert.Contains(t, body, "Next player: O")
	assert.Contains(t, body, "Go to move #1")

	latest, _ := svc.Get(gs.ID)
	assert.Equal(t, 2, latest.History.Len())
	assert.Equal(t, domain.X, latest.History.Board().At(112))

	rr = post(h, "/game/"+gs.ID+"/play", url.Values{"r": {"7"}, "c": {"7"}})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Cell is occupied")
	latest, _ = svc.Get(gs.ID)
	assert.Equal(t, 2, latest.History.Len())
}

func TestPlayEndpointRejectsBadCoordinates(t *testing.T) {
	svc, h := newTestServer(t)
	gs, _ := svc.CreateGame()

	for _, form := range []url.Values{
		{"r": {"15"}, "c": {"0"}},
		{"r": {"0"}, "c": {"-1"}},
		{"r": {"abc"}, "c": {"0"}},
		{"c": {"0"}},
	} {
		rr := post(h, "/game/"+gs.ID+"/play", form)
		assert.Equal(t, http.StatusBadRequest, rr.Code, "form %v", form)
	}
	latest, _ := svc.Get(gs.ID)
	assert.Equal(t, 1, latest.History.Len())
}

func TestPlayEndpointAcceptsFlatCell(t *testing.T) {
	svc, h := newTestServer(t)
	gs, _ := svc.CreateGame()

	rr := post(h, "/game/"+gs.ID+"/play", url.Values{"cell": {"112"}})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Next player: O")
	latest, _ := svc.Get(gs.ID)
	assert.Equal(t, domain.X, latest.History.Board().At(112))

	for _, cell := range []string{"225", "-1", "x", ""} {
		rr = post(h, "/game/"+gs.ID+"/play", url.Values{"cell": {cell}})
		assert.Equal(t, http.StatusBadRequest, rr.Code, "cell %q", cell)
	}
	latest, _ = svc.Get(gs.ID)
	assert.Equal(t, 2, latest.History.Len())
}

func TestMalformedFormBodyIsReported(t *testing.T) {
	svc, h := newTestServer(t)
	gs, _ := svc.CreateGame()

	for _, path := range []string{"/game/" + gs.ID + "/play", "/game/" + gs.ID + "/jump"} {
		req := httptest.NewRequest("POST", path, strings.NewReader("r=%zz&c=0&move=%zz"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code, path)
		assert.Contains(t, rr.Body.String(), "parse form", path)
		assert.NotContains(t, rr.Body.String(), "invalid r", path)
	}
	latest, _ := svc.Get(gs.ID)
	assert.Equal(t, 1, latest.History.Len())
}

func TestJumpEndpoint(t *testing.T) {
	svc, h := newTestServer(t)
	gs, _ := svc.CreateGame()
	_, _ = svc.Play(gs.ID, 0)
	_, _ = svc.Play(gs.ID, 1)

	rr := post(h, "/game/"+gs.ID+"/jump", url.Values{"move": {"0"}})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Next player: X")
	latest, _ := svc.Get(gs.ID)
	assert.Equal(t, 0, latest.History.Current())
	assert.Equal(t, 3, latest.History.Len())

	for _, move := range []string{"3", "-1", "x"} {
		rr = post(h, "/game/"+gs.ID+"/jump", url.Values{"move": {move}})
		assert.Equal(t, http.StatusBadRequest, rr.Code, "move %s", move)
	}
}

func TestStateEndpointAndWinHighlight(t *testing.T) {
	svc, h := newTestServer(t)
	gs, _ := svc.CreateGame()
	for _, i := range []domain.Index{0, 15, 1, 16, 2, 17, 3, 18, 4} {
		_, err := svc.Play(gs.ID, i)
		require.NoError(t, err)
	}

	rr := get(h, "/game/"+gs.ID+"/state")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	var st stateResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&st))
	assert.Equal(t, gs.ID, st.ID)
	assert.Len(t, st.Board, domain.Cells)
	assert.Equal(t, "X", st.Board[0])
	assert.Equal(t, "O", st.Board[15])
	assert.Equal(t, "X", st.Winner)
	assert.Equal(t, "Winner: X", st.Status)
	assert.Equal(t, 9, st.Current)
	assert.Equal(t, 10, st.Moves)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, st.Line)

	page := get(h, "/game/"+gs.ID).Body.String()
	assert.Equal(t, 5, strings.Count(page, "square win"))

	rr = post(h, "/game/"+gs.ID+"/play", url.Values{"r": {"10"}, "c": {"10"}})
	assert.Contains(t, rr.Body.String(), "Game is over")
}

func TestEventsEndpointSSEHeaders(t *testing.T) {
	_, h := newTestServer(t)
	loc := post(h, "/game", nil).Result().Header.Get("Location")
	require.NotEmpty(t, loc)

	rr := get(h, loc+"/events")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.HasPrefix(rr.Result().Header.Get("Content-Type"), "text/event-stream"))
}

func TestSubscribersReceiveBoardFragments(t *testing.T) {
	svc, h := newTestServer(t)
	gs, _ := svc.CreateGame()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	ch, unsub, err := svc.Subscribe(ctx, gs.ID)
	require.NoError(t, err)
	defer unsub()

	post(h, "/game/"+gs.ID+"/play", url.Values{"r": {"0"}, "c": {"0"}})
	select {
	case b := <-ch:
		assert.Contains(t, string(b), `id="board"`)
		assert.Contains(t, string(b), "Next player: O")
	case <-ctx.Done():
		t.Fatalf("timed out waiting for broadcast")
	}
}

func TestWriteEventPrefixesEveryLine(t *testing.T) {
	var buf bytes.Buffer
	writeEvent(&buf, "board", []byte("<div>\n</div>"))
	assert.Equal(t, "event: board\ndata: <div>\ndata: </div>\n\n", buf.String())
}
