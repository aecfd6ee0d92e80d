package web

import (
	"bytes"
	"html/template"

	"github.com/jaminalder/codex-gomoku/internal/app"
	"github.com/jaminalder/codex-gomoku/internal/domain"
)

type templates struct {
	game  *template.Template
	board *template.Template
	index *template.Template
}

func loadTemplates() *templates {
	base := template.Must(template.New("base").Parse(`<!doctype html><html><head>
<meta charset="utf-8"/>
<title>Gomoku</title>
<script src="https://unpkg.com/htmx.org@1.9.12"></script>
<script src="https://unpkg.com/htmx.org/dist/ext/sse.js"></script>
<style>
.board-row{display:flex}
.square{width:28px;height:28px;padding:0;font-weight:bold}
.square.win{background:#fd6}
.status{margin-bottom:8px}
.game{display:flex;gap:24px}
</style>
</head><body>{{template "content" .}}</body></html>`))
	// Define the board template within the same set so game can include it
	template.Must(base.New("board").Parse(boardTemplate))
	index := template.Must(template.Must(base.Clone()).New("content").Parse(`<h1>Gomoku</h1><form action="/game" method="post"><button>New game</button></form>`))
	game := template.Must(template.Must(base.Clone()).New("content").Parse(`
<div hx-ext="sse" sse-connect="/game/{{.ID}}/events">
  <div sse-swap="board" hx-target="#board" hx-swap="outerHTML">{{template "board" .}}</div>
</div>`))
	// Standalone board template used for fragment rendering
	board := template.Must(template.New("board_only").Parse(boardTemplate))
	return &templates{game: game, board: board, index: index}
}

func renderTemplate(t *template.Template, name string, data any) []byte {
	var buf bytes.Buffer
	if name == "" {
		_ = t.Execute(&buf, data)
	} else {
		_ = t.ExecuteTemplate(&buf, name, data)
	}
	return buf.Bytes()
}

const boardTemplate = `
<div id="board" class="game">
  <div class="game-board">
    <div class="status">{{.Status}}</div>
    {{if .Error}}
    <div class="alert">{{.Error}}</div>
    {{end}}
    {{$id := .ID}}
    {{range .Rows}}
    <div class="board-row">
      {{range .}}
      <form hx-post="/game/{{$id}}/play" hx-target="#board" hx-swap="outerHTML" method="post" action="/game/{{$id}}/play">
        <input type="hidden" name="cell" value="{{.I}}">
        <button type="submit" class="square{{if .Win}} win{{end}}">{{.Mark}}</button>
      </form>
      {{end}}
    </div>
    {{end}}
  </div>
  <div class="game-info">
    <ol start="0">
      {{range .Moves}}
      <li>
        <form hx-post="/game/{{$id}}/jump" hx-target="#board" hx-swap="outerHTML" method="post" action="/game/{{$id}}/jump">
          <input type="hidden" name="move" value="{{.K}}">
          <button type="submit"{{if .Current}} disabled{{end}}>{{.Label}}</button>
        </form>
      </li>
      {{end}}
    </ol>
  </div>
</div>
`

type cellView struct {
	I    int
	Mark string
	Win  bool
}

type moveView struct {
	K       int
	Label   string
	Current bool
}

type boardView struct {
	ID     string
	Status string
	Error  string
	Rows   [][]cellView
	Moves  []moveView
}

func newBoardView(gs app.GameState, errMsg string) boardView {
	h := gs.History
	b := h.Board()
	win := make(map[domain.Index]bool, domain.WinLength)
	for _, i := range domain.WinningLine(b) {
		win[i] = true
	}

	v := boardView{ID: gs.ID, Status: h.Status(), Error: errMsg}
	v.Rows = make([][]cellView, domain.Size)
	for r := range v.Rows {
		v.Rows[r] = make([]cellView, domain.Size)
		for c := range v.Rows[r] {
			i := domain.Index(r*domain.Size + c)
			v.Rows[r][c] = cellView{I: int(i), Mark: b.At(i).String(), Win: win[i]}
		}
	}
	v.Moves = make([]moveView, h.Len())
	for k := range v.Moves {
		v.Moves[k] = moveView{K: k, Label: domain.MoveLabel(k), Current: k == h.Current()}
	}
	return v
}
