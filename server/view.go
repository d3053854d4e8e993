package server

import (
	"html/template"
	"net/http"
)

func serveStatus(w http.ResponseWriter, name string, rooms *Rooms) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = statusTmpl.Execute(w, struct {
		Name  string
		Rooms []Stats
	}{Name: name, Rooms: rooms.Snapshot()})
}

var statusTmpl = template.Must(template.New("status").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>Chatrooms — {{.Name}}</title>
  <style>
    :root{
      --bg: #0d1117;
      --panel: #111827;
      --border: #1f2937;
      --fg: #e5e7eb;
      --muted: #9ca3af;
      --accent: #22c55e;
    }
    *{ box-sizing: border-box }
    body { margin:0; padding:24px; background:var(--bg); color:var(--fg); font-family: ui-sans-serif, system-ui, -apple-system, Segoe UI, Roboto, Helvetica, Arial }
    .wrap { max-width: 720px; margin: 0 auto }
    h1 { margin:0 0 12px 0; font-weight:700 }
    table { width:100%; border-collapse: collapse; background:var(--panel); border:1px solid var(--border); border-radius:10px }
    th, td { text-align:left; padding:10px 12px; border-bottom:1px solid var(--border); font-family: ui-monospace, SFMono-Regular, Menlo, Consolas, monospace; font-size:14px }
    th { color:var(--muted); font-weight:600 }
    .online { color: var(--accent) }
    small{ color:var(--muted); display:block; margin-top:10px }
  </style>
</head>
<body>
  <div class="wrap">
    <h1>💬 Chatrooms — {{.Name}}</h1>
    <table>
      <tr><th>room</th><th>messages</th><th>online</th></tr>
      {{range .Rooms}}
      <tr><td>{{.Room}}</td><td>{{.Messages}}</td><td class="online">{{.Online}}</td></tr>
      {{else}}
      <tr><td colspan="3">no rooms yet</td></tr>
      {{end}}
    </table>
    <small>Join with the CLI: chatrooms join --server {{"http://<host>:<port>"}} --room general</small>
  </div>
</body>
</html>`))
