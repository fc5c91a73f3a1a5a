package main

import (
	"encoding/json"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/chatroom/chat-client/client"
	"github.com/gosuda/chatroom/chat-client/session"
)

// NewHandler builds the local status router.
// getSnapshot must be safe to call from any goroutine.
func NewHandler(addr string, getSnapshot func() client.Snapshot) http.Handler {
	r := chi.NewRouter()

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		snap := getSnapshot()
		statusClass := "disconnected"
		if snap.State == session.Connected.String() {
			statusClass = "connected"
		}
		data := struct {
			client.Snapshot
			Now         string
			Addr        string
			StatusClass string
		}{
			Snapshot:    snap,
			Now:         time.Now().Format(time.RFC1123),
			Addr:        addr,
			StatusClass: statusClass,
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := statusPage.Execute(w, data); err != nil {
			log.Warn().Err(err).Msg("[status] render page")
		}
	})

	r.Get("/api/state", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(getSnapshot()); err != nil {
			log.Warn().Err(err).Msg("[status] encode state")
		}
	})

	// Minimal health check endpoint
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return r
}

var statusPage = template.Must(template.New("status").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>Chat Client</title>
  <style>
    body { font-family: sans-serif; background: #f9f9f9; padding: 40px; }
    footer { margin-top: 40px; color: #666; font-size: 0.9em; }
    .card { background: white; border-radius: 12px; padding: 24px; box-shadow: 0 2px 6px rgba(0,0,0,0.1); }
    .stat { display:inline-flex; align-items:center; gap:8px; padding:6px 10px; border-radius:999px; font-weight:700; font-size:14px }
    .stat.connected { background:#ecfdf5; color:#065f46 }
    .stat.disconnected { background:#fee2e2; color:#b91c1c }
    .stat .dot { width:8px; height:8px; border-radius:999px; background:#10b981; display:inline-block }
    .stat.disconnected .dot { background:#ef4444 }
    #chat-messages { list-style:none; padding:0 }
    #chat-messages li { padding:4px 0 }
    .message.system { color:#6b7280; font-style:italic }
    .message.own .who { color:#047857 }
    .message.other .who { color:#1d4ed8 }
    .time { color:#9ca3af; font-size:0.85em }
  </style>
</head>
<body>
  <div class="card">
    <h1>Chat Client</h1>
    <p>Server: <b>{{.ServerURL}}</b></p>
    <p>Nickname: <b>{{if .Username}}{{.Username}}{{else}}-{{end}}</b></p>
    <p>Connection: <span class="stat {{.StatusClass}}"><span class="dot"></span>{{.State}}</span></p>
    <p>Online: <b id="online-count">{{.OnlineUsers}}</b> &middot; Messages: <b id="message-count">{{.TotalMessages}}</b></p>
    <ul id="chat-messages">
      {{range .Recent}}
      <li class="message {{.Class}}">
        <span class="time">{{.Clock}}</span>
        {{if eq .Class.String "system"}}{{.Content}}{{else}}<b class="who">{{.Username}}</b> {{.Content}}{{end}}
      </li>
      {{else}}
      <li class="message system">no messages yet</li>
      {{end}}
    </ul>
  </div>
  <footer>chat client status, served locally at {{.Addr}} &middot; {{.Now}}</footer>
</body>
</html>`))
