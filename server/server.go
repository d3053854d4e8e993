package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog/log"

	"github.com/qubird/chatrooms/wire"
)

// usernamePolicy strips any markup from usernames before they enter room
// state. Message content is not touched here: clients ship it already
// escaped and other clients unescape it on display.
var usernamePolicy = bluemonday.StrictPolicy()

func cleanUsername(raw string) string {
	name := strings.TrimSpace(usernamePolicy.Sanitize(raw))
	if len(name) > 24 {
		name = name[:24]
	}
	if name == "" {
		name = "anon"
	}
	return name
}

// NewHandler builds the chat HTTP router: the five ajax endpoints plus a
// status page at /.
func NewHandler(name string, rooms *Rooms) http.Handler {
	r := chi.NewRouter()
	r.Get("/", func(w http.ResponseWriter, req *http.Request) { serveStatus(w, name, rooms) })
	r.Get("/chat/get_latest_msg_id/", func(w http.ResponseWriter, req *http.Request) {
		handleLatestID(w, req, rooms)
	})
	r.Get("/chat/get_messages/", func(w http.ResponseWriter, req *http.Request) {
		handleMessages(w, req, rooms)
	})
	r.Post("/chat/send_message/", func(w http.ResponseWriter, req *http.Request) {
		handleSend(w, req, rooms)
	})
	r.Post("/chat/notify_users_list/", func(w http.ResponseWriter, req *http.Request) {
		handleNotify(w, req, rooms)
	})
	r.Get("/chat/get_users_list/", func(w http.ResponseWriter, req *http.Request) {
		handleRoster(w, req, rooms)
	})
	return r
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Debug().Err(err).Msg("[server] encode response")
	}
}

func roomID(req *http.Request) (string, bool) {
	id := req.FormValue("room_id")
	return id, id != ""
}

func handleLatestID(w http.ResponseWriter, req *http.Request, rooms *Rooms) {
	id, ok := roomID(req)
	if !ok {
		http.NotFound(w, req)
		return
	}
	writeJSON(w, wire.LatestID{ID: rooms.LatestID(id)})
}

func handleMessages(w http.ResponseWriter, req *http.Request, rooms *Rooms) {
	id, ok := roomID(req)
	if !ok {
		http.NotFound(w, req)
		return
	}
	after, err := strconv.ParseInt(req.FormValue("latest_message_id"), 10, 64)
	if err != nil {
		after = -1
	}
	msgs := rooms.MessagesAfter(req.Context(), id, after)
	if msgs == nil {
		msgs = []wire.Message{}
	}
	writeJSON(w, msgs)
}

func handleSend(w http.ResponseWriter, req *http.Request, rooms *Rooms) {
	id, ok := roomID(req)
	message := req.PostFormValue("message")
	if !ok || message == "" {
		http.NotFound(w, req)
		return
	}
	username := cleanUsername(req.PostFormValue("username"))
	m := rooms.Publish(id, username, message)
	w.Header().Set("Content-Type", "text/plain")
	_, _ = w.Write([]byte(m.Date))
}

func handleNotify(w http.ResponseWriter, req *http.Request, rooms *Rooms) {
	id, ok := roomID(req)
	if !ok {
		http.NotFound(w, req)
		return
	}
	rooms.Touch(id, cleanUsername(req.PostFormValue("username")))
	w.Header().Set("Content-Type", "text/plain")
	_, _ = w.Write([]byte("Connected"))
}

func handleRoster(w http.ResponseWriter, req *http.Request, rooms *Rooms) {
	id, ok := roomID(req)
	if !ok {
		http.NotFound(w, req)
		return
	}
	username := req.FormValue("username")
	if username != "" {
		username = cleanUsername(username)
	}
	writeJSON(w, rooms.Roster(req.Context(), id, username))
}
