package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qubird/chatrooms/wire"
)

func TestAPIEndpoints(t *testing.T) {
	var gotNotify, gotSend map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/chat/get_latest_msg_id/":
			assert.Equal(t, "general", r.URL.Query().Get("room_id"))
			_ = json.NewEncoder(w).Encode(wire.LatestID{ID: 41})
		case "/chat/get_messages/":
			assert.Equal(t, "41", r.URL.Query().Get("latest_message_id"))
			_ = json.NewEncoder(w).Encode([]wire.Message{
				{MessageID: 42, Username: "bob", Content: "hi", Date: "2024-05-02T12:07:31:768227"},
			})
		case "/chat/send_message/":
			require.NoError(t, r.ParseForm())
			gotSend = map[string]string{
				"username": r.PostFormValue("username"),
				"room_id":  r.PostFormValue("room_id"),
				"message":  r.PostFormValue("message"),
			}
			_, _ = w.Write([]byte("2024-05-02T12:07:31:768227"))
		case "/chat/notify_users_list/":
			require.NoError(t, r.ParseForm())
			gotNotify = map[string]string{"room_id": r.PostFormValue("room_id")}
			_, _ = w.Write([]byte("Connected"))
		case "/chat/get_users_list/":
			_ = json.NewEncoder(w).Encode(wire.RosterSnapshot{
				Now:     "2024-05-02T12:07:31:768227",
				Refresh: 8,
				Users:   []wire.RosterEntry{{Username: "bob", Date: "2024-05-02T12:07:30:000000"}},
			})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	api := NewAPI(srv.URL, time.Second)
	ctx := context.Background()

	id, err := api.LatestMessageID(ctx, "general")
	require.NoError(t, err)
	assert.Equal(t, int64(41), id)

	msgs, err := api.Messages(ctx, "general", 41)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, int64(42), msgs[0].MessageID)

	require.NoError(t, api.Send(ctx, testSession, "payload"))
	assert.Equal(t, map[string]string{
		"username": "alice", "room_id": "general", "message": "payload",
	}, gotSend)

	require.NoError(t, api.Notify(ctx, testSession))
	assert.Equal(t, map[string]string{"room_id": "general"}, gotNotify)

	snap, err := api.Roster(ctx, testSession)
	require.NoError(t, err)
	assert.Equal(t, 8, snap.Refresh)
	require.Len(t, snap.Users, 1)
}

func TestIsTimeoutClassification(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	api := NewAPI(srv.URL, 20*time.Millisecond)
	_, err := api.LatestMessageID(context.Background(), "general")
	require.Error(t, err)
	assert.True(t, IsTimeout(err))

	assert.True(t, IsTimeout(context.DeadlineExceeded))
	assert.False(t, IsTimeout(errors.New("connection refused")))
	assert.False(t, IsTimeout(nil))
}

func TestAPIBadStatusIsNotTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	api := NewAPI(srv.URL, time.Second)
	_, err := api.Messages(context.Background(), "general", 0)
	require.Error(t, err)
	assert.False(t, IsTimeout(err))
}
