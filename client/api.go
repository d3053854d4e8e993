package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/qubird/chatrooms/wire"
)

// API is the HTTP client for the five chat endpoints. One instance is
// shared by all loops; each call carries its own request and the
// configured timeout bounds every round trip.
type API struct {
	base string
	http *http.Client
}

// NewAPI builds an API rooted at base (e.g. "http://127.0.0.1:8090").
// The timeout should exceed the server's long-poll window, otherwise
// every idle poll classifies as a timeout.
func NewAPI(base string, timeout time.Duration) *API {
	return &API{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: timeout},
	}
}

// IsTimeout reports whether err is a transport timeout, the only failure
// kind the message loop treats as retryable.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func (a *API) getJSON(ctx context.Context, path string, q url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.base+path+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	resp, err := a.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: unexpected status %d", path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (a *API) postForm(ctx context.Context, path string, form url.Values) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.base+path,
		strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := a.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: unexpected status %d", path, resp.StatusCode)
	}
	return nil
}

// LatestMessageID returns the highest message id currently stored for the
// room, or -1 when the room is empty. Used once to seed the sync cursor.
func (a *API) LatestMessageID(ctx context.Context, roomID string) (int64, error) {
	var out wire.LatestID
	q := url.Values{"room_id": {roomID}}
	if err := a.getJSON(ctx, "/chat/get_latest_msg_id/", q, &out); err != nil {
		return 0, err
	}
	return out.ID, nil
}

// Messages fetches the room's messages with id greater than after, in
// arrival order. The server may hold the request open while the room is
// quiet.
func (a *API) Messages(ctx context.Context, roomID string, after int64) ([]wire.Message, error) {
	var out []wire.Message
	q := url.Values{
		"room_id":           {roomID},
		"latest_message_id": {strconv.FormatInt(after, 10)},
	}
	if err := a.getJSON(ctx, "/chat/get_messages/", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Send posts an already-sanitized message payload to the room. The
// response body is opaque and ignored.
func (a *API) Send(ctx context.Context, session wire.Session, payload string) error {
	return a.postForm(ctx, "/chat/send_message/", url.Values{
		"username": {session.Username},
		"room_id":  {session.RoomID},
		"message":  {payload},
	})
}

// Notify announces this client's liveness to the room. Fire-and-forget;
// the ack is ignored.
func (a *API) Notify(ctx context.Context, session wire.Session) error {
	return a.postForm(ctx, "/chat/notify_users_list/", url.Values{
		"room_id":  {session.RoomID},
		"username": {session.Username},
	})
}

// Roster fetches the full connected-users snapshot together with the
// server clock and refresh interval. Sending our username lets the server
// refresh our own last-seen entry on the way through.
func (a *API) Roster(ctx context.Context, session wire.Session) (wire.RosterSnapshot, error) {
	var out wire.RosterSnapshot
	q := url.Values{
		"room_id":  {session.RoomID},
		"username": {session.Username},
	}
	if err := a.getJSON(ctx, "/chat/get_users_list/", q, &out); err != nil {
		return wire.RosterSnapshot{}, err
	}
	return out, nil
}
