package wire

// Message is a single chat message as the server serves it. Content is the
// sanitized payload produced by EncodeOutbound; Date uses the fixed wire
// timestamp layout. The client holds a read-only, append-only view ordered
// by arrival, which is not necessarily id order.
type Message struct {
	MessageID int64  `json:"message_id"`
	Username  string `json:"username"`
	Content   string `json:"content"`
	Date      string `json:"date"`
}

// RosterEntry is one connected user with the last instant the server saw
// them. The roster is replaced wholesale on every poll, never merged.
type RosterEntry struct {
	Username string `json:"username"`
	Date     string `json:"date"`
}

// RosterSnapshot is the get_users_list response: the server's own clock,
// its declared heartbeat period in seconds, and the current roster.
type RosterSnapshot struct {
	Now     string        `json:"now"`
	Refresh int           `json:"refresh"`
	Users   []RosterEntry `json:"users"`
}

// LatestID is the get_latest_msg_id response. ID is -1 when the room has
// no messages yet.
type LatestID struct {
	ID int64 `json:"id"`
}

// Session identifies this client for the lifetime of a join: who we are
// and which room we are in. Immutable; every component treats it as
// read-only context.
type Session struct {
	Username string
	RoomID   string
}
