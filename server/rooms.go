package server

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/qubird/chatrooms/wire"
)

const (
	// recentLimit bounds the in-memory message ring per room.
	recentLimit = 50
	// refreshSeconds is the heartbeat period advertised to clients; the
	// client-side grace window is twice this.
	refreshSeconds = 8
	// idleEvict is how long a silent user stays on the roster before being
	// purged on the next roster read.
	idleEvict = 60 * time.Second
	// messageWait is the long-poll window for get_messages.
	messageWait = 20 * time.Second
)

// room is the live state of one chat room: a bounded ring of recent
// messages, the per-room id counter, who was seen when, and the wakeup
// channels long-polling requests block on. Wakeups follow the closed
// channel broadcast pattern: publishing closes the current channel and
// installs a fresh one.
type room struct {
	mu       sync.Mutex
	messages []wire.Message
	nextID   int64
	lastSeen map[string]time.Time
	msgCh    chan struct{}
	presCh   chan struct{}
}

func newRoom() *room {
	return &room{
		messages: make([]wire.Message, 0, recentLimit),
		lastSeen: make(map[string]time.Time),
		msgCh:    make(chan struct{}),
		presCh:   make(chan struct{}),
	}
}

// Rooms is the registry of all rooms, created on first touch. An optional
// store persists messages and reseeds the ring on first access.
type Rooms struct {
	mu    sync.RWMutex
	rooms map[string]*room
	store *Store
	now   func() time.Time
}

func NewRooms(store *Store) *Rooms {
	return &Rooms{
		rooms: make(map[string]*room),
		store: store,
		now:   time.Now,
	}
}

func (rs *Rooms) room(id string) *room {
	rs.mu.RLock()
	r, ok := rs.rooms[id]
	rs.mu.RUnlock()
	if ok {
		return r
	}
	rs.mu.Lock()
	defer rs.mu.Unlock()
	if r, ok := rs.rooms[id]; ok {
		return r
	}
	r = newRoom()
	if rs.store != nil {
		msgs, maxID, err := rs.store.LoadRecent(id, recentLimit)
		if err != nil {
			log.Warn().Err(err).Str("room", id).Msg("[rooms] load history failed")
		} else {
			r.messages = append(r.messages, msgs...)
			r.nextID = maxID
		}
	}
	rs.rooms[id] = r
	return r
}

// Publish appends a message to the room, persists it when a store is
// attached, and wakes any long-polling readers.
func (rs *Rooms) Publish(roomID, username, content string) wire.Message {
	r := rs.room(roomID)
	r.mu.Lock()
	r.nextID++
	m := wire.Message{
		MessageID: r.nextID,
		Username:  username,
		Content:   content,
		Date:      wire.FormatTimestamp(rs.now()),
	}
	r.messages = append(r.messages, m)
	if len(r.messages) > recentLimit {
		r.messages = r.messages[len(r.messages)-recentLimit:]
	}
	close(r.msgCh)
	r.msgCh = make(chan struct{})
	r.mu.Unlock()
	if rs.store != nil {
		if err := rs.store.Append(roomID, m); err != nil {
			log.Debug().Err(err).Str("room", roomID).Msg("[rooms] persist message")
		}
	}
	return m
}

// LatestID returns the highest message id the room has handed out, or -1
// when the room has never held a message.
func (rs *Rooms) LatestID(roomID string) int64 {
	r := rs.room(roomID)
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.nextID == 0 {
		return -1
	}
	return r.nextID
}

func (r *room) messagesAfter(after int64) []wire.Message {
	out := make([]wire.Message, 0, len(r.messages))
	for _, m := range r.messages {
		if m.MessageID > after {
			out = append(out, m)
		}
	}
	return out
}

// MessagesAfter returns messages with id greater than after, long-polling
// up to the message window when none are pending. The returned slice is in
// arrival order.
func (rs *Rooms) MessagesAfter(ctx context.Context, roomID string, after int64) []wire.Message {
	r := rs.room(roomID)
	r.mu.Lock()
	pending := r.messagesAfter(after)
	wake := r.msgCh
	r.mu.Unlock()
	if len(pending) > 0 {
		return pending
	}
	timer := time.NewTimer(messageWait)
	defer timer.Stop()
	select {
	case <-wake:
	case <-timer.C:
	case <-ctx.Done():
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.messagesAfter(after)
}

// Touch records a heartbeat for username and wakes roster long-polls.
func (rs *Rooms) Touch(roomID, username string) {
	if username == "" {
		return
	}
	r := rs.room(roomID)
	r.mu.Lock()
	r.lastSeen[username] = rs.now()
	close(r.presCh)
	r.presCh = make(chan struct{})
	r.mu.Unlock()
}

// Roster reports the connected-users snapshot. The requester's own entry
// is refreshed first (a roster read is as good as a heartbeat), then the
// call blocks up to the refresh window for presence changes, purges users
// idle beyond the eviction window, and dumps the remainder.
func (rs *Rooms) Roster(ctx context.Context, roomID, username string) wire.RosterSnapshot {
	r := rs.room(roomID)
	r.mu.Lock()
	if username != "" {
		r.lastSeen[username] = rs.now()
	}
	wake := r.presCh
	r.mu.Unlock()

	timer := time.NewTimer(refreshSeconds * time.Second)
	defer timer.Stop()
	select {
	case <-wake:
	case <-timer.C:
	case <-ctx.Done():
	}

	now := rs.now()
	r.mu.Lock()
	defer r.mu.Unlock()
	users := make([]wire.RosterEntry, 0, len(r.lastSeen))
	for name, seen := range r.lastSeen {
		if now.Sub(seen) > idleEvict {
			delete(r.lastSeen, name)
			continue
		}
		users = append(users, wire.RosterEntry{
			Username: name,
			Date:     wire.FormatTimestamp(seen),
		})
	}
	return wire.RosterSnapshot{
		Now:     wire.FormatTimestamp(now),
		Refresh: refreshSeconds,
		Users:   users,
	}
}

// Stats is the view model for the status page.
type Stats struct {
	Room     string
	Messages int
	Online   int
}

// Snapshot lists per-room counters for the status page.
func (rs *Rooms) Snapshot() []Stats {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	out := make([]Stats, 0, len(rs.rooms))
	now := rs.now()
	for id, r := range rs.rooms {
		r.mu.Lock()
		online := 0
		for _, seen := range r.lastSeen {
			if now.Sub(seen) <= idleEvict {
				online++
			}
		}
		out = append(out, Stats{Room: id, Messages: len(r.messages), Online: online})
		r.mu.Unlock()
	}
	return out
}
