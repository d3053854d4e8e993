package server

import (
	"encoding/binary"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/cockroachdb/pebble/v2"

	"github.com/qubird/chatrooms/wire"
)

// Store persists chat messages in a PebbleDB key-value store. Keys are the
// room id, a zero byte separator, and an 8-byte big-endian message id, so
// a prefix scan yields one room's messages in id order.
type Store struct {
	db *pebble.DB
}

// OpenStore opens (or creates) the message store at dir.
func OpenStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := pebble.Open(filepath.Clean(dir), &pebble.Options{})
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func storeKey(roomID string, id int64) []byte {
	key := make([]byte, 0, len(roomID)+9)
	key = append(key, roomID...)
	key = append(key, 0)
	var seq [8]byte
	binary.BigEndian.PutUint64(seq[:], uint64(id))
	return append(key, seq[:]...)
}

func roomBounds(roomID string) (lower, upper []byte) {
	lower = append([]byte(roomID), 0)
	upper = append([]byte(roomID), 1)
	return lower, upper
}

// Append durably writes one message.
func (s *Store) Append(roomID string, m wire.Message) error {
	if s == nil || s.db == nil {
		return nil
	}
	val, _ := json.Marshal(m)
	return s.db.Set(storeKey(roomID, m.MessageID), val, pebble.Sync)
}

// LoadRecent returns the most recent limit messages of a room in id order,
// together with the highest id stored for that room.
func (s *Store) LoadRecent(roomID string, limit int) ([]wire.Message, int64, error) {
	if s == nil || s.db == nil {
		return nil, 0, nil
	}
	lower, upper := roomBounds(roomID)
	it, err := s.db.NewIter(&pebble.IterOptions{LowerBound: lower, UpperBound: upper})
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = it.Close() }()

	var maxID int64
	if it.Last() {
		if key := it.Key(); len(key) >= 8 {
			maxID = int64(binary.BigEndian.Uint64(key[len(key)-8:]))
		}
	}
	out := make([]wire.Message, 0, limit)
	for ok := it.Valid(); ok && len(out) < limit; ok = it.Prev() {
		var m wire.Message
		if err := json.Unmarshal(it.Value(), &m); err == nil {
			out = append(out, m)
		}
	}
	// reverse back into id order
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, maxID, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
