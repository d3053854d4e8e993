package client

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/qubird/chatrooms/wire"
)

// messageSource is the slice of the API the message loop consumes.
type messageSource interface {
	LatestMessageID(ctx context.Context, roomID string) (int64, error)
	Messages(ctx context.Context, roomID string, after int64) ([]wire.Message, error)
}

// MessageSync keeps the message feed current by polling for messages newer
// than the highest id seen so far. It owns the cursor; nothing else reads
// or writes it, so the loop needs no locking.
type MessageSync struct {
	src      messageSource
	session  wire.Session
	renderer Renderer
	cursor   int64
}

func NewMessageSync(src messageSource, session wire.Session, r Renderer) *MessageSync {
	return &MessageSync{src: src, session: session, renderer: r}
}

// Bootstrap seeds the cursor from the server's current maximum id so the
// first poll only returns messages sent after we joined. Must complete
// before the loop starts.
func (s *MessageSync) Bootstrap(ctx context.Context) error {
	id, err := s.src.LatestMessageID(ctx, s.session.RoomID)
	if err != nil {
		return err
	}
	s.cursor = id
	return nil
}

// Cursor returns the highest message id rendered so far.
func (s *MessageSync) Cursor() int64 {
	return s.cursor
}

// Step runs one fetch cycle. Batches arrive in arrival order, which is not
// guaranteed to be id order; every message is checked against the cursor
// individually. A message renders iff its id strictly exceeds the cursor,
// and the cursor advances before the render record is emitted, so
// re-delivery of the same batch renders nothing new.
func (s *MessageSync) Step(ctx context.Context) Outcome {
	batch, err := s.src.Messages(ctx, s.session.RoomID, s.cursor)
	if err != nil {
		if IsTimeout(err) {
			return OutcomeTimeout
		}
		log.Debug().Err(err).Msg("[sync] fetch messages")
		return OutcomeFailure
	}
	outcome := OutcomeSuccess
	for _, m := range batch {
		if m.MessageID <= s.cursor {
			// duplicate delivery; already rendered
			continue
		}
		s.cursor = m.MessageID
		ts, err := wire.ParseTimestamp(m.Date)
		if err != nil {
			log.Warn().Err(err).Int64("id", m.MessageID).Msg("[sync] bad message date")
			outcome = OutcomeFailure
			continue
		}
		rendered := RenderedMessage{
			Clock:  ts.Clock(),
			Sender: m.Username,
			Body:   wire.DecodeInbound(m.Content),
		}
		if m.Username == s.session.Username {
			rendered.Own = true
			rendered.Sender = "You"
		}
		s.renderer.AppendMessage(rendered)
	}
	return outcome
}
