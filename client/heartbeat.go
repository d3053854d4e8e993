package client

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/qubird/chatrooms/wire"
)

// presenceSink is the slice of the API the heartbeat consumes.
type presenceSink interface {
	Notify(ctx context.Context, session wire.Session) error
}

// Heartbeat announces this client's liveness. It fires once at startup and
// is fire-and-forget: no response handling, no retry, no loop of its own.
// The server keeps us visible afterwards by refreshing our last-seen entry
// on every roster read.
type Heartbeat struct {
	sink    presenceSink
	session wire.Session
}

func NewHeartbeat(sink presenceSink, session wire.Session) *Heartbeat {
	return &Heartbeat{sink: sink, session: session}
}

func (h *Heartbeat) Announce(ctx context.Context) {
	if err := h.sink.Notify(ctx, h.session); err != nil {
		log.Debug().Err(err).Msg("[heartbeat] notify")
	}
}
