package client

import (
	"context"

	"github.com/qubird/chatrooms/wire"
)

// messageSink is the slice of the API the composer consumes.
type messageSink interface {
	Send(ctx context.Context, session wire.Session, payload string) error
}

// ComposeController captures outbound text, sanitizes it, and hands it to
// the transport. It is fully decoupled from the sync loops: there is no
// optimistic local echo, the sent message appears only once the next
// successful message poll returns it.
type ComposeController struct {
	sink    messageSink
	session wire.Session
}

func NewComposeController(sink messageSink, session wire.Session) *ComposeController {
	return &ComposeController{sink: sink, session: session}
}

// Submit sends one message. Empty input is a no-op. A nil return tells the
// caller it may clear its input field.
func (c *ComposeController) Submit(ctx context.Context, raw string) error {
	if raw == "" {
		return nil
	}
	return c.sink.Send(ctx, c.session, wire.EncodeOutbound(raw))
}
