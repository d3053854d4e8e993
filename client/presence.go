package client

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/qubird/chatrooms/wire"
)

// rosterSource is the slice of the API the presence loop consumes.
type rosterSource interface {
	Roster(ctx context.Context, session wire.Session) (wire.RosterSnapshot, error)
}

// PresenceTracker polls the full roster and classifies each user as online
// or offline from last-seen staleness. It carries no cursor; every cycle
// replaces the previous roster entirely.
type PresenceTracker struct {
	src      rosterSource
	session  wire.Session
	renderer Renderer
}

func NewPresenceTracker(src rosterSource, session wire.Session, r Renderer) *PresenceTracker {
	return &PresenceTracker{src: src, session: session, renderer: r}
}

// Step runs one roster cycle. A user counts as online iff the time since
// their last heartbeat is under twice the server's refresh interval; the
// factor of two grants a one-missed-heartbeat grace period. Offline users
// are simply omitted, there is no separate away state.
func (p *PresenceTracker) Step(ctx context.Context) Outcome {
	snap, err := p.src.Roster(ctx, p.session)
	if err != nil {
		if IsTimeout(err) {
			return OutcomeTimeout
		}
		log.Debug().Err(err).Msg("[presence] fetch roster")
		return OutcomeFailure
	}
	now, err := wire.ParseTimestamp(snap.Now)
	if err != nil {
		log.Warn().Err(err).Msg("[presence] bad server clock")
		return OutcomeFailure
	}
	nowMs := now.EpochMillis()
	windowMs := int64(2*snap.Refresh) * 1000
	online := make([]string, 0, len(snap.Users))
	for _, u := range snap.Users {
		seen, err := wire.ParseTimestamp(u.Date)
		if err != nil {
			log.Warn().Err(err).Str("user", u.Username).Msg("[presence] bad last-seen date")
			return OutcomeFailure
		}
		if nowMs-seen.EpochMillis() < windowMs {
			name := u.Username
			if name == p.session.Username {
				name = "You"
			}
			online = append(online, name)
		}
	}
	p.renderer.ReplaceRoster(online)
	return OutcomeSuccess
}
