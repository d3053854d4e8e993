package client

import (
	"context"

	"github.com/rs/zerolog/log"
)

// Outcome classifies a single fetch cycle.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeTimeout
	OutcomeFailure
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeTimeout:
		return "timeout"
	default:
		return "failure"
	}
}

// StepFunc performs one fetch cycle. Implementations never panic on bad
// server data; they classify the cycle instead.
type StepFunc func(ctx context.Context) Outcome

// RearmPolicy decides whether a loop schedules its next cycle after the
// previous one completed with the given outcome. The policies make the
// historical retry behavior explicit: they are data, not control flow
// buried in callbacks.
type RearmPolicy func(Outcome) bool

// RearmOnSuccessOrTimeout is the message loop policy: a timeout is
// retryable, any other failure silently stops the loop.
func RearmOnSuccessOrTimeout(o Outcome) bool {
	return o == OutcomeSuccess || o == OutcomeTimeout
}

// RearmOnSuccess is the presence loop policy: any failed cycle stops the
// loop. Known to strand presence on a single bad fetch; kept deliberately.
func RearmOnSuccess(o Outcome) bool {
	return o == OutcomeSuccess
}

// RunLoop drives a poll loop: run one cycle, consult the policy, and
// immediately re-arm. There is no interval timer between cycles; the next
// request is issued as soon as the previous one completes, which keeps
// send-to-display latency at the cost of continuous request volume. At
// most one request is outstanding per loop.
func RunLoop(ctx context.Context, name string, step StepFunc, rearm RearmPolicy) {
	for {
		o := step(ctx)
		if ctx.Err() != nil {
			return
		}
		if !rearm(o) {
			log.Warn().Str("loop", name).Stringer("outcome", o).Msg("[loop] stopped")
			return
		}
	}
}
