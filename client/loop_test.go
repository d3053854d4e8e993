package client

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRearmPolicies(t *testing.T) {
	assert.True(t, RearmOnSuccessOrTimeout(OutcomeSuccess))
	assert.True(t, RearmOnSuccessOrTimeout(OutcomeTimeout))
	assert.False(t, RearmOnSuccessOrTimeout(OutcomeFailure))

	assert.True(t, RearmOnSuccess(OutcomeSuccess))
	assert.False(t, RearmOnSuccess(OutcomeTimeout))
	assert.False(t, RearmOnSuccess(OutcomeFailure))
}

func TestRunLoopRearmsUntilPolicySaysStop(t *testing.T) {
	outcomes := []Outcome{OutcomeSuccess, OutcomeTimeout, OutcomeSuccess, OutcomeFailure, OutcomeSuccess}
	calls := 0
	step := func(ctx context.Context) Outcome {
		o := outcomes[calls]
		calls++
		return o
	}
	RunLoop(context.Background(), "test", step, RearmOnSuccessOrTimeout)
	// The failure on the fourth cycle stops the loop; the fifth outcome is
	// never reached.
	assert.Equal(t, 4, calls)
}

func TestRunLoopStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	step := func(ctx context.Context) Outcome {
		calls++
		if calls == 3 {
			cancel()
		}
		return OutcomeSuccess
	}
	RunLoop(ctx, "test", step, RearmOnSuccess)
	assert.Equal(t, 3, calls)
}
