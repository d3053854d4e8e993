package wire

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// ErrBadTimestamp is returned when a wire timestamp does not match the
// fixed layout exchanged with the server.
var ErrBadTimestamp = errors.New("malformed timestamp")

// timestampPattern captures the fields of the wire layout
// YYYY-MM-DDTHH:MM:SS:ffffff. The fractional field is one or more digits;
// its length is not fixed. There is no timezone suffix.
var timestampPattern = regexp.MustCompile(
	`^([0-9]{4})-([0-9]{2})-([0-9]{2})T([0-9]{2}):([0-9]{2}):([0-9]{2}):([0-9]+)$`)

// Timestamp is a wall-clock instant as exchanged with the server. It has
// no timezone; callers compare same-day values only.
type Timestamp struct {
	Year        int
	Month       int
	Day         int
	Hour        int
	Minute      int
	Second      int
	Microsecond int
}

// ParseTimestamp parses the colon-delimited wire layout. Anything that does
// not match the pattern exactly fails with ErrBadTimestamp.
func ParseTimestamp(text string) (Timestamp, error) {
	m := timestampPattern.FindStringSubmatch(text)
	if m == nil {
		return Timestamp{}, fmt.Errorf("%w: %q", ErrBadTimestamp, text)
	}
	fields := make([]int, 7)
	for i := range fields {
		n, err := strconv.Atoi(m[i+1])
		if err != nil {
			return Timestamp{}, fmt.Errorf("%w: %q", ErrBadTimestamp, text)
		}
		fields[i] = n
	}
	return Timestamp{
		Year:        fields[0],
		Month:       fields[1],
		Day:         fields[2],
		Hour:        fields[3],
		Minute:      fields[4],
		Second:      fields[5],
		Microsecond: fields[6],
	}, nil
}

// AtLeast reports whether t denotes a wall-clock time at or after b within
// the same day. This reproduces the comparison the legacy clients shipped
// with: it requires hour and minute to be >= and tie-breaks on second then
// microsecond. It never consults month or day and can misjudge across
// hour or minute rollovers. Callers only use it for same-day filtering, so
// the behavior is kept exactly as observed rather than replaced with a
// total order.
func (t Timestamp) AtLeast(b Timestamp) bool {
	if t.Hour >= b.Hour && t.Minute >= b.Minute {
		if t.Second == b.Second && t.Microsecond > b.Microsecond {
			return true
		}
		if t.Second > b.Second {
			return true
		}
	}
	return false
}

// EpochMillis converts the timestamp to local-time epoch milliseconds.
// This is the representation the staleness arithmetic uses; it is distinct
// from AtLeast, which stays a same-day heuristic.
func (t Timestamp) EpochMillis() int64 {
	abs := time.Date(t.Year, time.Month(t.Month), t.Day,
		t.Hour, t.Minute, t.Second, 0, time.Local)
	return abs.UnixMilli() + int64(t.Microsecond)/1000
}

// Clock renders the HH:MM:SS portion for message display.
func (t Timestamp) Clock() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
}

// FormatTimestamp is the server-side inverse of ParseTimestamp: it renders
// a time.Time in the wire layout with a six-digit fractional field.
func FormatTimestamp(t time.Time) string {
	return t.Format("2006-01-02T15:04:05") + fmt.Sprintf(":%06d", t.Nanosecond()/1000)
}
