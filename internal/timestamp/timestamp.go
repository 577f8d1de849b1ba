package timestamp

import (
	"fmt"
	"io/fs"
	"os"
	"time"
)

const nanosPerSecond = 1_000_000_000

// Timestamp is an immutable seconds+nanoseconds instant.
//
// Invariant: Nanoseconds < 1_000_000_000.
type Timestamp struct {
	Seconds     uint64
	Nanoseconds uint64
}

// New creates a Timestamp, normalising nanosecond overflow into seconds.
func New(secs, nanos uint64) Timestamp {
	return Timestamp{
		Seconds:     secs + nanos/nanosPerSecond,
		Nanoseconds: nanos % nanosPerSecond,
	}
}

// FromMillis creates a Timestamp from a millisecond count.
func FromMillis(ms uint64) Timestamp {
	return Timestamp{
		Seconds:     ms / 1_000,
		Nanoseconds: ms % 1_000 * 1_000_000,
	}
}

// FromTime converts a time.Time. Instants before the epoch clamp to zero.
func FromTime(t time.Time) Timestamp {
	if t.Unix() < 0 {
		return Timestamp{}
	}
	return Timestamp{
		Seconds:     uint64(t.Unix()),
		Nanoseconds: uint64(t.Nanosecond()),
	}
}

// FromFileInfo returns the modification time recorded in info.
func FromFileInfo(info fs.FileInfo) Timestamp {
	return FromTime(info.ModTime())
}

// Millis truncates the timestamp to whole milliseconds.
func (t Timestamp) Millis() uint64 {
	return t.Seconds*1_000 + t.Nanoseconds/1_000_000
}

// Time converts back to a time.Time in UTC.
func (t Timestamp) Time() time.Time {
	return time.Unix(int64(t.Seconds), int64(t.Nanoseconds)).UTC()
}

// Compare returns -1, 0 or +1 comparing t and u at full precision.
func (t Timestamp) Compare(u Timestamp) int {
	switch {
	case t.Seconds < u.Seconds:
		return -1
	case t.Seconds > u.Seconds:
		return 1
	case t.Nanoseconds < u.Nanoseconds:
		return -1
	case t.Nanoseconds > u.Nanoseconds:
		return 1
	}
	return 0
}

// Before reports whether t is strictly older than u at full precision.
func (t Timestamp) Before(u Timestamp) bool { return t.Compare(u) < 0 }

// After reports whether t is strictly newer than u at full precision.
func (t Timestamp) After(u Timestamp) bool { return t.Compare(u) > 0 }

// Equal reports full-precision equality.
func (t Timestamp) Equal(u Timestamp) bool { return t == u }

// LowPrecisionEqual reports whether t and u fall in the same millisecond.
func (t Timestamp) LowPrecisionEqual(u Timestamp) bool {
	return t.Millis() == u.Millis()
}

// String renders the instant as "YYYY-MM-DD HH:MM:SS.nnnnnnnnn (GMT)".
func (t Timestamp) String() string {
	return fmt.Sprintf("%s.%09d (GMT)", t.Time().Format("2006-01-02 15:04:05"), t.Nanoseconds)
}

// Stat reads the modification time of the file at path.
func Stat(path string) (Timestamp, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Timestamp{}, err
	}
	return FromFileInfo(info), nil
}

// Apply sets both the access and modification time of path to t.
func (t Timestamp) Apply(path string) error {
	tt := t.Time()
	return os.Chtimes(path, tt, tt)
}
