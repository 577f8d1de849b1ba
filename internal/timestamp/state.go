package timestamp

import (
	"errors"
	"io/fs"
)

// State is the modification time of a file that may not exist.
type State struct {
	present bool
	time    Timestamp
}

// Missing is the State of a file that does not exist.
func Missing() State { return State{} }

// Present wraps the modification time of an existing file.
func Present(t Timestamp) State { return State{present: true, time: t} }

// Exists reports whether the file existed when the state was read.
func (s State) Exists() bool { return s.present }

// Time returns the timestamp and whether it is present.
func (s State) Time() (Timestamp, bool) { return s.time, s.present }

func (s State) String() string {
	if !s.present {
		return "missing"
	}
	return s.time.String()
}

// StatState is like Stat but reports a nonexistent path as Missing
// instead of an error.
func StatState(path string) (State, error) {
	t, err := Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Missing(), nil
	}
	if err != nil {
		return State{}, err
	}
	return Present(t), nil
}
