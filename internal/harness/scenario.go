package harness

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/tango/internal/timestamp"
)

// Scenario is a filesystem replay.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Config overrides fields of the default configuration, by YAML key.
	Config map[string]string `yaml:"config,omitempty"`

	// Journal enables the SQLite run journal.
	Journal bool `yaml:"journal,omitempty"`

	Steps []Step `yaml:"steps"`

	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step is exactly one of its fields.
type Step struct {
	Write  *WriteStep  `yaml:"write,omitempty"`
	Touch  *TouchStep  `yaml:"touch,omitempty"`
	Remove *RemoveStep `yaml:"remove,omitempty"`
	Run    *RunStep    `yaml:"run,omitempty"`
}

// WriteStep creates or replaces a file.
type WriteStep struct {
	Path    string `yaml:"path"`
	Content string `yaml:"content"`
	MTime   Time   `yaml:"mtime"`
}

// TouchStep changes a file's modification time.
type TouchStep struct {
	Path  string `yaml:"path"`
	MTime Time   `yaml:"mtime"`
}

// RemoveStep deletes a file.
type RemoveStep struct {
	Path string `yaml:"path"`
}

// RunStep runs one synchronization pass.
type RunStep struct {
	// ExpectError is the expected error code: a conflict code or an engine
	// error kind. Empty means success.
	ExpectError string `yaml:"expect_error,omitempty"`

	// ExpectGenerated lists the generated files, in order. Nil skips the check.
	ExpectGenerated []string `yaml:"expect_generated,omitempty"`

	// ExpectWarnings is the expected number of converter warnings.
	ExpectWarnings *int `yaml:"expect_warnings,omitempty"`

	// Interfere touches a file after the first file is generated, as another
	// process editing the tree during the pass would.
	Interfere *TouchStep `yaml:"interfere,omitempty"`
}

// Assertion checks the final tree.
type Assertion struct {
	Type    string `yaml:"type"`
	Path    string `yaml:"path,omitempty"`
	Content string `yaml:"content,omitempty"`
	MTime   Time   `yaml:"mtime,omitempty"`
	Other   string `yaml:"other,omitempty"`
	Count   int    `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertExists      = "exists"
	AssertMissing     = "missing"
	AssertContent     = "content"
	AssertMTime       = "mtime"
	AssertSameMTime   = "same_mtime"
	AssertJournalRuns = "journal_runs"
)

// Time is a timestamp written as decimal seconds, e.g. "2000.0004".
type Time struct {
	timestamp.Timestamp
	Set bool
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (t *Time) UnmarshalYAML(node *yaml.Node) error {
	ts, err := ParseTime(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	t.Timestamp = ts
	t.Set = true
	return nil
}

// ParseTime parses "SECONDS[.FRACTION]" with at most nine fractional digits.
func ParseTime(s string) (timestamp.Timestamp, error) {
	whole, frac, _ := strings.Cut(strings.TrimSpace(s), ".")
	secs, err := strconv.ParseUint(whole, 10, 64)
	if err != nil {
		return timestamp.Timestamp{}, fmt.Errorf("invalid time %q: %w", s, err)
	}
	if len(frac) > 9 {
		return timestamp.Timestamp{}, fmt.Errorf("invalid time %q: more than nine fractional digits", s)
	}
	var nanos uint64
	if frac != "" {
		nanos, err = strconv.ParseUint(frac+strings.Repeat("0", 9-len(frac)), 10, 64)
		if err != nil {
			return timestamp.Timestamp{}, fmt.Errorf("invalid time %q: %w", s, err)
		}
	}
	return timestamp.New(secs, nanos), nil
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		n := 0
		for _, set := range []bool{step.Write != nil, step.Touch != nil, step.Remove != nil, step.Run != nil} {
			if set {
				n++
			}
		}
		if n != 1 {
			return fmt.Errorf("step %d: exactly one of write, touch, remove, run is required", i)
		}
		switch {
		case step.Write != nil && (step.Write.Path == "" || !step.Write.MTime.Set):
			return fmt.Errorf("step %d: write needs path and mtime", i)
		case step.Touch != nil && (step.Touch.Path == "" || !step.Touch.MTime.Set):
			return fmt.Errorf("step %d: touch needs path and mtime", i)
		case step.Remove != nil && step.Remove.Path == "":
			return fmt.Errorf("step %d: remove needs path", i)
		}
	}

	for i, a := range s.Assertions {
		switch a.Type {
		case AssertExists, AssertMissing, AssertContent:
			if a.Path == "" {
				return fmt.Errorf("assertion %d (%s): path is required", i, a.Type)
			}
		case AssertMTime:
			if a.Path == "" || !a.MTime.Set {
				return fmt.Errorf("assertion %d (%s): path and mtime are required", i, a.Type)
			}
		case AssertSameMTime:
			if a.Path == "" || a.Other == "" {
				return fmt.Errorf("assertion %d (%s): path and other are required", i, a.Type)
			}
		case AssertJournalRuns:
			if !s.Journal {
				return fmt.Errorf("assertion %d (%s): scenario has no journal", i, a.Type)
			}
		default:
			return fmt.Errorf("assertion %d: unknown type %q", i, a.Type)
		}
	}
	return nil
}
