package format

import "fmt"

// Setting is a configuration value that remembers whether it was set
// explicitly or is still at its default.
type Setting[T any] struct {
	Value T
	Set   bool
}

// Apply sets the value explicitly.
func (s *Setting[T]) Apply(v T) {
	s.Value = v
	s.Set = true
}

// Prefer sets the value only when it was not set explicitly. The setting
// stays unset so a later Apply still wins.
func (s *Setting[T]) Prefer(v T) {
	if !s.Set {
		s.Value = v
	}
}

// Config controls the shape of formatter output.
type Config struct {
	HardTabs  Setting[bool]
	TabSpaces Setting[int]
}

// DefaultConfig returns four-space indentation with nothing set explicitly.
func DefaultConfig() Config {
	return Config{
		HardTabs:  Setting[bool]{Value: false},
		TabSpaces: Setting[int]{Value: 4},
	}
}

func (c Config) validate() error {
	if c.TabSpaces.Value < 1 {
		return fmt.Errorf("format: tab_spaces must be positive, got %d", c.TabSpaces.Value)
	}
	return nil
}

// LineRange selects the one-indexed lines [Start, End].
type LineRange struct {
	Start uint32
	End   uint32
}

func (r LineRange) contains(line uint32) bool {
	return line >= r.Start && line <= r.End
}

func (r LineRange) validate() error {
	if r.Start == 0 || r.End < r.Start {
		return fmt.Errorf("format: invalid line range %d-%d", r.Start, r.End)
	}
	return nil
}
