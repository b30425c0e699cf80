package format

import "fmt"

// Error is a problem found while formatting.
type Error struct {
	Line    uint32
	Message string
}

func (e Error) String() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

// Summary reports problems that did not stop formatting but make the
// result untrustworthy.
type Summary struct {
	Errors []Error
}

// HasErrors reports whether any problems were recorded.
func (s Summary) HasErrors() bool { return len(s.Errors) > 0 }

// Formatter formats input. A nil range formats the whole input. The error
// return is reserved for unusable arguments; parse problems go into the
// Summary.
type Formatter interface {
	Format(input string, cfg Config, lines *LineRange) (Summary, string, error)
}
