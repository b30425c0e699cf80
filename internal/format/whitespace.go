package format

import (
	"strings"
)

// Whitespace is the bracket-depth formatter.
type Whitespace struct{}

var _ Formatter = Whitespace{}

var closers = map[byte]byte{')': '(', ']': '[', '}': '{'}

// scanner tracks bracket nesting across lines, skipping strings and
// comments.
type scanner struct {
	stack   []byte
	inBlock int
	summary *Summary
}

// scan consumes one line. It returns the depth to indent the line with.
func (s *scanner) scan(line string, lineNo uint32) int {
	depth := len(s.stack)
	leading := true
	inString := false
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case s.inBlock > 0:
			if c == '*' && i+1 < len(line) && line[i+1] == '/' {
				s.inBlock--
				i++
			} else if c == '/' && i+1 < len(line) && line[i+1] == '*' {
				s.inBlock++
				i++
			}
			continue
		case inString:
			if c == '\\' {
				i++
			} else if c == '"' {
				inString = false
			}
			continue
		}
		switch c {
		case ' ', '\t':
			continue
		case '"':
			inString = true
		case '\'':
			if i+2 < len(line) && line[i+2] == '\'' {
				i += 2
			} else if i+3 < len(line) && line[i+1] == '\\' && line[i+3] == '\'' {
				i += 3
			}
		case '/':
			if i+1 < len(line) && line[i+1] == '/' {
				return depth
			}
			if i+1 < len(line) && line[i+1] == '*' {
				s.inBlock++
				i++
			}
		case '(', '[', '{':
			s.stack = append(s.stack, c)
		case ')', ']', '}':
			open := closers[c]
			if n := len(s.stack); n > 0 && s.stack[n-1] == open {
				s.stack = s.stack[:n-1]
				if leading {
					depth--
				}
			} else {
				s.summary.Errors = append(s.summary.Errors, Error{Line: lineNo, Message: "unmatched '" + string(c) + "'"})
			}
		}
		leading = false
	}
	if inString {
		// Multi-line string literals are left untouched from here on.
		s.summary.Errors = append(s.summary.Errors, Error{Line: lineNo, Message: "unterminated string"})
	}
	return depth
}

func indent(cfg Config, depth int) string {
	if depth <= 0 {
		return ""
	}
	if cfg.HardTabs.Value {
		return strings.Repeat("\t", depth)
	}
	return strings.Repeat(" ", depth*cfg.TabSpaces.Value)
}

// Format re-indents input. Lines outside the range are copied unchanged
// but still contribute to bracket depth.
func (Whitespace) Format(input string, cfg Config, lines *LineRange) (Summary, string, error) {
	var summary Summary
	if err := cfg.validate(); err != nil {
		return summary, "", err
	}
	if lines != nil {
		if err := lines.validate(); err != nil {
			return summary, "", err
		}
	}
	if input == "" {
		return summary, "", nil
	}

	sc := scanner{summary: &summary}
	src := strings.Split(strings.TrimSuffix(input, "\n"), "\n")
	var out strings.Builder
	out.Grow(len(input))
	for i, raw := range src {
		lineNo := uint32(i + 1)
		wasBlock := sc.inBlock > 0
		depth := sc.scan(raw, lineNo)
		switch {
		case lines != nil && !lines.contains(lineNo):
			out.WriteString(raw)
		case wasBlock:
			out.WriteString(strings.TrimRight(raw, " \t\r"))
		default:
			body := strings.TrimSpace(raw)
			if body != "" {
				out.WriteString(indent(cfg, depth))
				out.WriteString(body)
			}
		}
		out.WriteByte('\n')
	}
	if sc.inBlock > 0 {
		summary.Errors = append(summary.Errors, Error{Line: uint32(len(src)), Message: "unterminated block comment"})
	}
	if n := len(sc.stack); n > 0 {
		summary.Errors = append(summary.Errors, Error{Line: uint32(len(src)), Message: "unclosed '" + string(sc.stack[n-1]) + "'"})
	}
	return summary, out.String(), nil
}
