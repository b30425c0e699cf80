package heuristic

import (
	"iter"
	"regexp"
	"strings"
	"unicode"

	"lodestar/internal/span"
)

// Source supplies file text.
type Source interface {
	Text(path string) (string, error)
}

var declPattern = regexp.MustCompile(`\b(fn|struct|enum|trait|mod|let|const|static|type|macro_rules!)\s+(?:mut\s+)?([A-Za-z_][A-Za-z0-9_]*)`)

var declKinds = map[string]MatchKind{
	"fn":           MatchFunction,
	"struct":       MatchStruct,
	"enum":         MatchEnum,
	"trait":        MatchTrait,
	"mod":          MatchModule,
	"let":          MatchLet,
	"const":        MatchConst,
	"static":       MatchStatic,
	"type":         MatchType,
	"macro_rules!": MatchMacro,
}

// Lexical scans the requested file for declaration keywords. It knows
// nothing about scopes or imports.
type Lexical struct {
	src Source
}

var _ Engine = (*Lexical)(nil)

// NewLexical returns an engine reading files from src.
func NewLexical(src Source) *Lexical {
	return &Lexical{src: src}
}

func isIdent(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// wordAt returns the identifier around the cursor and the part of it that
// precedes the cursor.
func wordAt(line string, col span.Column) (word, prefix string) {
	off := span.ByteOffset(line, col)
	start := strings.LastIndexFunc(line[:off], func(r rune) bool { return !isIdent(r) }) + 1
	end := strings.IndexFunc(line[off:], func(r rune) bool { return !isIdent(r) })
	if end < 0 {
		end = len(line)
	} else {
		end += off
	}
	return line[start:end], line[start:off]
}

func (l *Lexical) lines(path string) []string {
	text, err := l.src.Text(path)
	if err != nil {
		return nil
	}
	return span.Lines(text)
}

func lineAt(lines []string, at Coordinate) (string, bool) {
	row := span.RowFromOneIndexed(at.Line).ZeroIndexed()
	if int(row) >= len(lines) {
		return "", false
	}
	return lines[row], true
}

// declarations yields every declaration in lines in source order.
func declarations(path string, lines []string) iter.Seq[Match] {
	return func(yield func(Match) bool) {
		for i, line := range lines {
			for _, loc := range declPattern.FindAllStringSubmatchIndex(line, -1) {
				kw := line[loc[2]:loc[3]]
				coord := Coordinate{
					Line:   span.Row(uint32(i)).OneIndexed(),
					Column: uint32(span.ColumnAt(line, loc[4])),
				}
				m := Match{
					Name:    line[loc[4]:loc[5]],
					Kind:    declKinds[kw],
					Path:    path,
					Coords:  &coord,
					Context: strings.TrimSpace(line),
				}
				if !yield(m) {
					return
				}
			}
		}
	}
}

// CompleteFromFile yields declarations whose name starts with the
// identifier prefix at the cursor. Each name is yielded once.
func (l *Lexical) CompleteFromFile(path string, at Coordinate) iter.Seq[Match] {
	return func(yield func(Match) bool) {
		lines := l.lines(path)
		line, ok := lineAt(lines, at)
		if !ok {
			return
		}
		_, prefix := wordAt(line, span.Column(at.Column))
		seen := make(map[string]struct{})
		for m := range declarations(path, lines) {
			if !strings.HasPrefix(m.Name, prefix) {
				continue
			}
			if _, dup := seen[m.Name]; dup {
				continue
			}
			seen[m.Name] = struct{}{}
			if !yield(m) {
				return
			}
		}
	}
}

// FindDefinition returns the first declaration of the identifier under
// the cursor.
func (l *Lexical) FindDefinition(path string, at Coordinate) (Match, bool) {
	lines := l.lines(path)
	line, ok := lineAt(lines, at)
	if !ok {
		return Match{}, false
	}
	word, _ := wordAt(line, span.Column(at.Column))
	if word == "" {
		return Match{}, false
	}
	for m := range declarations(path, lines) {
		if m.Name == word {
			return m, true
		}
	}
	return Match{}, false
}
