package lsp

import (
	"errors"
	"path/filepath"
	"strings"

	"go.lsp.dev/uri"

	"lodestar/internal/span"
)

var errNotFileURI = errors.New("not a file URI")

// pathFromURI resolves a file:// URI to a cleaned local path. Any other
// scheme is rejected before uri.Filename, which panics on them.
func pathFromURI(raw string) (string, error) {
	if !strings.HasPrefix(raw, "file://") {
		return "", errNotFileURI
	}
	u, err := uri.Parse(raw)
	if err != nil {
		return "", err
	}
	path := u.Filename()
	if path == "" {
		return "", errNotFileURI
	}
	return filepath.Clean(path), nil
}

func uriFromPath(path string) string {
	if path == "" {
		return ""
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return string(uri.File(path))
}

func toProtocolPosition(p span.Position) position {
	line, char := p.Protocol()
	return position{Line: line, Character: char}
}

func fromProtocolPosition(p position) span.Position {
	return span.FromProtocol(p.Line, p.Character)
}

func toProtocolRange(r span.Range) lspRange {
	return lspRange{Start: toProtocolPosition(r.Start()), End: toProtocolPosition(r.End())}
}

func fromProtocolRange(r lspRange) span.Range {
	return span.NewRange(fromProtocolPosition(r.Start), fromProtocolPosition(r.End))
}

func toLocation(sp span.Span) location {
	return location{URI: uriFromPath(sp.File), Range: toProtocolRange(sp.Range)}
}
