package lsp

import (
	"strings"

	"lodestar/internal/buildresults"
	"lodestar/internal/span"
)

const applySuggestionCommand = "rls.applySuggestion"

// renameEdit folds references into one edit list per document, each
// replacing the reference with newName. The map is never nil.
func renameEdit(refs []span.Span, newName string) workspaceEdit {
	changes := make(map[string][]textEdit)
	for _, r := range refs {
		u := uriFromPath(r.File)
		changes[u] = append(changes[u], textEdit{
			Range:   toProtocolRange(r.Range),
			NewText: newName,
		})
	}
	return workspaceEdit{Changes: changes}
}

func singleEdit(loc location, newText string) workspaceEdit {
	return workspaceEdit{Changes: map[string][]textEdit{
		loc.URI: {{Range: loc.Range, NewText: newText}},
	}}
}

// findGlob returns the byte offset of the only '*' on line.
func findGlob(line string) (int, *responseError) {
	first := strings.IndexByte(line, '*')
	if first < 0 {
		return 0, invalidParams(msgNoGlob)
	}
	if strings.IndexByte(line[first+1:], '*') >= 0 {
		return 0, invalidParams(msgMultipleGlobs)
	}
	return first, nil
}

// deglobText renders the names a glob brings in. More than one name needs
// a brace group.
func deglobText(names string) string {
	if strings.Contains(names, ",") {
		return "{" + names + "}"
	}
	return names
}

// suggestionCommands turns the suggestions of every diagnostic whose range
// is exactly want into apply commands addressed to docURI.
func suggestionCommands(docURI string, diags []buildresults.Diagnostic, want span.Range) []command {
	out := []command{}
	for _, d := range diags {
		if d.Range != want {
			continue
		}
		for _, sg := range d.Suggestions {
			out = append(out, command{
				Title:   sg.Label,
				Command: applySuggestionCommand,
				Arguments: []any{
					location{URI: docURI, Range: toProtocolRange(sg.Range)},
					sg.NewText,
				},
			})
		}
	}
	return out
}
