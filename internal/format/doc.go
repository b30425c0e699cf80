// Package format normalises source layout for the formatting requests.
//
// The Whitespace formatter knows only brackets, strings and comments: it
// re-indents every selected line by bracket depth and strips trailing
// whitespace. It never moves tokens between lines.
package format
