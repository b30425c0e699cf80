package lsp

import "fmt"

const (
	codeInvalidRequest       = -32600
	codeMethodNotFound       = -32601
	codeInvalidParams        = -32602
	codeInternalError        = -32603
	codeServerNotInitialized = -32002
)

// responseError is an explicit failure sent back for a request.
type responseError struct {
	Code    int
	Message string
}

func (e *responseError) Error() string {
	return fmt.Sprintf("%s (%d)", e.Message, e.Code)
}

func invalidParams(msg string) *responseError {
	return &responseError{Code: codeInvalidParams, Message: msg}
}

func internalError(msg string) *responseError {
	return &responseError{Code: codeInternalError, Message: msg}
}

func methodNotFound(msg string) *responseError {
	return &responseError{Code: codeMethodNotFound, Message: msg}
}

const (
	msgNoLine        = "Could not retrieve line from VFS."
	msgNoGlob        = "No glob in selection."
	msgMultipleGlobs = "Multiple globs in selection."
	msgNotGlob       = "Not a glob"
	msgOpenFailed    = "Couldn't open file"
	msgNoTypeInfo    = "Couldn't get info from analysis"
	msgDeglobTimeout = "Deglob timed out"
	msgImplsFailed   = "Find Implementations failed to complete successfully"
	msgReformat      = "Reformat failed to complete successfully"
	msgUnknownCmd    = "Unknown command"
	msgBadArgument   = "Bad argument"
)
