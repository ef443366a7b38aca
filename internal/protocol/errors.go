package protocol

import (
	"fmt"
	"strings"
)

// Code classifies an RPC failure.
type Code string

const (
	// CodeNotFound means an input file could not be opened.
	CodeNotFound Code = "NotFound"

	// CodeFunctionNotFound means the named map or reduce function is
	// not registered.
	CodeFunctionNotFound Code = "FunctionNotFound"

	// CodeInvalidArgument means a value failed the reduce function's
	// required parsing.
	CodeInvalidArgument Code = "InvalidArgument"

	// CodeUnavailable covers transport-level failures.
	CodeUnavailable Code = "Unavailable"

	// CodeUnknown is reported when no code could be recovered.
	CodeUnknown Code = "Unknown"
)

var knownCodes = map[Code]bool{
	CodeNotFound:         true,
	CodeFunctionNotFound: true,
	CodeInvalidArgument:  true,
	CodeUnavailable:      true,
}

// Error is a coded RPC error. net/rpc transmits only the Error() string,
// so the code is encoded as a "Code: message" prefix and recovered on
// the far side with CodeOf.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return string(e.Code) + ": " + e.Message
}

// Errorf builds a coded error.
func Errorf(code Code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// CodeOf recovers the code from an error that crossed the wire. Errors
// without a recognizable prefix map to CodeUnknown; nil maps to "".
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	if e, ok := err.(*Error); ok {
		return e.Code
	}
	msg := err.Error()
	if i := strings.Index(msg, ":"); i > 0 {
		if c := Code(msg[:i]); knownCodes[c] {
			return c
		}
	}
	return CodeUnknown
}
