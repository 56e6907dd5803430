// error_messages.go maps codec errors to support codes.
//
// # Error Codes Reference
//
// Codes are grouped by category. Kind-based codes are resolved with
// errors.Is against the sentinel kinds; pattern codes are matched
// case-insensitively against the error text.
//
// # Argument Errors (ARG001-ARG099)
//
//	ARG001 - Invalid argument: A required argument was missing or empty
//	         Action: Check the headers, sheet index or mapping you passed
//	         Kind: ErrInvalidArgument
//
//	ARG002 - Sheet out of range: The requested sheet index does not exist
//	         Action: List the sheets first and pick an existing index
//	         Patterns: "sheet index"
//
// # Document Errors (DOC001-DOC099)
//
//	DOC001 - Not found: The document or URL does not exist
//	         Action: Verify the path or URL
//	         Kind: ErrNotFound
//
//	DOC002 - Missing header: The document has no header row
//	         Action: Write the document first or read it with custom headers
//	         Patterns: "no header" (append under a blank first line)
//
// # Format Errors (FMT001-FMT099)
//
//	FMT001 - Unsupported format: The file extension is not recognized
//	         Action: Use .csv, .csv.gz, .csv.zst, .csv.lz4, .xlsx or .xls
//	         Kind: ErrUnsupportedFormat
//
//	FMT002 - Legacy workbook: Legacy .xls workbooks are read-only
//	         Action: Convert the workbook to .xlsx before writing
//	         Patterns: "legacy .xls workbooks"
//
// # I/O Errors (IO001-IO099)
//
//	IO001 - I/O failure: Reading or writing the document failed
//	        Action: Check permissions, disk space and network access
//	        Kind: ErrIO
//
//	IO002 - Request cancelled: The operation was cancelled
//	        Action: Please try again
//	        Patterns: "context canceled"
//
//	IO003 - Request timeout: The operation timed out
//	        Action: Try a smaller file or check your connection
//	        Patterns: "context deadline exceeded"
//
// # Default Error (ERR000)
//
//	ERR000 - Unknown error: An unexpected error occurred
//	         Action: Check the logs for the technical error
//
// Pattern codes are checked before kind codes so that the more specific
// message wins.
package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns is searched in order; the first match wins.
var errorPatterns = []errorPattern{
	{
		pattern: "sheet index",
		msg: UserMessage{
			Message: "The requested sheet does not exist",
			Action:  "List the sheets first and pick an existing index",
			Code:    "ARG002",
		},
	},
	{
		pattern: "no header",
		msg: UserMessage{
			Message: "The document has no header row",
			Action:  "Write the document first or read it with custom headers",
			Code:    "DOC002",
		},
	},
	{
		pattern: "legacy .xls workbooks",
		msg: UserMessage{
			Message: "Legacy .xls workbooks are read-only",
			Action:  "Convert the workbook to .xlsx before writing",
			Code:    "FMT002",
		},
	},
}

type errorKind struct {
	kind error
	msg  UserMessage
}

var errorKinds = []errorKind{
	{
		kind: context.Canceled,
		msg: UserMessage{
			Message: "The operation was cancelled",
			Action:  "Please try again",
			Code:    "IO002",
		},
	},
	{
		kind: context.DeadlineExceeded,
		msg: UserMessage{
			Message: "The operation timed out",
			Action:  "Try a smaller file or check your connection",
			Code:    "IO003",
		},
	},
	{
		kind: ErrInvalidArgument,
		msg: UserMessage{
			Message: "A required argument was missing or empty",
			Action:  "Check the headers, sheet index or mapping you passed",
			Code:    "ARG001",
		},
	},
	{
		kind: ErrNotFound,
		msg: UserMessage{
			Message: "The document does not exist",
			Action:  "Verify the path or URL",
			Code:    "DOC001",
		},
	},
	{
		kind: ErrUnsupportedFormat,
		msg: UserMessage{
			Message: "The file format is not supported",
			Action:  "Use .csv, .csv.gz, .csv.zst, .csv.lz4, .xlsx or .xls",
			Code:    "FMT001",
		},
	},
	{
		kind: ErrIO,
		msg: UserMessage{
			Message: "Reading or writing the document failed",
			Action:  "Check permissions, disk space and network access",
			Code:    "IO001",
		},
	},
}

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Check the logs for the technical error",
	Code:    "ERR000",
}

// MapError converts an error to a user-facing message. Text patterns are
// tried first, then the error kinds in the chain.
//
// Example:
//
//	_, err := textdoc.Open("missing.csv")
//	msg := MapError(err)
//	// msg.Code == "DOC001"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	for _, ek := range errorKinds {
		if errors.Is(err, ek.kind) {
			return ek.msg
		}
	}

	return defaultMessage
}

// FormatUserError renders "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific code rather than ERR000.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user-facing message.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
