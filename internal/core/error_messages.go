package core

// error_messages.go maps technical errors to user-facing messages with a
// support code.
//
// Codes are grouped by category:
//
//	VAL001  invalid birth date          use dd.mm.yyyy, e.g. 01.01.1995
//	VAL002  invalid number              id must be an integer, salary use '.' as decimal point
//	VAL003  invalid gender              use Male, Female, M or F
//	VAL004  wrong field count           each line needs 6 ';'-separated fields
//	VAL005  malformed record            other record-level failure
//	FILE001 source unavailable          file missing or unreadable
//	FILE002 file too large
//	FILE003 empty file
//	FILE004 line too long
//	UPL001  import cancelled
//	UPL002  too many imports
//	UPL003  import run not found
//	UPL004  invalid request parameter
//	UPL005  import timed out
//	DB001   duplicate key
//	DB004   database unavailable
//	ERR000  fallback
//
// Sentinel and typed errors are resolved with errors.Is/errors.As first.
// Anything else is matched case-insensitively against errorPatterns, first
// match wins.

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/roster/internal/person"
)

// ErrTooManyImports is returned when every import slot stays busy for the
// limiter's wait time.
var ErrTooManyImports = errors.New("too many concurrent imports, please try again later")

// ErrRunNotFound is returned when an import run id is unknown.
var ErrRunNotFound = errors.New("import run not found")

// ErrInvalidParameter is returned for malformed request parameters.
var ErrInvalidParameter = errors.New("invalid parameter")

// ErrFileTooLarge is returned when input exceeds the configured size limit.
var ErrFileTooLarge = errors.New("file too large")

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string
	Action  string
	Code    string
}

var (
	msgInvalidDate = UserMessage{
		Message: "Invalid birth date",
		Action:  "Use the dd.mm.yyyy format, e.g. 01.01.1995",
		Code:    "VAL001",
	}
	msgInvalidNumber = UserMessage{
		Message: "Invalid number",
		Action:  "Use whole numbers for ids and '.' as the decimal point for salaries",
		Code:    "VAL002",
	}
	msgInvalidGender = UserMessage{
		Message: "Invalid gender",
		Action:  "Use Male, Female, M or F",
		Code:    "VAL003",
	}
	msgFieldCount = UserMessage{
		Message: "A line has too few fields",
		Action:  "Each line needs id;name;gender;birth date;division;salary",
		Code:    "VAL004",
	}
	msgMalformed = UserMessage{
		Message: "A line could not be read",
		Action:  "Check the reported line for formatting problems",
		Code:    "VAL005",
	}
	defaultMessage = UserMessage{
		Message: "An unexpected error occurred",
		Action:  "Please try again or contact support",
		Code:    "ERR000",
	}
)

// sentinelMessages is consulted with errors.Is before falling back to patterns.
var sentinelMessages = []struct {
	target error
	msg    UserMessage
}{
	{ErrSourceUnavailable, UserMessage{Message: "The input file could not be read", Action: "Check the file path and permissions", Code: "FILE001"}},
	{ErrFileTooLarge, UserMessage{Message: "File exceeds the maximum size limit", Action: "Split the file into smaller chunks", Code: "FILE002"}},
	{ErrEmptyInput, UserMessage{Message: "The file is empty", Action: "Upload a file with a header line and data rows", Code: "FILE003"}},
	{ErrLineTooLong, UserMessage{Message: "A line is too long", Action: "Check the file for missing line breaks", Code: "FILE004"}},
	{context.Canceled, UserMessage{Message: "The import was cancelled", Action: "Start a new import when ready", Code: "UPL001"}},
	{ErrTooManyImports, UserMessage{Message: "Too many imports in progress", Action: "Please wait a moment and try again", Code: "UPL002"}},
	{ErrRunNotFound, UserMessage{Message: "Import run not found", Action: "Check the run id", Code: "UPL003"}},
	{ErrInvalidParameter, UserMessage{Message: "Invalid request parameter", Action: "Check the query parameters", Code: "UPL004"}},
	{context.DeadlineExceeded, UserMessage{Message: "The import timed out", Action: "Try a smaller file or try again later", Code: "UPL005"}},
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	{"duplicate key", UserMessage{Message: "This import run was already stored", Action: "Retry the import to get a new run id", Code: "DB001"}},
	{"connection refused", UserMessage{Message: "Unable to connect to database", Action: "Please try again in a few moments", Code: "DB004"}},
	{"request body too large", UserMessage{Message: "File exceeds the maximum size limit", Action: "Split the file into smaller chunks", Code: "FILE002"}},
}

// MapError converts an error into a user-facing message.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var re *person.RecordError
	if errors.As(err, &re) {
		return recordMessage(re)
	}

	for _, s := range sentinelMessages {
		if errors.Is(err, s.target) {
			return s.msg
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

func recordMessage(re *person.RecordError) UserMessage {
	switch re.Field {
	case "fields":
		return msgFieldCount
	case "birth date":
		return msgInvalidDate
	case "id", "salary":
		return msgInvalidNumber
	case "gender":
		return msgInvalidGender
	default:
		return msgMalformed
	}
}

// FormatUserError renders err as "Message (Code: XXX). Action", prefixed
// with the line number when err carries one.
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}

	var le *LineError
	if errors.As(err, &le) {
		return fmt.Sprintf("Line %d: %s (Code: %s). %s", le.Line, msg.Message, msg.Code, msg.Action)
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
