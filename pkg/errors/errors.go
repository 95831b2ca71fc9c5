package errors

import (
	"errors"
	"fmt"
)

// ErrorType classifies the failures that can abort a download run
type ErrorType string

const (
	ErrorTypeTransport        ErrorType = "transport"
	ErrorTypeUnknownEdition   ErrorType = "unknown_edition"
	ErrorTypeUnavailableDate  ErrorType = "unavailable_date"
	ErrorTypeIssueUnavailable ErrorType = "issue_unavailable"
	ErrorTypeFilesystem       ErrorType = "filesystem"
	ErrorTypeUsage            ErrorType = "usage"
)

// Sentinel errors, one per type, for use with errors.Is
var (
	ErrTransport        = errors.New("transport failure")
	ErrUnknownEdition   = errors.New("unknown edition")
	ErrUnavailableDate  = errors.New("no issue is published on this date")
	ErrIssueUnavailable = errors.New("issue not available for download")
	ErrFilesystem       = errors.New("filesystem failure")
	ErrUsage            = errors.New("invalid usage")
)

var sentinels = map[ErrorType]error{
	ErrorTypeTransport:        ErrTransport,
	ErrorTypeUnknownEdition:   ErrUnknownEdition,
	ErrorTypeUnavailableDate:  ErrUnavailableDate,
	ErrorTypeIssueUnavailable: ErrIssueUnavailable,
	ErrorTypeFilesystem:       ErrFilesystem,
	ErrorTypeUsage:            ErrUsage,
}

// Error is a typed failure carrying an optional underlying cause
type Error struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel belonging to the error's type
func (e *Error) Is(target error) bool {
	if s, ok := sentinels[e.Type]; ok && s == target {
		return true
	}
	return false
}

// New creates a typed error without a cause
func New(t ErrorType, format string, args ...interface{}) *Error {
	return &Error{Type: t, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a typed error around cause. A nil cause yields nil.
func Wrap(t ErrorType, cause error, format string, args ...interface{}) error {
	if cause == nil {
		return nil
	}
	return &Error{Type: t, Message: fmt.Sprintf(format, args...), Err: cause}
}

// TypeOf reports the type of err, or "" when err is not one of ours
func TypeOf(err error) ErrorType {
	var e *Error
	if errors.As(err, &e) {
		return e.Type
	}
	return ""
}

// ExitCode maps an error to the process exit status.
//
//	0  no error
//	1  unclassified
//	2  usage, unknown edition or unavailable date (nothing was sent)
//	3  transport failure
//	4  issue unavailable
//	5  filesystem failure
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	switch TypeOf(err) {
	case ErrorTypeUsage, ErrorTypeUnknownEdition, ErrorTypeUnavailableDate:
		return 2
	case ErrorTypeTransport:
		return 3
	case ErrorTypeIssueUnavailable:
		return 4
	case ErrorTypeFilesystem:
		return 5
	default:
		return 1
	}
}
