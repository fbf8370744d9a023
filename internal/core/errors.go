package core

import "errors"

// Error codes for domain errors.
const (
	ErrCodeInvalidCommand = "invalid_command"
	ErrCodeBadSyntax      = "bad_syntax"
	ErrCodeInvalidName    = "invalid_name"
	ErrCodeReservedName   = "reserved_name"
	ErrCodeNameTooLong    = "name_too_long"
	ErrCodeNameTaken      = "name_taken"
	ErrCodeNotIdentified  = "not_identified"
	ErrCodeUnavailable    = "unavailable"
	ErrCodeRateLimited    = "rate_limited"
)

var (
	ErrInvalidCommand = errors.New("invalid command")
	ErrBadSyntax      = errors.New("bad syntax")
	ErrInvalidName    = errors.New("invalid name")
	ErrReservedName   = errors.New("reserved name")
	ErrNameTooLong    = errors.New("name too long")
	ErrNameTaken      = errors.New("name taken")
	ErrNotIdentified  = errors.New("not identified")
	ErrUnavailable    = errors.New("command unavailable")
	ErrRateLimited    = errors.New("rate limited")
)

var sentinels = map[string]error{
	ErrCodeInvalidCommand: ErrInvalidCommand,
	ErrCodeBadSyntax:      ErrBadSyntax,
	ErrCodeInvalidName:    ErrInvalidName,
	ErrCodeReservedName:   ErrReservedName,
	ErrCodeNameTooLong:    ErrNameTooLong,
	ErrCodeNameTaken:      ErrNameTaken,
	ErrCodeNotIdentified:  ErrNotIdentified,
	ErrCodeUnavailable:    ErrUnavailable,
	ErrCodeRateLimited:    ErrRateLimited,
}

// ChatError wraps a code and the human-readable message shown to the user.
type ChatError struct {
	Code    string
	Message string
}

func (e *ChatError) Error() string {
	return e.Message
}

// Is matches the sentinel error registered for the code.
func (e *ChatError) Is(target error) bool {
	return sentinels[e.Code] == target
}

func chatError(code, msg string) *ChatError {
	return &ChatError{Code: code, Message: msg}
}

// NewRateLimitError is used by transports that throttle inbound frames.
func NewRateLimitError() *ChatError {
	return chatError(ErrCodeRateLimited, "Oops! You are sending messages too fast. Slow down a little.")
}
