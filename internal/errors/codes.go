package errors

import (
	"fmt"
)

// ErrorCode represents a specific error type for show and transcript operations.
type ErrorCode string

const (
	// ErrCodeUnauthorized indicates authentication failure.
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	// ErrCodeRateLimitExceeded indicates rate limit has been exceeded.
	ErrCodeRateLimitExceeded ErrorCode = "RATE_LIMIT_EXCEEDED"
	// ErrCodeInvalidArgument indicates invalid input parameters.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
	// ErrCodeShowNotFound indicates the user has no live show.
	ErrCodeShowNotFound ErrorCode = "SHOW_NOT_FOUND"
	// ErrCodeShowNotFinished indicates a save was requested before the show ended.
	ErrCodeShowNotFinished ErrorCode = "SHOW_NOT_FINISHED"
	// ErrCodeShowAlreadySaved indicates the finished show was already persisted.
	ErrCodeShowAlreadySaved ErrorCode = "SHOW_ALREADY_SAVED"
	// ErrCodeShowBusy indicates the running-show capacity is exhausted.
	ErrCodeShowBusy ErrorCode = "SHOW_BUSY"
	// ErrCodeConversationNotFound indicates the transcript does not exist for this owner.
	ErrCodeConversationNotFound ErrorCode = "CONVERSATION_NOT_FOUND"
	// ErrCodePersistenceFailed indicates the transcript store rejected a write.
	ErrCodePersistenceFailed ErrorCode = "PERSISTENCE_FAILED"
	// ErrCodeContextCanceled indicates the operation was canceled.
	ErrCodeContextCanceled ErrorCode = "CONTEXT_CANCELED"
)

// ShowError represents a structured error for show operations.
type ShowError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *ShowError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *ShowError) Unwrap() error {
	return e.Cause
}

// Convenience constructors for common error types.

// Unauthorized creates an unauthorized error.
func Unauthorized(msg string) *ShowError {
	return &ShowError{Code: ErrCodeUnauthorized, Message: msg}
}

// RateLimitExceeded creates a rate limit exceeded error.
func RateLimitExceeded(msg string) *ShowError {
	return &ShowError{Code: ErrCodeRateLimitExceeded, Message: msg}
}

// InvalidArgument creates an invalid argument error.
func InvalidArgument(msg string) *ShowError {
	return &ShowError{Code: ErrCodeInvalidArgument, Message: msg}
}

// ShowNotFound creates a show not found error.
func ShowNotFound(msg string) *ShowError {
	return &ShowError{Code: ErrCodeShowNotFound, Message: msg}
}

// ConversationNotFound creates a conversation not found error.
func ConversationNotFound(uid string) *ShowError {
	return &ShowError{
		Code:    ErrCodeConversationNotFound,
		Message: fmt.Sprintf("conversation not found: %s", uid),
	}
}

// PersistenceFailed wraps a transcript store write failure.
func PersistenceFailed(cause error) *ShowError {
	return &ShowError{Code: ErrCodePersistenceFailed, Message: "failed to save conversation", Cause: cause}
}

// Wrap wraps an existing error with a code and message.
func Wrap(cause error, code ErrorCode, msg string) *ShowError {
	return &ShowError{Code: code, Message: msg, Cause: cause}
}

// IsCode checks if an error is of a specific code.
func IsCode(err error, code ErrorCode) bool {
	if showErr, ok := err.(*ShowError); ok {
		return showErr.Code == code
	}
	return false
}

// GetCodeFromError extracts the error code from any error.
// Returns the provided default code if the error is not a ShowError.
func GetCodeFromError(err error, defaultCode ErrorCode) ErrorCode {
	if showErr, ok := err.(*ShowError); ok {
		return showErr.Code
	}
	return defaultCode
}
