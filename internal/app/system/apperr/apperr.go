// Package apperr defines the typed outcome of every core operation.
//
// Callers use Kind to decide between retrying (Transient), showing the
// problem to the user (NotFound, Unauthorized, Conflict, Validation), or
// treating it as fatal. Code is a stable machine-readable reason such as
// "group_full" or "already_member".
package apperr

import (
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
)

// Kind classifies an error.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindUnauthorized
	KindConflict
	KindValidation
	KindTransient
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindUnauthorized:
		return "unauthorized"
	case KindConflict:
		return "conflict"
	case KindValidation:
		return "validation"
	case KindTransient:
		return "transient"
	default:
		return "unknown"
	}
}

// Stable codes.
const (
	CodeGroupNotFound       = "group_not_found"
	CodeIdeaNotFound        = "idea_not_found"
	CodeFeatureNotFound     = "feature_not_found"
	CodeCommentNotFound     = "comment_not_found"
	CodeRequestNotFound     = "request_not_found"
	CodeInviteNotFound      = "invite_not_found"
	CodeUserNotFound        = "user_not_found"
	CodeMemberNotFound      = "member_not_found"
	CodeNotificationMissing = "notification_not_found"
	CodeNotMember           = "not_member"
	CodeForbidden           = "forbidden"
	CodeAlreadyMember       = "already_member"
	CodeDuplicateRequest    = "duplicate_request"
	CodeGroupFull           = "group_full"
	CodeSelfInvite          = "self_invite"
	CodeOwnerCannotLeave    = "owner_cannot_leave"
	CodeCannotRemoveSelf    = "cannot_remove_self"
	CodeOwnerRoleImmutable  = "owner_role_immutable"
	CodeInvalidInviteCode   = "invalid_invite_code"
	CodeInvalidInput        = "invalid_input"
	CodeConcurrentUpdate    = "concurrent_update"
	CodeStoreFailure        = "store_failure"
	CodeInviteCodeExhausted = "invite_code_exhausted"
	CodeGroupOverCapacity   = "group_over_capacity"
)

// Error is the typed error returned by services.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func newf(kind Kind, code, format string, args ...any) *Error {
	return &Error{Kind: kind, Code: code, Message: fmt.Sprintf(format, args...)}
}

func NotFound(code, format string, args ...any) *Error {
	return newf(KindNotFound, code, format, args...)
}

func Unauthorized(code, format string, args ...any) *Error {
	return newf(KindUnauthorized, code, format, args...)
}

func Conflict(code, format string, args ...any) *Error {
	return newf(KindConflict, code, format, args...)
}

func Validation(code, format string, args ...any) *Error {
	return newf(KindValidation, code, format, args...)
}

// Transient wraps a failure that may succeed on retry.
func Transient(code, op string, err error) *Error {
	return &Error{Kind: KindTransient, Code: code, Message: op, Err: err}
}

// Store converts a raw store error from op into a typed error.
// mongo.ErrNoDocuments becomes NotFound with notFoundCode; anything else is
// Transient. An error that is already typed passes through unchanged.
func Store(op, notFoundCode string, err error) error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return err
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return &Error{Kind: KindNotFound, Code: notFoundCode, Message: op, Err: err}
	}
	return Transient(CodeStoreFailure, op, err)
}

// KindOf returns the Kind of err, or KindUnknown when err is not typed.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindUnknown
}

// CodeOf returns the Code of err, or "" when err is not typed.
func CodeOf(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ""
}

// Is reports whether err is a typed error of kind k.
func Is(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code string) bool {
	return err != nil && CodeOf(err) == code
}

// Retryable reports whether the caller may retry the operation as-is.
func Retryable(err error) bool {
	return Is(err, KindTransient)
}
