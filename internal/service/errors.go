package service

import (
	"errors"
	"net/http"
)

// Kind classifies a service failure.  Every error returned by the ledger
// and the room service carries exactly one kind.
type Kind int

const (
	KindStorage Kind = iota
	KindNotFound
	KindInvalidDateRange
	KindRoomUnavailable
	KindInvalidGuestCount
	KindInvalid
	KindConflict
)

// Error is the failure half of every service result.  Message is safe to
// show to clients; Err holds the underlying cause for logs.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches sentinel errors by kind and message, so a wrapped
// ErrRoomNotFound still satisfies errors.Is(err, ErrRoomNotFound).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind && t.Message == e.Message
}

var (
	ErrRoomNotFound      = &Error{Kind: KindNotFound, Message: "Room not found"}
	ErrUserNotFound      = &Error{Kind: KindNotFound, Message: "User not found"}
	ErrBookingNotFound   = &Error{Kind: KindNotFound, Message: "Booking not found"}
	ErrInvalidDateRange  = &Error{Kind: KindInvalidDateRange, Message: "Check in date should be before check out date"}
	ErrRoomUnavailable   = &Error{Kind: KindRoomUnavailable, Message: "Room is not available for selected date range"}
	ErrInvalidGuestCount = &Error{Kind: KindInvalidGuestCount, Message: "A booking needs at least one adult and no negative child count"}
)

func storageError(msg string, err error) *Error {
	return &Error{Kind: KindStorage, Message: msg, Err: err}
}

// Response is the structured result handed to clients for a failed (or
// plain successful) operation.
type Response struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
}

// ResponseFor converts any error into a Response.  A nil error maps to
// 200.  Errors that are not *Error are treated as storage failures so
// internal details never reach the client.
func ResponseFor(err error) Response {
	if err == nil {
		return Response{StatusCode: http.StatusOK, Message: "successful"}
	}
	var se *Error
	if !errors.As(err, &se) {
		return Response{StatusCode: http.StatusInternalServerError, Message: "internal error"}
	}
	switch se.Kind {
	case KindNotFound:
		return Response{StatusCode: http.StatusNotFound, Message: se.Message}
	case KindInvalidDateRange, KindRoomUnavailable, KindInvalidGuestCount, KindInvalid, KindConflict:
		return Response{StatusCode: http.StatusBadRequest, Message: se.Message}
	default:
		return Response{StatusCode: http.StatusInternalServerError, Message: se.Message}
	}
}
