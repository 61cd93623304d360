package domain

import "errors"

var (
	// ErrSessionNotFound is returned when a session id is unknown or already closed.
	ErrSessionNotFound = errors.New("assessment session not found")
	// ErrInvalidTransition is returned when an event is not allowed in the current status.
	ErrInvalidTransition = errors.New("invalid session transition")
	// ErrInvalidRegistration blocks leaving registration without a name and email.
	ErrInvalidRegistration = errors.New("name and email are required")
	// ErrOutOfRange indicates a selected option index outside the question's options.
	ErrOutOfRange = errors.New("answer index out of range")
	// ErrSourceUnavailable indicates the question source could not be reached or failed.
	ErrSourceUnavailable = errors.New("question source unavailable")
	// ErrMalformedResponse indicates the question source returned an unusable question set.
	ErrMalformedResponse = errors.New("malformed question set")
	// ErrNotCompleted is returned when a report is requested before the attempt finished.
	ErrNotCompleted = errors.New("assessment not completed")
)
