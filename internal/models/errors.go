// internal/models/errors.go
package models

import "errors"

var (
	// ErrValidation marks input rejected at the API boundary (blank names or messages).
	ErrValidation = errors.New("validation failed")

	ErrRoomNotFound   = errors.New("room not found")
	ErrTicketNotFound = errors.New("ticket not found")

	// ErrQuestionUnavailable means the question source could not supply a question,
	// so no pairing took place.
	ErrQuestionUnavailable = errors.New("no question available")
)
