package domain

import "errors"

var (
	// ErrParticipantNotFound is returned when an identifier does not resolve
	// to a stored participant.
	ErrParticipantNotFound = errors.New("participant not found")
	// ErrQuizNotFound indicates the quiz document does not exist.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrInvalidCredentials is returned on a failed admin login.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
