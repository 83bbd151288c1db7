package domain

import "errors"

var (
	// ErrInvalidQuizDefinition is returned when a session is requested for a malformed question set.
	ErrInvalidQuizDefinition = errors.New("invalid quiz definition")
	// ErrSessionNotFound is returned for unknown, pruned or (for remaining-time reads) finalized sessions.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrSessionAlreadyFinalized is returned when a session is mutated after it reached a terminal state.
	ErrSessionAlreadyFinalized = errors.New("quiz session already finalized")
	// ErrUnknownQuestion indicates a submitted question ID is not part of the session.
	ErrUnknownQuestion = errors.New("unknown question")
	// ErrInvalidOptionIndex indicates a selected option is out of range for the question.
	ErrInvalidOptionIndex = errors.New("invalid option index")
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrForbidden is returned when a caller acts on a session owned by another user.
	ErrForbidden = errors.New("session belongs to another user")
	// ErrTokenCollision is returned by session stores when a token is already reserved.
	ErrTokenCollision = errors.New("session token already issued")
)
