package util

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailRegistered    = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenRevoked       = errors.New("token revoked")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrQuizNotFound       = errors.New("quiz not found")
	ErrQuizNotPublished   = errors.New("quiz not published or not accessible")
	ErrQuestionNotFound   = errors.New("question not found in quiz")
	ErrAttemptNotFound    = errors.New("attempt not found")
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionClosed      = errors.New("session already submitted or discarded")
	ErrAnswerRequired     = errors.New("answer the current question before moving on")
	ErrInvalidDocument    = errors.New("please upload a valid PDF or plain-text file")
	ErrDocumentTooLarge   = errors.New("file size must be less than 10MB")
)
