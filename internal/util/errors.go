package util

import "errors"

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrEmailRegistered  = errors.New("email already registered")
	ErrPermissionDenied = errors.New("permission denied")
	ErrQuizNotFound     = errors.New("quiz not found")
	ErrQuizNotPublished = errors.New("quiz not published or not accessible")
	ErrAttemptNotFound  = errors.New("attempt not found")
	ErrAttemptForbidden = errors.New("attempt owned by another student")
	ErrAttemptSubmitted = errors.New("attempt already submitted")
	ErrInvalidAnswer    = errors.New("invalid answer payload")
	ErrInvalidQuestion  = errors.New("invalid question definition")
	ErrQuestionNotFound = errors.New("question not found")
	ErrSessionNotActive = errors.New("session is not accepting changes")
	ErrSubmitInProgress = errors.New("submission already in progress")
	ErrAttemptNotGraded = errors.New("attempt result not available yet")
	ErrRecordNotFound   = errors.New("resource not found")
)
