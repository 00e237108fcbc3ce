package fault

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound         = errors.New("resource not found")
	ErrInvalidQuestion  = errors.New("invalid question")
	ErrQuestionHidden   = errors.New("question not visible")
	ErrAlreadySubmitted = errors.New("form already submitted")
	ErrInvalidConfig    = errors.New("invalid configuration")
)

type ErrorType int

const (
	ErrClient ErrorType = iota
	ErrInternal
)

type Fault struct {
	Type       ErrorType
	Message    string
	QuestionID string // set when the failure concerns one question
	Err        error
}

func (e *Fault) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.typeString(), e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.typeString(), e.Message)
}

// Unwrap allows errors.Is and errors.As to work.
func (e *Fault) Unwrap() error {
	return e.Err
}

// typeString returns a human-readable representation of the error type.
func (e *Fault) typeString() string {
	switch e.Type {
	case ErrClient:
		return "ClientError"
	case ErrInternal:
		return "InternalError"
	default:
		return "UnknownError"
	}
}

// NewClientError creates an error caused by the caller's input.
func NewClientError(msg string, err error) error {
	return &Fault{
		Type:    ErrClient,
		Message: msg,
		Err:     err,
	}
}

// NewInternalError creates an error raised by storage or other collaborators.
func NewInternalError(msg string, err error) error {
	return &Fault{
		Type:    ErrInternal,
		Message: msg,
		Err:     err,
	}
}

// NewQuestionError creates a client error about a single question, such as
// answering an unknown or hidden one.
func NewQuestionError(questionID, msg string, err error) error {
	return &Fault{
		Type:       ErrClient,
		Message:    fmt.Sprintf("question %s: %s", questionID, msg),
		QuestionID: questionID,
		Err:        err,
	}
}

// QuestionOf returns the question a fault in err's chain refers to.
func QuestionOf(err error) (string, bool) {
	var f *Fault
	if errors.As(err, &f) && f.QuestionID != "" {
		return f.QuestionID, true
	}
	return "", false
}

// IsClientError checks if an error is a client error.
func IsClientError(err error) bool {
	var ce *Fault
	if errors.As(err, &ce) {
		return ce.Type == ErrClient
	}
	return false
}

// IsInternalError checks if an error is an internal error.
func IsInternalError(err error) bool {
	var ce *Fault
	if errors.As(err, &ce) {
		return ce.Type == ErrInternal
	}
	return false
}
