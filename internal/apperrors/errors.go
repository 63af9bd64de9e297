package apperrors

import (
	"errors"
	"fmt"

	goerrors "github.com/go-errors/errors"
)

type ErrorType string

const (
	ErrTypeNotFound          ErrorType = "NOT_FOUND"
	ErrTypeInvalidCriteria   ErrorType = "INVALID_CRITERIA"
	ErrTypeInvalidTransition ErrorType = "INVALID_TRANSITION"
	ErrTypeConflict          ErrorType = "CONFLICT"
	ErrTypeInvalidInput      ErrorType = "INVALID_INPUT"
	ErrTypeRateLimit         ErrorType = "RATE_LIMIT"
	ErrTypeInternal          ErrorType = "INTERNAL"
)

type DomainError struct {
	Type    ErrorType
	Message string
	Err     error
	Stack   []byte
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

func (e *DomainError) StackTrace() []byte {
	return e.Stack
}

func New(errType ErrorType, message string, err error) *DomainError {
	var stack []byte
	if err != nil {
		if stackErr, ok := err.(*goerrors.Error); ok {
			stack = stackErr.Stack()
		} else {
			stack = goerrors.Wrap(err, 2).Stack()
		}
	} else {
		stack = goerrors.New(message).Stack()
	}

	return &DomainError{
		Type:    errType,
		Message: message,
		Err:     err,
		Stack:   stack,
	}
}

func NotFound(message string, err error) *DomainError {
	return New(ErrTypeNotFound, message, err)
}

func InvalidCriteria(message string, err error) *DomainError {
	return New(ErrTypeInvalidCriteria, message, err)
}

func InvalidTransition(message string, err error) *DomainError {
	return New(ErrTypeInvalidTransition, message, err)
}

func Conflict(message string, err error) *DomainError {
	return New(ErrTypeConflict, message, err)
}

func InvalidInput(message string, err error) *DomainError {
	return New(ErrTypeInvalidInput, message, err)
}

func RateLimit(message string, err error) *DomainError {
	return New(ErrTypeRateLimit, message, err)
}

func Internal(message string, err error) *DomainError {
	return New(ErrTypeInternal, message, err)
}

// TypeOf returns the type of the outermost DomainError in err's chain, or
// ErrTypeInternal when there is none.
func TypeOf(err error) ErrorType {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type
	}
	return ErrTypeInternal
}

func Is(err error, errType ErrorType) bool {
	if err == nil {
		return false
	}
	return TypeOf(err) == errType
}
