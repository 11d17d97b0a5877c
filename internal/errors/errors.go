package errors

import (
	"errors"
	"fmt"
)

// Code is a stable, machine-readable error type mapped to process exit codes.
type Code int

const (
	CodeSuccess     Code = 0
	CodeInternal    Code = 1
	CodeUsage       Code = 2
	CodeValidation  Code = 10
	CodeNetwork     Code = 11
	CodePool        Code = 12
	CodePrice       Code = 13
	CodeApproval    Code = 14
	CodeSwap        Code = 15
	CodeSigner      Code = 16
	CodeUnavailable Code = 17
	CodeTimeout     Code = 18
	CodeBlocked     Code = 19
)

// Error is a typed pipeline error that carries a stable error code.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

func As(err error) (*Error, bool) {
	var target *Error
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}

// Retryable reports whether the error kind may succeed on a user-initiated
// re-run of the pipeline. Validation and usage errors require corrected
// input and are never retried.
func Retryable(err error) bool {
	cErr, ok := As(err)
	if !ok {
		return false
	}
	switch cErr.Code {
	case CodeNetwork, CodeApproval, CodeSwap, CodeUnavailable, CodeTimeout:
		return true
	default:
		return false
	}
}

func ExitCode(err error) int {
	if err == nil {
		return int(CodeSuccess)
	}
	if cliErr, ok := As(err); ok {
		return int(cliErr.Code)
	}
	return int(CodeInternal)
}
