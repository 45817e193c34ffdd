package harnesserrors

import (
	"errors"
	"fmt"
	"strings"
)

const (
	decoratedMessageTemplateConstant = "%s [%s]"
	codedMessageTemplateConstant     = "%s (code %d)"
	unknownFailureMessageConstant    = "unknown failure"
)

// HarnessError describes a failed check together with an optional code.
type HarnessError struct {
	message string
	code    int
	cause   error
}

// New constructs a HarnessError with the provided message and a zero code.
func New(message string) HarnessError {
	return HarnessError{message: message}
}

// Newf formats a HarnessError message.
func Newf(template string, arguments ...any) HarnessError {
	return HarnessError{message: fmt.Sprintf(template, arguments...)}
}

// WithCode constructs a HarnessError carrying an explicit code.
func WithCode(message string, code int) HarnessError {
	return HarnessError{message: message, code: code}
}

// WithCause constructs a HarnessError that keeps message verbatim and exposes cause through Unwrap.
func WithCause(message string, cause error) HarnessError {
	return HarnessError{message: message, cause: cause}
}

// Error renders the message, appending the code when it is set.
func (harnessError HarnessError) Error() string {
	message := harnessError.Message()
	if harnessError.code == 0 {
		return message
	}
	return fmt.Sprintf(codedMessageTemplateConstant, message, harnessError.code)
}

// Message returns the message without the code suffix.
func (harnessError HarnessError) Message() string {
	if len(strings.TrimSpace(harnessError.message)) == 0 {
		return unknownFailureMessageConstant
	}
	return harnessError.message
}

// Code returns the optional integer code.
func (harnessError HarnessError) Code() int {
	return harnessError.code
}

// Unwrap exposes the engine error that caused the failure, when one exists.
func (harnessError HarnessError) Unwrap() error {
	return harnessError.cause
}

// Decorate appends diagnostic text to the message of err, preserving its code.
// Errors that are not HarnessErrors are converted first.
func Decorate(err error, diagnostic string) error {
	if err == nil {
		return nil
	}
	harnessError := From(err)
	trimmedDiagnostic := strings.TrimSpace(diagnostic)
	return HarnessError{
		message: fmt.Sprintf(decoratedMessageTemplateConstant, harnessError.Message(), trimmedDiagnostic),
		code:    harnessError.code,
		cause:   harnessError.cause,
	}
}

// From converts any error into a HarnessError.
func From(err error) HarnessError {
	if err == nil {
		return New(unknownFailureMessageConstant)
	}
	var harnessError HarnessError
	if errors.As(err, &harnessError) {
		return harnessError
	}
	return HarnessError{message: err.Error(), cause: err}
}
