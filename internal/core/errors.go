package core

import (
	"errors"
	"fmt"
)

var (
	ErrUserNotFound            = errors.New("user not found")
	ErrInvalidFilter           = errors.New("invalid filter")
	ErrEmptyEmailList          = errors.New("email list is empty")
	ErrNoValidEmails           = errors.New("no valid email found in list")
	ErrInvalidPayment          = errors.New("payment requires a date and a positive value")
	ErrPaymentNotFound         = errors.New("payment not found")
	ErrNoUserSelected          = errors.New("user is not open in the detail editor")
	ErrInvalidActivationSource = errors.New("activation source must be a manual source")
	ErrInvalidMonthlyValue     = errors.New("monthly value must be non-negative")
	ErrAccessDenied            = errors.New("email is not an authorized operator")
	ErrConfirmationRequired    = errors.New("operator confirmation required")
	ErrStore                   = errors.New("document store operation failed")
)

// ConfirmationError is returned when a mutating action was requested without
// the operator's confirmation. Nothing has been written.
type ConfirmationError struct {
	Prompt string
}

func (e *ConfirmationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrConfirmationRequired, e.Prompt)
}

func (e *ConfirmationError) Unwrap() error {
	return ErrConfirmationRequired
}

func confirmationRequired(format string, args ...interface{}) error {
	return &ConfirmationError{Prompt: fmt.Sprintf(format, args...)}
}

// storeError marks err as a document store failure while keeping it in the chain.
func storeError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStore, op, err)
}

// NoticeError pairs a failure with the notice the operator should see for it.
type NoticeError struct {
	Notice Notice
	Err    error
}

func (e *NoticeError) Error() string {
	return e.Err.Error()
}

func (e *NoticeError) Unwrap() error {
	return e.Err
}

func withNotice(n Notice, err error) error {
	return &NoticeError{Notice: n, Err: err}
}
