package planilla

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrRequiredField      = errors.New("required field missing")
	ErrInvalidTaxID       = errors.New("invalid tax id")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidObservation = errors.New("invalid observation code")

	ErrDuplicateInvoice = errors.New("duplicate invoice")
	ErrInvoiceNotFound  = errors.New("invoice not found")

	ErrMissingBatchNumber   = errors.New("missing batch number")
	ErrEmptyLedger          = errors.New("empty ledger")
	ErrConfirmationRequired = errors.New("final submission requires confirmation")
	ErrBusy                 = errors.New("operation already in progress")
	ErrInvalidTransition    = errors.New("invalid state transition")
	ErrStaleSession         = errors.New("session was reset while the request was in flight")

	ErrCollaboratorUnavailable = errors.New("collaborator unavailable")
	ErrCollaboratorRejected    = errors.New("collaborator rejected the request")
	ErrCompanyNotFound         = errors.New("company not found")
)

// FieldError is a validation failure bound to one form field.
type FieldError struct {
	Field Field
	Kind  error
	Msg   string
}

func (e *FieldError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Kind.Error())
}

func (e *FieldError) Unwrap() error { return e.Kind }

// ValidationErrors collects every field failure found on a form submission.
type ValidationErrors []*FieldError

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for _, fe := range v {
		parts = append(parts, fe.Error())
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (v ValidationErrors) Unwrap() []error {
	errs := make([]error, 0, len(v))
	for _, fe := range v {
		errs = append(errs, fe)
	}
	return errs
}

// Messages maps field name to the user-facing message, the shape the form client renders.
func (v ValidationErrors) Messages() map[string]string {
	out := make(map[string]string, len(v))
	for _, fe := range v {
		out[string(fe.Field)] = fe.Msg
	}
	return out
}

// InvoiceError identifies the invoice involved in a ledger failure.
type InvoiceError struct {
	Kind          error
	ID            string
	InvoiceNumber string
	PayeeName     string
}

func (e *InvoiceError) Error() string {
	if e == nil {
		return ""
	}
	if e.ID != "" {
		return fmt.Sprintf("%s: %s", e.Kind.Error(), e.ID)
	}
	return fmt.Sprintf("%s: %s / %s", e.Kind.Error(), e.InvoiceNumber, e.PayeeName)
}

func (e *InvoiceError) Unwrap() error { return e.Kind }

// CollaboratorError wraps a failed call to an external service.
// Message carries the text the collaborator returned, when it returned one.
type CollaboratorError struct {
	Op      string
	Kind    error
	Message string
	Err     error
}

func (e *CollaboratorError) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Op + ": " + e.Kind.Error()
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *CollaboratorError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Unavailable builds a CollaboratorError for transport or HTTP failures.
func Unavailable(op string, err error) error {
	return &CollaboratorError{Op: op, Kind: ErrCollaboratorUnavailable, Err: err}
}

// Rejected builds a CollaboratorError for an explicit failure status.
func Rejected(op, message string) error {
	return &CollaboratorError{Op: op, Kind: ErrCollaboratorRejected, Message: message}
}

func requiredf(field Field, msg string) *FieldError {
	return &FieldError{Field: field, Kind: ErrRequiredField, Msg: msg}
}
