package export

import (
	"context"
	"errors"

	errorslib "github.com/goliatone/go-errors"
)

// ErrorKind defines export error kinds.
type ErrorKind string

const (
	KindUnsupportedFormat    ErrorKind = "unsupported_format"
	KindInvalidTemplate      ErrorKind = "invalid_template_configuration"
	KindResourceNotFound     ErrorKind = "resource_not_found"
	KindRenderFailure        ErrorKind = "render_failure"
	KindMissingTimeParameter ErrorKind = "missing_time_parameter"

	KindValidation ErrorKind = "validation"
	KindAuthz      ErrorKind = "authz"
	KindNotFound   ErrorKind = "not_found"
	KindTimeout    ErrorKind = "timeout"
	KindCanceled   ErrorKind = "canceled"
	KindInternal   ErrorKind = "internal"
)

// ExportError wraps errors with a kind.
type ExportError struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *ExportError) Error() string {
	if e.Err == nil {
		return e.Msg
	}
	return e.Msg + ": " + e.Err.Error()
}

func (e *ExportError) Unwrap() error {
	return e.Err
}

// NewError creates a new export error.
func NewError(kind ErrorKind, msg string, err error) *ExportError {
	return &ExportError{Kind: kind, Msg: msg, Err: err}
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindFromError(err) == kind
}

// goErrorKinds maps each kind to its go-errors category. The text code is the kind itself.
var goErrorKinds = map[ErrorKind]errorslib.Category{
	KindUnsupportedFormat:    errorslib.CategoryValidation,
	KindInvalidTemplate:      errorslib.CategoryValidation,
	KindMissingTimeParameter: errorslib.CategoryValidation,
	KindValidation:           errorslib.CategoryValidation,
	KindResourceNotFound:     errorslib.CategoryNotFound,
	KindNotFound:             errorslib.CategoryNotFound,
	KindAuthz:                errorslib.CategoryAuthz,
	KindTimeout:              errorslib.CategoryOperation,
	KindCanceled:             errorslib.CategoryOperation,
	KindRenderFailure:        errorslib.CategoryInternal,
	KindInternal:             errorslib.CategoryInternal,
}

// AsGoError converts err into a go-errors error carrying the kind as its text code.
// Errors that already are go-errors errors are returned unchanged.
func AsGoError(err error) *errorslib.Error {
	if err == nil {
		return nil
	}

	var ge *errorslib.Error
	if errors.As(err, &ge) {
		return ge
	}

	kind := KindFromError(err)
	msg := err.Error()
	var exportErr *ExportError
	if errors.As(err, &exportErr) && exportErr.Msg != "" {
		msg = exportErr.Msg
	}

	category, ok := goErrorKinds[kind]
	if !ok {
		kind, category = KindInternal, errorslib.CategoryInternal
	}
	return errorslib.New(msg, category).WithTextCode(string(kind))
}

// KindFromError maps an error to its export error kind.
func KindFromError(err error) ErrorKind {
	if err == nil {
		return ""
	}

	var exportErr *ExportError
	if errors.As(err, &exportErr) {
		return exportErr.Kind
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	if errors.Is(err, context.Canceled) {
		return KindCanceled
	}

	return KindInternal
}
