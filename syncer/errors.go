package syncer

import (
	"context"
	"errors"
	"fmt"
)

// ErrSyncInProgress is returned when a push or pull arrives while another
// cycle holds the guard. Automatic triggers drop it silently; manual
// triggers may surface it.
var ErrSyncInProgress = errors.New("sync already in progress")

// ErrSyncDisabled is returned when no enabled driver is configured.
var ErrSyncDisabled = errors.New("sync is not enabled")

// ErrorClass buckets remote failures into the user-actionable categories
// the connection test reports.
type ErrorClass string

const (
	ErrClassConfig            ErrorClass = "config"
	ErrClassConnectivity      ErrorClass = "connectivity"
	ErrClassTimeout           ErrorClass = "timeout"
	ErrClassPermission        ErrorClass = "permission"
	ErrClassInvalidCredential ErrorClass = "invalid_credential"
	ErrClassNotFound          ErrorClass = "not_found"
	ErrClassUnavailable       ErrorClass = "unavailable"
	ErrClassSetupRequired     ErrorClass = "setup_required"
)

type ClassifiedError struct {
	Class   ErrorClass
	Message string
	Err     error
}

func (e *ClassifiedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Class, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Class, e.Message)
}

func (e *ClassifiedError) Unwrap() error {
	return e.Err
}

func classified(class ErrorClass, message string, err error) *ClassifiedError {
	return &ClassifiedError{Class: class, Message: message, Err: err}
}

// ClassOf extracts the error class, defaulting to connectivity for plain
// transport errors and timeout for context deadline expiry.
func ClassOf(err error) ErrorClass {
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrClassTimeout
	}
	return ErrClassConnectivity
}

// classifyStatus maps an HTTP status code onto the taxonomy shared by the
// document-store and data-API drivers.
func classifyStatus(status int, body string, err error) *ClassifiedError {
	switch {
	case status == 401:
		return classified(ErrClassInvalidCredential, "remote rejected the credential", err)
	case status == 403:
		return classified(ErrClassPermission, "remote denied access; relax its access rules for initial setup", err)
	case status == 404:
		return classified(ErrClassNotFound, "remote project or collection not found", err)
	case status == 429 || status == 503:
		return classified(ErrClassUnavailable, "remote service unavailable", err)
	default:
		return classified(ErrClassConnectivity, fmt.Sprintf("remote error %d: %s", status, body), err)
	}
}
