// Package businessflow contains the repair desk use cases and derived views
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// Session state errors
	ErrStateUnavailable = errors.New("repair data is not loaded")
	ErrSessionClosed    = errors.New("repair system session is closed")

	// Request errors
	ErrInvalidCustomerID   = errors.New("invalid customer id")
	ErrInvalidTechnicianID = errors.New("invalid technician id")
	ErrInvalidGrade        = errors.New("invalid grade")
	ErrInvalidReportFormat = errors.New("unsupported report format")

	// Export errors
	ErrReportExportFailed = errors.New("report export failed")
)

// BusinessError is raised by the flows for problems outside the data store.
// Store failures are passed through as *repository.StoreError.
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func IsStateUnavailable(err error) bool {
	return errors.Is(err, ErrStateUnavailable)
}

func IsSessionClosed(err error) bool {
	return errors.Is(err, ErrSessionClosed)
}

func IsInvalidReportFormat(err error) bool {
	return errors.Is(err, ErrInvalidReportFormat)
}

// IsInvalidInput reports request errors that map to 400
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidCustomerID) ||
		errors.Is(err, ErrInvalidTechnicianID) ||
		errors.Is(err, ErrInvalidGrade) ||
		errors.Is(err, ErrInvalidReportFormat)
}
