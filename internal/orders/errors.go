package orders

import (
	"errors"
	"fmt"

	"github.com/odyssey-erp/odyssey-wms/internal/lineitems"
	"github.com/odyssey-erp/odyssey-wms/internal/platform/httpx"
)

var (
	// ErrDraftNotFound indicates the draft id is unknown or was swept.
	ErrDraftNotFound = fmt.Errorf("orders: draft %w", httpx.ErrNotFound)
	// ErrLoadFailed indicates the catalog or the record could not be fetched.
	ErrLoadFailed = fmt.Errorf("orders: load failed: %w", httpx.ErrUpstream)
	// ErrSubmitFailed indicates the remote API rejected or never received the submission.
	ErrSubmitFailed = fmt.Errorf("orders: submit failed: %w", httpx.ErrUpstream)
	// ErrSubmitInProgress indicates a submission for the draft is still running.
	ErrSubmitInProgress = errors.New("orders: submit in progress")
)

// SubmitFailedNotice is the single message shown for any transport or server failure.
const SubmitFailedNotice = "Failed to save. Please try again."

// ValidationError carries the error map of a rejected submission.
type ValidationError struct {
	Errors lineitems.Errors
}

func (e *ValidationError) Error() string {
	return lineitems.Notice
}

func (e *ValidationError) Unwrap() []error {
	return []error{lineitems.ErrValidation, httpx.ErrValidation}
}
