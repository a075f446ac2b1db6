package ledger

import (
	"errors"
	"fmt"
)

// Flow-level sentinel errors.
var (
	// ErrFlowInProgress is returned when a user triggers a second flow
	// while one is already in flight. Concurrent flows for the same key
	// are rejected, not queued.
	ErrFlowInProgress = errors.New("a report flow is already in progress for this user")

	// ErrNoFlow is returned when a flow step arrives with no session.
	ErrNoFlow = errors.New("no report flow in progress for this user")

	// ErrReportNotFound is returned when an operation names a report ID
	// that does not exist.
	ErrReportNotFound = errors.New("report not found")
)

// ValidationError indicates bad user input. Surfaced immediately, with no
// side effects.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Msg)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// FlowStateError indicates a flow step arrived out of order.
type FlowStateError struct {
	Expected FlowState
	Actual   FlowState
}

func (e *FlowStateError) Error() string {
	return fmt.Sprintf("flow is in state %s, expected %s", e.Actual, e.Expected)
}

// SubmissionError indicates a failure during the multi-step commit after
// the report row exists. The report is left in place; the fan-out can be
// replayed idempotently using the report ID.
type SubmissionError struct {
	ReportID string
	Step     string
	Err      error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("commit failed at %s for report %s: %v", e.Step, e.ReportID, e.Err)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// IsSubmission reports whether err is (or wraps) a SubmissionError.
func IsSubmission(err error) bool {
	var se *SubmissionError
	return errors.As(err, &se)
}
