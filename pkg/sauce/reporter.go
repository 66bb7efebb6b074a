package sauce

import (
	"context"
	"errors"
	"fmt"

	"github.com/entrhq/gridrunner/pkg/logging"
)

var (
	// ErrNoSession is wrapped in a ReportError when the outcome has no session id.
	ErrNoSession = errors.New("no session id")

	// ErrNoCredentials is wrapped in a ReportError when no account is configured.
	ErrNoCredentials = errors.New("no Sauce Labs username configured")
)

// Outcome is the verdict of one session, reported once at teardown.
type Outcome struct {
	SessionID string
	Passed    bool

	// BuildID is empty when no CI build identifier was found
	BuildID string
}

// ReportError means the job update failed. It never changes the verdict of
// the test that produced the outcome.
type ReportError struct {
	SessionID string
	Err       error
}

func (e *ReportError) Error() string {
	return fmt.Sprintf("failed to update Sauce Labs job %s: %v", e.SessionID, e.Err)
}

func (e *ReportError) Unwrap() error {
	return e.Err
}

// JobUpdater performs the update-job call. *Client implements it.
type JobUpdater interface {
	UpdateJob(ctx context.Context, jobID string, params UpdateJobParams) error
}

// Reporter pushes session outcomes to the job-tracking service.
type Reporter struct {
	logger *logging.Logger
}

// NewReporter creates a reporter. logger may be nil.
func NewReporter(logger *logging.Logger) *Reporter {
	return &Reporter{logger: logger}
}

// Report issues exactly one update for outcome.SessionID. Failures are
// returned as *ReportError and are not retried.
func (r *Reporter) Report(ctx context.Context, client JobUpdater, outcome Outcome) error {
	if outcome.SessionID == "" {
		return &ReportError{Err: ErrNoSession}
	}

	passed := outcome.Passed
	params := UpdateJobParams{Passed: &passed, Build: outcome.BuildID}

	if err := client.UpdateJob(ctx, outcome.SessionID, params); err != nil {
		reportErr := &ReportError{SessionID: outcome.SessionID, Err: err}
		r.logger.Errorf("%v", reportErr)
		return reportErr
	}

	r.logger.Infof("Updated job %s: passed=%t build=[%s]", outcome.SessionID, outcome.Passed, outcome.BuildID)
	return nil
}
