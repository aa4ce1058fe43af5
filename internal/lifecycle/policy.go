package lifecycle

import (
	"fmt"
	"time"
)

// Policy holds the retention windows that drive expiry.
type Policy struct {
	SubmissionTimeout  time.Duration
	ApprovalRetention  time.Duration
	RejectionRetention time.Duration
	MediaDeleteTimeout time.Duration
	// MaxDeleteAttempts bounds DeleteNow retries after a lost compare-and-set.
	MaxDeleteAttempts int
}

const day = 24 * time.Hour

func DefaultPolicy() Policy {
	return Policy{
		SubmissionTimeout:  10 * day,
		ApprovalRetention:  15 * day,
		RejectionRetention: 3 * day,
		MediaDeleteTimeout: 15 * time.Second,
		MaxDeleteAttempts:  3,
	}
}

// PolicyFromDays builds a policy from whole-day windows, the unit operators configure.
func PolicyFromDays(submissionTimeoutDays, approvalRetentionDays, rejectionRetentionDays int) (Policy, error) {
	p := DefaultPolicy()
	p.SubmissionTimeout = time.Duration(submissionTimeoutDays) * day
	p.ApprovalRetention = time.Duration(approvalRetentionDays) * day
	p.RejectionRetention = time.Duration(rejectionRetentionDays) * day
	return p, p.Validate()
}

// Validate rejects windows that would expire a record at or before the moment
// it enters its state.
func (p Policy) Validate() error {
	switch {
	case p.SubmissionTimeout <= 0:
		return fmt.Errorf("%w: submission timeout %v", ErrInvalidPolicy, p.SubmissionTimeout)
	case p.ApprovalRetention <= 0:
		return fmt.Errorf("%w: approval retention %v", ErrInvalidPolicy, p.ApprovalRetention)
	case p.RejectionRetention <= 0:
		return fmt.Errorf("%w: rejection retention %v", ErrInvalidPolicy, p.RejectionRetention)
	}
	return nil
}

func (p Policy) deleteAttempts() int {
	if p.MaxDeleteAttempts <= 0 {
		return 1
	}
	return p.MaxDeleteAttempts
}

func (p Policy) mediaTimeout() time.Duration {
	if p.MediaDeleteTimeout <= 0 {
		return 15 * time.Second
	}
	return p.MediaDeleteTimeout
}
