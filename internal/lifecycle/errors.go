package lifecycle

import "errors"

var (
	ErrNotFound           = errors.New("testimonial not found")
	ErrInvalidTransition  = errors.New("invalid testimonial status transition")
	ErrStorageFailure     = errors.New("media storage failure")
	ErrPersistenceFailure = errors.New("persistence failure")
	ErrInvalidPolicy      = errors.New("invalid retention policy")
)

// Failure kinds reported by a sweep.
const (
	KindNotFound           = "not_found"
	KindInvalidTransition  = "invalid_transition"
	KindStorageFailure     = "storage_failure"
	KindPersistenceFailure = "persistence_failure"
)

// FailureKind classifies err into one of the sweep failure kinds.
// Unclassified errors count as persistence failures.
func FailureKind(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrInvalidTransition):
		return KindInvalidTransition
	case errors.Is(err, ErrStorageFailure):
		return KindStorageFailure
	default:
		return KindPersistenceFailure
	}
}
