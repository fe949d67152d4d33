package usecase

import "errors"

// Sentinel errors shared by the pipeline services. Callers wrap them with
// detail through fmt.Errorf("%w: ...") and match with errors.Is.
var (
	// ErrInvalidInput marks bad stage names, unusable snapshots, and other
	// inputs a retry will not fix.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound marks a stage asking for output an earlier stage never
	// produced.
	ErrNotFound = errors.New("required data not found")

	// ErrDependencyUnavailable marks a collaborator that is missing from
	// the wiring or unreachable at run time.
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)
