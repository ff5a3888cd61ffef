package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (wrapped with
// the driver cause) so services can translate them into domain errors:
// - ErrConflict: a unique constraint rejected the write
// - ErrUnavailable: the backing store could not complete the operation
//
// Input validation failures do not belong here; see the validation package.
var (
	ErrConflict    = errors.New("conflict")
	ErrUnavailable = errors.New("unavailable")
)
