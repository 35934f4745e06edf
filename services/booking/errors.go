package booking

import "errors"

var (
	// ErrSlotConflict means the requested date/time is already occupied.
	ErrSlotConflict = errors.New("requested time slot is not available")
	// ErrUpstream means a collaborator API was unreachable or errored. The
	// orchestrator does not retry; callers surface a generic try-again.
	ErrUpstream = errors.New("upstream service failure")
)
