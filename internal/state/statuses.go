package state

type ExecutionStatus string

const (
	StatusSuccess ExecutionStatus = "success"
	StatusError   ExecutionStatus = "error"
	StatusPartial ExecutionStatus = "partial"
)

func (s ExecutionStatus) String() string {
	return string(s)
}

var AllStatuses = []ExecutionStatus{
	StatusSuccess,
	StatusError,
	StatusPartial,
}

// Advances reports whether a run ending in s may move the schedule's
// last-executed timestamp forward.
func (s ExecutionStatus) Advances() bool {
	return s == StatusSuccess || s == StatusPartial
}

// FromOutcome derives the run status from the number of delivery steps that
// succeeded and failed. A run with no failures is a success even if it sent nothing.
func FromOutcome(succeeded, failed int) ExecutionStatus {
	switch {
	case failed == 0:
		return StatusSuccess
	case succeeded > 0:
		return StatusPartial
	default:
		return StatusError
	}
}
