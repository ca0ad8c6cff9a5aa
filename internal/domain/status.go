package domain

// CancellationStatus is the lifecycle of an order's cancellation record.
type CancellationStatus string

const (
	CancellationNone      CancellationStatus = "NONE"
	CancellationRequested CancellationStatus = "REQUESTED"
	CancellationApproved  CancellationStatus = "APPROVED"
	CancellationRejected  CancellationStatus = "REJECTED"
)

func (s CancellationStatus) String() string {
	return string(s)
}

// APPROVED and REJECTED are terminal. There is no way back to NONE.
var cancellationTransitions = map[CancellationStatus][]CancellationStatus{
	CancellationNone:      {CancellationRequested},
	CancellationRequested: {CancellationApproved, CancellationRejected},
	CancellationApproved:  {},
	CancellationRejected:  {},
}

func (s CancellationStatus) CanTransitionTo(next CancellationStatus) bool {
	for _, allowed := range cancellationTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}
