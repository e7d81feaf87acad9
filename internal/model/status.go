package model

// Mailing status constants. Transitions are monotonic:
// CREATED -> RUNNING -> FINISHED, never backwards.
const (
	MailingCreated  = "CREATED"
	MailingRunning  = "RUNNING"
	MailingFinished = "FINISHED"
)

// Mail attempt outcome constants.
const (
	AttemptSuccess = "SUCCESS"
	AttemptFailed  = "FAILED"
)

// NextMailingStatus enforces the monotonic status order. It returns the
// candidate status if it is equal to or later than current, otherwise current.
func NextMailingStatus(current, candidate string) string {
	if mailingStatusRank(candidate) < mailingStatusRank(current) {
		return current
	}
	return candidate
}

func mailingStatusRank(status string) int {
	switch status {
	case MailingCreated:
		return 0
	case MailingRunning:
		return 1
	case MailingFinished:
		return 2
	}
	return -1
}
