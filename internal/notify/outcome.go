package notify

// OutcomeKind classifies how a notification attempt ended
type OutcomeKind string

const (
	OutcomeSent    OutcomeKind = "sent"
	OutcomeSkipped OutcomeKind = "skipped"
	OutcomeFailed  OutcomeKind = "failed"
)

// Outcome is the inspectable result of a best-effort notification. A failed
// or skipped outcome never fails the request that triggered it; callers
// surface it as an email_sent flag.
type Outcome struct {
	Kind   OutcomeKind
	Reason string
	Err    error
}

// Sent reports a delivered notification
func Sent() Outcome {
	return Outcome{Kind: OutcomeSent}
}

// Skipped reports a notification that was not attempted
func Skipped(reason string) Outcome {
	return Outcome{Kind: OutcomeSkipped, Reason: reason}
}

// Failed reports a notification that was attempted and failed
func Failed(err error) Outcome {
	return Outcome{Kind: OutcomeFailed, Err: err}
}

// EmailSent is the boolean flag reflected back in API responses
func (o Outcome) EmailSent() bool {
	return o.Kind == OutcomeSent
}
