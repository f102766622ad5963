package models

// OutcomeKind names a wire-level stream event
type OutcomeKind string

const (
	OutcomeProgress OutcomeKind = "progress"
	OutcomeResult   OutcomeKind = "result"
	OutcomeFailure  OutcomeKind = "error"
	OutcomeDone     OutcomeKind = "done"
)

// ProgressEvent is one observable step of an in-flight generation
type ProgressEvent struct {
	Message string `json:"message"`
	Detail  string `json:"detail"`
}

// FailurePayload is the body of an error frame
type FailurePayload struct {
	Message string `json:"message"`
}

// DonePayload is the body of the end-of-stream frame
type DonePayload struct {
	OK bool `json:"ok"`
}

// StreamOutcome is one of Progress, Result, Failure or Done.
// Exactly one of the payload fields is set for Progress, Result and Failure.
type StreamOutcome struct {
	Kind     OutcomeKind
	Progress *ProgressEvent
	Result   *ReviewResult
	Failure  string
}

// Terminal reports whether the outcome ends a stream
func (o StreamOutcome) Terminal() bool {
	return o.Kind == OutcomeResult || o.Kind == OutcomeFailure || o.Kind == OutcomeDone
}
