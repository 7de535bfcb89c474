package model

// Phase is the closed set of states a load operation moves through. Code
// switching on a Phase must handle every variant; there is no open extension.
type Phase int

// Load phases.
const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseSuccess
	PhaseError
)

// String returns the lowercase phase name.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseSuccess:
		return "success"
	case PhaseError:
		return "error"
	default:
		return "unknown"
	}
}

// EventsResult is the tagged result of loading the event feed. The payload
// fields are only meaningful for the variant named by Phase, so construction
// goes through the variant helpers below.
type EventsResult struct {
	Phase  Phase   `json:"phase"`
	Events []Event `json:"events,omitempty"`
	Err    string  `json:"error,omitempty"`
}

// EventsIdle returns the idle variant.
func EventsIdle() EventsResult {
	return EventsResult{Phase: PhaseIdle}
}

// EventsLoading returns the loading variant.
func EventsLoading() EventsResult {
	return EventsResult{Phase: PhaseLoading}
}

// EventsSuccess returns the success variant carrying the loaded events.
func EventsSuccess(events []Event) EventsResult {
	return EventsResult{Phase: PhaseSuccess, Events: events}
}

// EventsError returns the error variant carrying a display message.
func EventsError(msg string) EventsResult {
	return EventsResult{Phase: PhaseError, Err: msg}
}
