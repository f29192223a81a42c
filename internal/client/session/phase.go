package session

// Phase is the state of the session state machine.
type Phase int

const (
	// Resuming is the initial phase: the stored credential, if any, is being
	// validated against the backend.
	Resuming Phase = iota
	// Anonymous means no valid credential is held.
	Anonymous
	// Authenticated means both a credential and an identity are held.
	Authenticated
)

func (p Phase) String() string {
	switch p {
	case Resuming:
		return "resuming"
	case Anonymous:
		return "anonymous"
	case Authenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}
