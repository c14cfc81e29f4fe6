package service

// State is the fetch state of the coordinator.
type State int

const (
	StateIdle State = iota
	StateFetching
	StateMergedIdle
	StateFailedIdle
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFetching:
		return "fetching"
	case StateMergedIdle:
		return "merged_idle"
	case StateFailedIdle:
		return "failed_idle"
	default:
		return "unknown"
	}
}

// MarshalText renders the state name in JSON status payloads.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
