package generator

///////////////////////////////////////////////////////////////////////////////
// TYPES

// State is the lifecycle of a generation request. Only Idle and Complete
// are reachable while no request is in flight.
type State int

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	Idle State = iota
	Connecting
	Streaming
	Complete
)

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Connecting:
		return "connecting"
	case Streaming:
		return "streaming"
	case Complete:
		return "complete"
	}
	return "unknown"
}
