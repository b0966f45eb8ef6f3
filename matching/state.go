package matching

// State is the lifecycle stage of a Service.
type State int32

const (
	StateUninitialized State = iota
	StateInitializing
	StateReady
	StateReloading
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateReloading:
		return "reloading"
	default:
		return "unknown"
	}
}
