package sampler

// State is the sampling loop's current phase.
type State int32

const (
	StateConnecting State = iota
	StateSampling
	StatePersisting
	StateStopped
)

var stateNames = [...]string{
	StateConnecting: "connecting",
	StateSampling:   "sampling",
	StatePersisting: "persisting",
	StateStopped:    "stopped",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// States lists every state, in order.
func States() []State {
	return []State{StateConnecting, StateSampling, StatePersisting, StateStopped}
}
