package lifecycle

// Phase is the driver's own view of a run, coarser than engine run states.
type Phase int

const (
	PhaseIdle     Phase = iota // skeleton built or not, graph not started
	PhaseRunning               // graph playing, consuming events
	PhaseDraining              // terminal event seen, graph being stopped
	PhaseStopped               // graph back in null
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseRunning:
		return "running"
	case PhaseDraining:
		return "draining"
	case PhaseStopped:
		return "stopped"
	default:
		return "unknown"
	}
}
