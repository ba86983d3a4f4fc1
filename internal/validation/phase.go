package validation

// Phase is the lifecycle of a validation request.
type Phase int

const (
	Idle Phase = iota
	InFlight
	Completed
	Failed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case InFlight:
		return "in-flight"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// View is one of the three mutually exclusive workflow screens.
type View int

const (
	ViewForm View = iota
	ViewLoading
	ViewResults
)

// View returns the screen shown for p. A failed request shows the form
// again so the user can resubmit.
func (p Phase) View() View {
	switch p {
	case InFlight:
		return ViewLoading
	case Completed:
		return ViewResults
	}
	return ViewForm
}

// transitions lists the allowed lifecycle edges.
var transitions = map[Phase][]Phase{
	Idle:     {InFlight},
	Failed:   {InFlight},
	InFlight: {Completed, Failed},
}

// CanTransition reports whether from -> to is an allowed edge.
func CanTransition(from, to Phase) bool {
	for _, p := range transitions[from] {
		if p == to {
			return true
		}
	}
	return false
}
