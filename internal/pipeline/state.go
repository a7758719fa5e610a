package pipeline

// State is a phase of a build run.
type State int

const (
	Idle State = iota
	WorkspaceReset
	ProcessingEntries
	Merging
	CleaningUp
	Done
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case WorkspaceReset:
		return "workspace_reset"
	case ProcessingEntries:
		return "processing_entries"
	case Merging:
		return "merging"
	case CleaningUp:
		return "cleaning_up"
	case Done:
		return "done"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transitions follow s.
func (s State) Terminal() bool {
	return s == Done || s == Failed
}

// Observer is notified of every state change. index is the catalogue entry
// position while processing entries and -1 otherwise.
type Observer interface {
	OnTransition(from, to State, index int)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(from, to State, index int)

// OnTransition calls f.
func (f ObserverFunc) OnTransition(from, to State, index int) {
	f(from, to, index)
}
