package viewsession

// State is the lifecycle state of a session.
type State int

const (
	// StateNotShown is the initial state; the view was never displayed.
	StateNotShown State = iota

	// StateShowing indicates the view is on screen.
	StateShowing

	// StateHidden indicates the view was shown and is now off screen.
	StateHidden

	// StateDestroyed is terminal. Every lifecycle call fails from here.
	StateDestroyed
)

// String returns a human-readable string for the state.
func (s State) String() string {
	switch s {
	case StateNotShown:
		return "not_shown"
	case StateShowing:
		return "showing"
	case StateHidden:
		return "hidden"
	case StateDestroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}
