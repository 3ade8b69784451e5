package board

// State is the visual state of one indicator.
type State int

const (
	StateChecking State = iota
	StateOnline
	StateOffline
	StateError
)

const (
	DotClass        = "status-dot"
	DotClassOnline  = "status-dot online"
	DotClassOffline = "status-dot offline"

	TextChecking = "Checking..."
	TextOnline   = "Online"
	TextOffline  = "Offline"
	TextError    = "Error"

	ColorOnline  = "#28a745"
	ColorOffline = "#dc3545"

	LabelIdle = "Check All Connections"
	LabelBusy = "Checking..."
)

func (s State) String() string {
	switch s {
	case StateChecking:
		return "checking"
	case StateOnline:
		return "online"
	case StateOffline:
		return "offline"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// MarshalText renders the state by name in JSON views.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
