package session

// State is the connection state of a chat session.
type State uint8

const (
	Disconnected State = iota
	Connecting
	Connected
	Closing
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Closing:
		return "closing"
	default:
		return "unknown"
	}
}

// Trigger is a transport or user event that may move the session to another state.
type Trigger uint8

const (
	Join   Trigger = iota // user asked to join with a nickname
	Opened                // websocket handshake completed
	Failed                // dial or transport error
	Closed                // websocket closed for any reason
	Leave                 // user or process asked to disconnect
)

func (t Trigger) String() string {
	switch t {
	case Join:
		return "join"
	case Opened:
		return "opened"
	case Failed:
		return "failed"
	case Closed:
		return "closed"
	case Leave:
		return "leave"
	default:
		return "unknown"
	}
}

// Effect is a set of side effects the caller must run after a transition.
type Effect uint8

const (
	Dial Effect = 1 << iota
	ShowChat
	ShowLogin
	RefreshStats
	Alert
	CloseTransport
)

func (e Effect) Has(f Effect) bool { return e&f == f }

type transition struct {
	next    State
	effects Effect
}

var table = map[State]map[Trigger]transition{
	Disconnected: {
		Join: {Connecting, Dial},
	},
	Connecting: {
		Opened: {Connected, ShowChat | RefreshStats},
		Failed: {Disconnected, Alert | ShowLogin},
		Closed: {Disconnected, ShowLogin},
		Leave:  {Disconnected, CloseTransport | ShowLogin},
	},
	Connected: {
		Failed: {Disconnected, Alert | ShowLogin | CloseTransport},
		Closed: {Disconnected, ShowLogin},
		Leave:  {Closing, CloseTransport},
	},
	Closing: {
		Failed: {Disconnected, ShowLogin},
		Closed: {Disconnected, ShowLogin},
	},
}

// Transition looks up the table. ok is false when the trigger does not apply to from;
// callers then leave the state untouched and run nothing.
func Transition(from State, t Trigger) (next State, effects Effect, ok bool) {
	tr, ok := table[from][t]
	if !ok {
		return from, 0, false
	}
	return tr.next, tr.effects, true
}
