package protocol

// Kind tags what a chat frame carries.
type Kind uint8

const (
	KindMessage Kind = iota
	KindJoin
	KindLeave
	KindSystem
)

var kindNames = [...]string{
	KindMessage: "message",
	KindJoin:    "join",
	KindLeave:   "leave",
	KindSystem:  "system",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// IsSystem reports whether the frame is a room notice rather than something a user typed.
func (k Kind) IsSystem() bool {
	return k == KindJoin || k == KindLeave || k == KindSystem
}

// ParseKind maps a wire "type" to a Kind. Missing or unknown types are treated as
// ordinary chat messages so that newer servers do not break older clients.
func ParseKind(s string) Kind {
	switch s {
	case "join":
		return KindJoin
	case "leave":
		return KindLeave
	case "system":
		return KindSystem
	default:
		return KindMessage
	}
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	*k = ParseKind(string(b))
	return nil
}
