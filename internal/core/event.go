package core

// EventKind is the discriminant of an outgoing event.
type EventKind int

const (
	// EventConnect announces a user who claimed their first name.
	EventConnect EventKind = iota
	// EventDisconnect announces a named user who left.
	EventDisconnect
	// EventMessage carries a chat message.
	EventMessage
	// EventIdentify tells a session its own identity.
	EventIdentify
	// EventNotice is an informational text.
	EventNotice
	// EventError reports a failed command to its sender.
	EventError
)

func (k EventKind) String() string {
	switch k {
	case EventConnect:
		return "connect"
	case EventDisconnect:
		return "disconnect"
	case EventMessage:
		return "message"
	case EventIdentify:
		return "ident"
	case EventNotice:
		return "notice"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// Event is sent to sessions to describe what happened. Only the field that
// matches Kind is meaningful; use the constructors below.
type Event struct {
	Kind    EventKind
	User    Identity
	Message ChatMessage
	Text    string
}

func ConnectEvent(user Identity) Event {
	return Event{Kind: EventConnect, User: user}
}

func DisconnectEvent(user Identity) Event {
	return Event{Kind: EventDisconnect, User: user}
}

func MessageEvent(msg ChatMessage) Event {
	return Event{Kind: EventMessage, Message: msg}
}

func IdentifyEvent(user Identity) Event {
	return Event{Kind: EventIdentify, User: user}
}

func NoticeEvent(text string) Event {
	return Event{Kind: EventNotice, Text: text}
}

func ErrorEvent(text string) Event {
	return Event{Kind: EventError, Text: text}
}

// ErrorEventFrom turns a domain error into an error event for its sender.
func ErrorEventFrom(err error) Event {
	return ErrorEvent(err.Error())
}
