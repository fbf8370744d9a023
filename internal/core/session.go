package core

// Conn is the transport side of a session. Send must not block: the
// transport queues the event or drops it.
type Conn interface {
	Send(event Event)
}

// Session is one live connection paired with its identity.
// The identity is only mutated inside a registry write section.
type Session struct {
	identity Identity
	conn     Conn
}

// NewSession creates an anonymous session over conn.
func NewSession(conn Conn, avatar string) *Session {
	return &Session{
		identity: NewIdentity(avatar),
		conn:     conn,
	}
}

// ID returns the immutable session id.
func (s *Session) ID() string {
	return s.identity.ID
}

// Send delivers an event to this session's connection.
func (s *Session) Send(event Event) {
	s.conn.Send(event)
}

// SendAll delivers events in order.
func (s *Session) SendAll(events ...Event) {
	for _, ev := range events {
		s.conn.Send(ev)
	}
}
