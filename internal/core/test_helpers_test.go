package core

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// recorder is a Conn that keeps every event it receives.
type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) Send(event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recorder) all() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

func (r *recorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

func (r *recorder) ofKind(kind EventKind) []Event {
	var out []Event
	for _, ev := range r.all() {
		if ev.Kind == kind {
			out = append(out, ev)
		}
	}
	return out
}

// mustOnly asserts the recorder holds exactly one event of the given kind
// and nothing else, and returns it.
func mustOnly(t *testing.T, r *recorder, kind EventKind) Event {
	t.Helper()

	events := r.all()
	require.Len(t, events, 1, "events: %+v", events)
	require.Equal(t, kind, events[0].Kind, "event: %+v", events[0])
	return events[0]
}

type peer struct {
	session *Session
	conn    *recorder
}

func newTestDispatcher(t *testing.T, opts Options) *Dispatcher {
	t.Helper()
	return NewDispatcher(NewRegistry(nil), opts, nil)
}

// connect joins a new session and drops its greeting.
func connect(d *Dispatcher) peer {
	conn := &recorder{}
	s := d.Connect(conn)
	conn.reset()
	return peer{session: s, conn: conn}
}

// named joins a session and claims name, clearing every recorder involved.
func named(t *testing.T, d *Dispatcher, name string, others ...peer) peer {
	t.Helper()

	p := connect(d)
	require.NoError(t, d.Dispatch(p.session, "/nick "+name))
	p.conn.reset()
	for _, o := range others {
		o.conn.reset()
	}
	return p
}
