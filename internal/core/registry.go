package core

import (
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

// Registry is the shared table of live sessions and the only place fan-out
// happens. Mutations run under the write lock; lookups and broadcasts run
// under the read lock. A mutation that must also broadcast does both inside
// one Update so observers never see a broadcast that disagrees with the
// membership.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	log      *zerolog.Logger
}

// NewRegistry creates an empty registry. A nil logger disables logging.
func NewRegistry(logger *zerolog.Logger) *Registry {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Registry{
		sessions: make(map[string]*Session),
		log:      logger,
	}
}

// View is the read side of a registry critical section.
type View struct {
	r *Registry
}

// Tx is the write side of a registry critical section.
type Tx struct {
	View
}

// View runs fn while holding the read lock.
func (r *Registry) View(fn func(v *View)) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn(&View{r: r})
}

// Update runs fn while holding the write lock.
func (r *Registry) Update(fn func(tx *Tx)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(&Tx{View{r: r}})
}

// Len returns the number of registered sessions.
func (v *View) Len() int {
	return len(v.r.sessions)
}

// Identity returns a snapshot of the session's identity.
func (v *View) Identity(s *Session) Identity {
	return s.identity
}

// LookupByName finds the session that claimed name, ignoring case.
func (v *View) LookupByName(name string) (*Session, bool) {
	if name == "" {
		return nil, false
	}
	for _, s := range v.r.sessions {
		if s.identity.Named() && strings.EqualFold(s.identity.Name, name) {
			return s, true
		}
	}
	return nil, false
}

// ListClaimedNames returns all claimed names in ascending order.
func (v *View) ListClaimedNames() []string {
	named := lo.Filter(lo.Values(v.r.sessions), func(s *Session, _ int) bool {
		return s.identity.Named()
	})
	names := lo.Map(named, func(s *Session, _ int) string {
		return s.identity.Name
	})
	sort.Strings(names)
	return names
}

// Broadcast sends event to every session except the one with id excluding.
// An empty excluding id reaches everyone.
func (v *View) Broadcast(event Event, excluding string) {
	for id, s := range v.r.sessions {
		if excluding != "" && id == excluding {
			continue
		}
		s.Send(event)
	}
}

// Register adds a session under its id.
func (tx *Tx) Register(s *Session) {
	tx.r.sessions[s.ID()] = s
}

// Remove deletes and returns the session with id.
func (tx *Tx) Remove(id string) (*Session, bool) {
	s, ok := tx.r.sessions[id]
	if !ok {
		return nil, false
	}
	delete(tx.r.sessions, id)
	return s, true
}

// Rename sets the session's name and returns the identity it had before.
// It fails with ErrNameTaken when another session holds the name; the
// session's own name never collides with itself.
func (tx *Tx) Rename(s *Session, name string) (Identity, error) {
	if other, ok := tx.LookupByName(name); ok && other.ID() != s.ID() {
		return s.identity, chatError(ErrCodeNameTaken,
			"The name **"+name+"** is already in use.  \nTry again with a different name.")
	}
	previous := s.identity
	s.identity.Name = name
	return previous, nil
}

// Register adds a session.
func (r *Registry) Register(s *Session) {
	r.Update(func(tx *Tx) { tx.Register(s) })
}

// Remove deletes and returns the session with id.
func (r *Registry) Remove(id string) (s *Session, ok bool) {
	r.Update(func(tx *Tx) { s, ok = tx.Remove(id) })
	return s, ok
}

// LookupByName finds a session by claimed name, ignoring case.
func (r *Registry) LookupByName(name string) (s *Session, ok bool) {
	r.View(func(v *View) { s, ok = v.LookupByName(name) })
	return s, ok
}

// ListClaimedNames returns all claimed names in ascending order.
func (r *Registry) ListClaimedNames() (names []string) {
	r.View(func(v *View) { names = v.ListClaimedNames() })
	return names
}

// Broadcast sends event to all sessions except excluding.
func (r *Registry) Broadcast(event Event, excluding string) {
	r.View(func(v *View) { v.Broadcast(event, excluding) })
}

// Len returns the number of registered sessions.
func (r *Registry) Len() (n int) {
	r.View(func(v *View) { n = v.Len() })
	return n
}

// Join greets a new session and registers it in one write section, so the
// roster in the greeting matches the membership the session joins.
func (r *Registry) Join(s *Session, greeting func(v *View) []Event) {
	r.Update(func(tx *Tx) {
		if greeting != nil {
			s.SendAll(greeting(&tx.View)...)
		}
		tx.Register(s)
		r.log.Info().Str("session_id", s.ID()).Int("sessions", tx.Len()).Msg("session joined")
	})
}

// Leave removes a session. When it had claimed a name, everyone else gets a
// disconnect event from within the same write section. Anonymous sessions
// leave silently.
func (r *Registry) Leave(id string) (identity Identity, ok bool) {
	r.Update(func(tx *Tx) {
		var s *Session
		s, ok = tx.Remove(id)
		if !ok {
			return
		}
		identity = s.identity
		if identity.Named() {
			tx.Broadcast(DisconnectEvent(identity), "")
		}
		r.log.Info().
			Str("session_id", id).
			Str("name", identity.Name).
			Int("sessions", tx.Len()).
			Msg("session left")
	})
	return identity, ok
}
