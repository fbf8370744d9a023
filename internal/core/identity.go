package core

import "github.com/google/uuid"

// DefaultAvatar is used when a session is created without an avatar.
const DefaultAvatar = "https://www.gravatar.com/avatar/00000000000000000000000000000000"

const anonymousName = "Anonymous"

// Identity is the display record tied to a connection's lifetime.
// ID never changes; Name is empty until the user claims one.
type Identity struct {
	ID     string
	Name   string
	Avatar string
}

// NewIdentity returns an anonymous identity with a fresh id.
func NewIdentity(avatar string) Identity {
	if avatar == "" {
		avatar = DefaultAvatar
	}
	return Identity{
		ID:     uuid.NewString(),
		Avatar: avatar,
	}
}

// Named reports whether the identity has claimed a name.
func (i Identity) Named() bool {
	return i.Name != ""
}

// DisplayName returns the claimed name or a placeholder for anonymous users.
func (i Identity) DisplayName() string {
	if i.Name == "" {
		return anonymousName
	}
	return i.Name
}
