// Package proto holds the wire encoding of outgoing chat events.
package proto

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/vovakirdan/wirechat-lobby/internal/core"
)

// Discriminant values of the wire events.
const (
	TypeConnect    = "connect"
	TypeDisconnect = "disconnect"
	TypeMessage    = "message"
	TypeIdent      = "ident"
	TypeNotice     = "notice"
	TypeError      = "error"
)

// User is the wire form of an identity. Name is null for anonymous users.
type User struct {
	ID     string  `json:"id"`
	Name   *string `json:"name"`
	Avatar string  `json:"avatar"`
}

// Message is the wire form of a chat message.
type Message struct {
	Sender    User   `json:"sender"`
	Timestamp int64  `json:"timestamp"` // milliseconds since the epoch
	Text      string `json:"text"`
}

type userEnvelope struct {
	Type string `json:"type"`
	User User   `json:"user"`
}

type messageEnvelope struct {
	Type    string  `json:"type"`
	Message Message `json:"message"`
}

type textEnvelope struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Encode serializes an event to its wire form.
func Encode(event core.Event) ([]byte, error) {
	switch event.Kind {
	case core.EventConnect:
		return json.Marshal(userEnvelope{Type: TypeConnect, User: userFromIdentity(event.User)})
	case core.EventDisconnect:
		return json.Marshal(userEnvelope{Type: TypeDisconnect, User: userFromIdentity(event.User)})
	case core.EventIdentify:
		return json.Marshal(userEnvelope{Type: TypeIdent, User: userFromIdentity(event.User)})
	case core.EventMessage:
		return json.Marshal(messageEnvelope{Type: TypeMessage, Message: messageFromChat(event.Message)})
	case core.EventNotice:
		return json.Marshal(textEnvelope{Type: TypeNotice, Message: event.Text})
	case core.EventError:
		return json.Marshal(textEnvelope{Type: TypeError, Message: event.Text})
	default:
		return nil, fmt.Errorf("encode: unknown event kind %d", event.Kind)
	}
}

func userFromIdentity(id core.Identity) User {
	u := User{ID: id.ID, Avatar: id.Avatar}
	if id.Named() {
		name := id.Name
		u.Name = &name
	}
	return u
}

func messageFromChat(msg core.ChatMessage) Message {
	return Message{
		Sender:    userFromIdentity(msg.Sender),
		Timestamp: msg.Timestamp.UnixMilli(),
		Text:      msg.Text,
	}
}

// Outbound is a decoded wire event. User is set for identity events,
// Message for chat messages and Text for notices and errors.
type Outbound struct {
	Type    string
	User    *User
	Message *Message
	Text    string
}

// Decode parses a wire event.
func Decode(data []byte) (Outbound, error) {
	var raw struct {
		Type    string          `json:"type"`
		User    *User           `json:"user"`
		Message json.RawMessage `json:"message"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Outbound{}, fmt.Errorf("decode envelope: %w", err)
	}

	out := Outbound{Type: raw.Type}
	switch raw.Type {
	case TypeConnect, TypeDisconnect, TypeIdent:
		if raw.User == nil {
			return Outbound{}, fmt.Errorf("decode %s: missing user", raw.Type)
		}
		out.User = raw.User
	case TypeMessage:
		var msg Message
		if err := json.Unmarshal(raw.Message, &msg); err != nil {
			return Outbound{}, fmt.Errorf("decode message: %w", err)
		}
		out.Message = &msg
	case TypeNotice, TypeError:
		if err := json.Unmarshal(raw.Message, &out.Text); err != nil {
			return Outbound{}, fmt.Errorf("decode %s: %w", raw.Type, err)
		}
	default:
		return Outbound{}, fmt.Errorf("decode: unknown event type %q", raw.Type)
	}
	return out, nil
}

// Event converts a decoded wire event back into a core event.
func (o Outbound) Event() (core.Event, error) {
	switch o.Type {
	case TypeConnect:
		return core.ConnectEvent(o.User.Identity()), nil
	case TypeDisconnect:
		return core.DisconnectEvent(o.User.Identity()), nil
	case TypeIdent:
		return core.IdentifyEvent(o.User.Identity()), nil
	case TypeMessage:
		return core.MessageEvent(core.ChatMessage{
			Sender:    o.Message.Sender.Identity(),
			Timestamp: time.UnixMilli(o.Message.Timestamp),
			Text:      o.Message.Text,
		}), nil
	case TypeNotice:
		return core.NoticeEvent(o.Text), nil
	case TypeError:
		return core.ErrorEvent(o.Text), nil
	default:
		return core.Event{}, fmt.Errorf("unknown event type %q", o.Type)
	}
}

// Identity converts the wire user to a core identity.
func (u User) Identity() core.Identity {
	id := core.Identity{ID: u.ID, Avatar: u.Avatar}
	if u.Name != nil {
		id.Name = *u.Name
	}
	return id
}
