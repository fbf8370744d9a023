package core

import (
	"strings"

	"github.com/rs/zerolog"
)

// Options configures a Dispatcher. Zero values fall back to the defaults.
type Options struct {
	Commands *CommandTable
	Policy   *NamePolicy
	// RosterEnabled wires the roster action to the name listing. When false
	// the roster commands answer with an explicit "not available" error.
	RosterEnabled bool
	Avatar        string
}

// Dispatcher interprets inbound text for a session. It is safe for
// concurrent use; each connection calls it from its own goroutine.
type Dispatcher struct {
	registry *Registry
	commands *CommandTable
	policy   *NamePolicy
	roster   bool
	avatar   string
	log      *zerolog.Logger
}

// NewDispatcher builds a dispatcher that drives reg.
func NewDispatcher(reg *Registry, opts Options, logger *zerolog.Logger) *Dispatcher {
	if opts.Commands == nil {
		opts.Commands = DefaultCommandTable()
	}
	if opts.Policy == nil {
		opts.Policy = DefaultNamePolicy()
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Dispatcher{
		registry: reg,
		commands: opts.Commands,
		policy:   opts.Policy,
		roster:   opts.RosterEnabled,
		avatar:   opts.Avatar,
		log:      logger,
	}
}

// Registry returns the registry the dispatcher drives.
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// Connect creates an anonymous session over conn, greets it and registers it.
func (d *Dispatcher) Connect(conn Conn) *Session {
	s := NewSession(conn, d.avatar)
	d.registry.Join(s, func(v *View) []Event {
		return []Event{
			IdentifyEvent(v.Identity(s)),
			NoticeEvent(d.welcome()),
			NoticeEvent(rosterText(v.ListClaimedNames(), "")),
		}
	})
	return s
}

// Disconnect deregisters the session and announces named users.
func (d *Dispatcher) Disconnect(s *Session) {
	d.registry.Leave(s.ID())
}

// Dispatch handles one inbound text frame. The returned error is the one
// already reported to the sender, if any; callers only log it.
func (d *Dispatcher) Dispatch(s *Session, text string) error {
	cmd, ok := d.commands.ParseCommand(text)
	if !ok {
		return d.say(s, text)
	}

	action, ok := d.commands.Lookup(cmd.Token)
	if !ok {
		return d.reject(s, chatError(ErrCodeInvalidCommand, "Oops! Invalid command: `"+cmd.Token+"`"))
	}

	switch action {
	case ActionClaim:
		if !cmd.HasArg {
			return d.reject(s, chatError(ErrCodeBadSyntax,
				"Oops! Invalid number of arguments.  \nSyntax:  \n`"+cmd.Token+" username`"))
		}
		return d.claim(s, cmd.Arg)
	case ActionRoster:
		return d.sendRoster(s, cmd.Token)
	case ActionHelp:
		s.Send(NoticeEvent(d.help()))
		return nil
	default:
		return d.reject(s, chatError(ErrCodeInvalidCommand, "Oops! Invalid command: `"+cmd.Token+"`"))
	}
}

func (d *Dispatcher) reject(s *Session, err *ChatError) error {
	s.Send(ErrorEventFrom(err))
	return err
}

func (d *Dispatcher) say(s *Session, text string) error {
	var err error
	d.registry.View(func(v *View) {
		sender := v.Identity(s)
		if !sender.Named() {
			err = d.reject(s, chatError(ErrCodeNotIdentified,
				"Oops! You need to select a username before joining the conversation.  \nTry using the `"+
					d.commands.Primary(ActionClaim)+"` command to select a unique username."))
			return
		}
		v.Broadcast(MessageEvent(NewChatMessage(sender, text)), s.ID())
	})
	return err
}

func (d *Dispatcher) claim(s *Session, name string) error {
	if err := d.policy.Validate(name); err != nil {
		s.Send(ErrorEventFrom(err))
		return err
	}

	var err error
	d.registry.Update(func(tx *Tx) {
		previous, renameErr := tx.Rename(s, name)
		if renameErr != nil {
			s.Send(ErrorEventFrom(renameErr))
			err = renameErr
			return
		}
		current := tx.Identity(s)

		switch {
		case !previous.Named():
			s.SendAll(
				NoticeEvent("You are now seen as **"+name+"**.  \nWelcome!"),
				IdentifyEvent(current),
			)
			tx.Broadcast(ConnectEvent(current), s.ID())
			d.log.Info().Str("session_id", s.ID()).Str("name", name).Msg("name claimed")
		case previous.Name == name:
			s.Send(NoticeEvent("You are already seen as **" + name + "**."))
		default:
			s.SendAll(
				NoticeEvent("You are now seen as **"+name+"**."),
				IdentifyEvent(current),
			)
			tx.Broadcast(NoticeEvent("~~"+previous.Name+"~~ is now **"+name+"**"), s.ID())
			d.log.Info().Str("session_id", s.ID()).Str("from", previous.Name).Str("to", name).Msg("name changed")
		}
	})
	return err
}

func (d *Dispatcher) sendRoster(s *Session, token string) error {
	if !d.roster {
		return d.reject(s, chatError(ErrCodeUnavailable, "Oops! The `"+token+"` command is not available."))
	}
	d.registry.View(func(v *View) {
		s.Send(NoticeEvent(rosterText(v.ListClaimedNames(), v.Identity(s).Name)))
	})
	return nil
}

func (d *Dispatcher) welcome() string {
	var b strings.Builder
	b.WriteString("Welcome!  \n  \n")
	b.WriteString("Use the `" + d.commands.Primary(ActionClaim) + "` command to select your username.")
	if d.roster {
		b.WriteString("  \nUse the `" + d.commands.Primary(ActionRoster) + "` command at any time to check who is online.")
	}
	return b.String()
}

func (d *Dispatcher) help() string {
	lines := []string{
		"Available commands:",
		strings.Join(d.commands.Tokens(ActionClaim), ", ") + " `username`: select or change your username",
	}
	if d.roster {
		lines = append(lines, strings.Join(d.commands.Tokens(ActionRoster), ", ")+": list who is online")
	}
	lines = append(lines, strings.Join(d.commands.Tokens(ActionHelp), ", ")+": show this help")
	return strings.Join(lines, "  \n")
}

// rosterText lists names, or "just you" when nobody besides self is named.
func rosterText(names []string, self string) string {
	others := 0
	for _, n := range names {
		if n != self {
			others++
		}
	}
	if others == 0 {
		return "Currently online: just you"
	}
	return "Currently online: " + strings.Join(names, ", ")
}
