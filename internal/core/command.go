package core

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
)

// Action is what a slash-command does, independent of its spelling.
type Action int

const (
	// ActionClaim sets or changes the session's display name.
	ActionClaim Action = iota + 1
	// ActionRoster lists the claimed names.
	ActionRoster
	// ActionHelp lists the available commands.
	ActionHelp
)

// Action names used in configuration.
const (
	ActionNameClaim  = "claim"
	ActionNameRoster = "roster"
	ActionNameHelp   = "help"
)

var actionNames = map[string]Action{
	ActionNameClaim:  ActionClaim,
	ActionNameRoster: ActionRoster,
	ActionNameHelp:   ActionHelp,
}

// DefaultCommandPrefix marks an inbound line as a command.
const DefaultCommandPrefix = "/"

// DefaultCommands maps each action to its tokens. The first token is the
// one shown to users.
func DefaultCommands() map[string][]string {
	return map[string][]string{
		ActionNameClaim:  {"nick", "ident"},
		ActionNameRoster: {"list", "roster"},
		ActionNameHelp:   {"help"},
	}
}

// CommandTable resolves command tokens to actions.
type CommandTable struct {
	prefix  string
	actions map[string]Action
	primary map[Action]string
}

// NewCommandTable builds a table from action name to tokens. Tokens are
// matched case-insensitively and given without the prefix. Every action
// needs at least one token.
func NewCommandTable(prefix string, commands map[string][]string) (*CommandTable, error) {
	if prefix == "" {
		prefix = DefaultCommandPrefix
	}
	t := &CommandTable{
		prefix:  prefix,
		actions: make(map[string]Action),
		primary: make(map[Action]string),
	}

	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		action, ok := actionNames[strings.ToLower(name)]
		if !ok {
			return nil, fmt.Errorf("unknown command action %q", name)
		}
		for _, token := range commands[name] {
			token = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(token), prefix))
			if token == "" || strings.IndexFunc(token, unicode.IsSpace) >= 0 {
				return nil, fmt.Errorf("invalid token %q for action %q", token, name)
			}
			if prev, dup := t.actions[token]; dup && prev != action {
				return nil, fmt.Errorf("token %q bound to more than one action", token)
			}
			t.actions[token] = action
			if _, ok := t.primary[action]; !ok {
				t.primary[action] = prefix + token
			}
		}
	}

	for name, action := range actionNames {
		if _, ok := t.primary[action]; !ok {
			return nil, fmt.Errorf("no command configured for action %q", name)
		}
	}
	return t, nil
}

// DefaultCommandTable returns the table built from DefaultCommands.
func DefaultCommandTable() *CommandTable {
	t, err := NewCommandTable(DefaultCommandPrefix, DefaultCommands())
	if err != nil {
		panic(err)
	}
	return t
}

// Prefix returns the command prefix.
func (t *CommandTable) Prefix() string {
	return t.prefix
}

// Lookup resolves a lower-cased token that still carries the prefix.
func (t *CommandTable) Lookup(token string) (Action, bool) {
	if !strings.HasPrefix(token, t.prefix) {
		return 0, false
	}
	action, ok := t.actions[strings.TrimPrefix(token, t.prefix)]
	return action, ok
}

// Primary returns the user-facing spelling of an action, prefix included.
func (t *CommandTable) Primary(action Action) string {
	return t.primary[action]
}

// Tokens returns every spelling of an action, prefix included, sorted.
func (t *CommandTable) Tokens(action Action) []string {
	var tokens []string
	for token, a := range t.actions {
		if a == action {
			tokens = append(tokens, t.prefix+token)
		}
	}
	sort.Strings(tokens)
	return tokens
}

// Command is a parsed command line.
type Command struct {
	Token  string // lower-cased, prefix included
	Arg    string
	HasArg bool
}

// ParseCommand splits a line that starts with the prefix into its token and
// at most one argument. The split happens on the first whitespace run only,
// so the argument may contain spaces.
func (t *CommandTable) ParseCommand(text string) (Command, bool) {
	if !strings.HasPrefix(text, t.prefix) {
		return Command{}, false
	}
	var head, rest string
	if i := strings.IndexFunc(text, unicode.IsSpace); i >= 0 {
		head, rest = text[:i], text[i:]
	} else {
		head, rest = text, ""
	}
	rest = strings.TrimLeftFunc(rest, unicode.IsSpace)
	return Command{
		Token:  strings.ToLower(head),
		Arg:    rest,
		HasArg: rest != "",
	}, true
}
