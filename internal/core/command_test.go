package core

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCommandTable_ParseCommand(t *testing.T) {
	table := DefaultCommandTable()

	tests := []struct {
		input string
		isCmd bool
		want  Command
	}{
		{input: "hello", isCmd: false},
		{input: "", isCmd: false},
		{input: "/nick", isCmd: true, want: Command{Token: "/nick"}},
		{input: "/NICK bob", isCmd: true, want: Command{Token: "/nick", Arg: "bob", HasArg: true}},
		{input: "/nick   bob smith", isCmd: true, want: Command{Token: "/nick", Arg: "bob smith", HasArg: true}},
		{input: "/nick\tbob", isCmd: true, want: Command{Token: "/nick", Arg: "bob", HasArg: true}},
		{input: "/nick ", isCmd: true, want: Command{Token: "/nick"}},
		{input: "/", isCmd: true, want: Command{Token: "/"}},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			cmd, ok := table.ParseCommand(tc.input)
			require.Equal(t, tc.isCmd, ok)
			require.Equal(t, tc.want, cmd)
		})
	}
}

func TestCommandTable_Lookup(t *testing.T) {
	req := require.New(t)
	table := DefaultCommandTable()

	for token, want := range map[string]Action{
		"/nick":   ActionClaim,
		"/ident":  ActionClaim,
		"/list":   ActionRoster,
		"/roster": ActionRoster,
		"/help":   ActionHelp,
	} {
		got, ok := table.Lookup(token)
		req.True(ok, token)
		req.Equal(want, got, token)
	}

	_, ok := table.Lookup("/dance")
	req.False(ok)
	_, ok = table.Lookup("nick")
	req.False(ok)

	req.Equal("/nick", table.Primary(ActionClaim))
	req.Equal([]string{"/ident", "/nick"}, table.Tokens(ActionClaim))
}

func TestNewCommandTable_Errors(t *testing.T) {
	req := require.New(t)

	_, err := NewCommandTable("/", map[string][]string{
		"claim":  {"nick"},
		"roster": {"nick"},
		"help":   {"help"},
	})
	req.Error(err)

	_, err = NewCommandTable("/", map[string][]string{
		"claim": {"nick"},
		"help":  {"help"},
	})
	req.Error(err, "roster action has no token")

	_, err = NewCommandTable("/", map[string][]string{
		"claim":  {"nick"},
		"roster": {"who"},
		"help":   {"help"},
		"dance":  {"dance"},
	})
	req.Error(err)

	table, err := NewCommandTable("!", map[string][]string{
		"claim":  {"!Name"},
		"roster": {"who"},
		"help":   {"?"},
	})
	req.NoError(err)
	action, ok := table.Lookup("!name")
	req.True(ok)
	req.Equal(ActionClaim, action)
	req.Equal("!who", table.Primary(ActionRoster))
}
