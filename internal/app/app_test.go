package app

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/wirechat-lobby/internal/config"
	"github.com/vovakirdan/wirechat-lobby/internal/proto"
)

func nopLogger() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Chat.NamePattern = "("

	_, err := New(cfg, nopLogger())
	require.Error(t, err)
}

func TestAppRosterDisabled(t *testing.T) {
	req := require.New(t)
	cfg := config.Default()
	cfg.Chat.RosterEnabled = false

	application, err := New(cfg, nopLogger())
	req.NoError(err)

	ts := httptest.NewServer(application.Handler())
	t.Cleanup(ts.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, strings.Replace(ts.URL, "http", "ws", 1)+"/chat", nil)
	req.NoError(err)
	defer conn.Close(websocket.StatusNormalClosure, "done")

	req.NoError(conn.Write(ctx, websocket.MessageText, []byte("/roster")))

	for {
		_, data, err := conn.Read(ctx)
		req.NoError(err)
		ev, err := proto.Decode(data)
		req.NoError(err)
		if ev.Type == proto.TypeError {
			req.Equal("Oops! The `/roster` command is not available.", ev.Text)
			return
		}
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	cfg := config.Default()
	cfg.Addr = "127.0.0.1:0"

	application, err := New(cfg, nopLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- application.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("app did not stop")
	}
}
