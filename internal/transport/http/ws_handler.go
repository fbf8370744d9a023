package http

import (
	"context"
	"errors"
	"io"
	stdhttp "net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-lobby/internal/core"
	"github.com/vovakirdan/wirechat-lobby/internal/heartbeat"
	"github.com/vovakirdan/wirechat-lobby/internal/proto"
)

const rateLimitWindow = time.Minute

// WSOptions tunes per-connection behaviour.
type WSOptions struct {
	// SendBuffer is the outbound queue size; events beyond it are dropped.
	SendBuffer int
	// RateLimitPerMinute caps inbound frames; zero disables the limit.
	RateLimitPerMinute int
}

// WSHandler upgrades HTTP connections and bridges them to core sessions.
type WSHandler struct {
	dispatcher *core.Dispatcher
	prober     *heartbeat.Prober
	opts       WSOptions
	log        *zerolog.Logger
}

// NewWSHandler builds a new WebSocket handler. A nil prober disables heartbeats.
func NewWSHandler(dispatcher *core.Dispatcher, prober *heartbeat.Prober, opts WSOptions, logger *zerolog.Logger) stdhttp.Handler {
	if opts.SendBuffer <= 0 {
		opts.SendBuffer = 32
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &WSHandler{dispatcher: dispatcher, prober: prober, opts: opts, log: logger}
}

// wsConn is the core.Conn side of one socket. Send encodes and queues
// without blocking; the write loop drains the queue.
type wsConn struct {
	conn *websocket.Conn
	out  chan []byte
	done chan struct{}
	log  *zerolog.Logger
}

func newWSConn(conn *websocket.Conn, buffer int, logger *zerolog.Logger) *wsConn {
	return &wsConn{
		conn: conn,
		out:  make(chan []byte, buffer),
		done: make(chan struct{}),
		log:  logger,
	}
}

func (c *wsConn) Send(event core.Event) {
	data, err := proto.Encode(event)
	if err != nil {
		c.log.Warn().Err(err).Stringer("event", event.Kind).Msg("drop unencodable event")
		return
	}
	select {
	case <-c.done:
	case c.out <- data:
	default:
		// Drop if slow consumer.
		c.log.Debug().Stringer("event", event.Kind).Msg("outbound queue full, event dropped")
	}
}

// Ping sends a ping frame and waits for the pong. The frame payload is a
// counter chosen by the websocket library; token only ties the probe to
// its log lines.
func (c *wsConn) Ping(ctx context.Context, token string) error {
	c.log.Debug().Str("token", token).Msg("ping")
	return c.conn.Ping(ctx)
}

func (h *WSHandler) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	ctx := r.Context()

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "internal error")

	connLog := h.log.With().Str("remote", r.RemoteAddr).Logger()
	wc := newWSConn(conn, h.opts.SendBuffer, &connLog)
	session := h.dispatcher.Connect(wc)
	logger := connLog.With().Str("session_id", session.ID()).Logger()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	limiter := newRateLimiter(h.opts.RateLimitPerMinute, rateLimitWindow)
	limiter.startReset(ctx.Done())

	errCh := make(chan error, 3)
	go func() {
		errCh <- h.readLoop(ctx, conn, session, limiter, &logger)
	}()
	go func() {
		errCh <- h.writeLoop(ctx, wc, &logger)
	}()
	go func() {
		errCh <- h.heartbeat(ctx, wc)
	}()

	err = <-errCh
	cancel() // stop the other goroutines
	<-errCh
	<-errCh

	close(wc.done)
	h.dispatcher.Disconnect(session)

	status := websocket.StatusNormalClosure
	reason := "closing"
	if err != nil && !errors.Is(err, context.Canceled) {
		if errors.Is(err, io.EOF) {
			err = nil
		}
		if s := websocket.CloseStatus(err); s != -1 {
			status = s
		}
		if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
			err = nil
		}
		if err != nil {
			if status == websocket.StatusNormalClosure {
				status = websocket.StatusInternalError
			}
			reason = closeReason(err)
			logger.Warn().Err(err).Msg("ws connection closed with error")
		}
	}

	conn.Close(status, reason)
}

func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn, session *core.Session, limiter *rateLimiter, logger *zerolog.Logger) error {
	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			logger.Debug().Err(err).Msg("read ws frame")
			return err
		}
		if typ != websocket.MessageText {
			logger.Debug().Msg("ignoring binary frame")
			continue
		}
		if !limiter.allow() {
			session.Send(core.ErrorEventFrom(core.NewRateLimitError()))
			continue
		}

		text := strings.ToValidUTF8(string(data), "\uFFFD")
		if err := h.dispatcher.Dispatch(session, text); err != nil {
			logger.Debug().Err(err).Msg("command rejected")
		}
	}
}

func (h *WSHandler) writeLoop(ctx context.Context, wc *wsConn, logger *zerolog.Logger) error {
	for {
		select {
		case data := <-wc.out:
			if err := wc.conn.Write(ctx, websocket.MessageText, data); err != nil {
				logger.Debug().Err(err).Msg("write ws event")
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (h *WSHandler) heartbeat(ctx context.Context, wc *wsConn) error {
	if h.prober == nil {
		<-ctx.Done()
		return nil
	}
	if err := h.prober.Run(ctx, wc); err != nil {
		return err
	}
	// Run only returns nil once ctx is done.
	return ctx.Err()
}

// closeReason fits an error into the 123 bytes a close frame allows.
func closeReason(err error) string {
	const maxReason = 123
	reason := err.Error()
	if len(reason) <= maxReason {
		return reason
	}
	return strings.ToValidUTF8(reason[:maxReason], "")
}
