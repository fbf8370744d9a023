package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
	"unicode/utf8"

	"github.com/coder/websocket"

	"github.com/vovakirdan/wirechat-lobby/internal/proto"
)

// maxMessageLength mirrors the browser client: longer lines are not sent.
const maxMessageLength = 256

func main() {
	if err := run(); err != nil {
		log.Printf("ws_chat: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:8080/chat", "WebSocket address")
	name := flag.String("name", "", "display name to claim after connecting")
	flag.Parse()

	baseCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(baseCtx)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, *addr, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	fmt.Printf("Connected to %s\n", *addr)
	fmt.Println("Type messages or /commands and press Enter. Ctrl+C to exit.")

	if *name != "" {
		if err := conn.Write(ctx, websocket.MessageText, []byte("/nick "+*name)); err != nil {
			return fmt.Errorf("claim name: %w", err)
		}
	}

	go func() {
		defer cancel()
		readLoop(ctx, conn)
	}()

	writeLoop(ctx, conn)

	stop()
	cancel()
	_ = conn.Close(websocket.StatusNormalClosure, "bye")
	return nil
}

func readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			// Treat expected shutdowns quietly.
			if errors.Is(err, context.Canceled) {
				return
			}
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return
			}
			log.Printf("read error: %v", err)
			return
		}

		event, err := proto.Decode(data)
		if err != nil {
			log.Printf("decode event: %v", err)
			continue
		}
		fmt.Println(render(event))
	}
}

func render(event proto.Outbound) string {
	switch event.Type {
	case proto.TypeMessage:
		ts := time.UnixMilli(event.Message.Timestamp).Format(time.Kitchen)
		return fmt.Sprintf("[%s] %s: %s", ts, event.Message.Sender.Identity().DisplayName(), event.Message.Text)
	case proto.TypeConnect:
		return fmt.Sprintf("* %s joined", event.User.Identity().DisplayName())
	case proto.TypeDisconnect:
		return fmt.Sprintf("* %s left", event.User.Identity().DisplayName())
	case proto.TypeIdent:
		return fmt.Sprintf("* you are %s (%s)", event.User.Identity().DisplayName(), event.User.ID)
	case proto.TypeNotice:
		return "~ " + event.Text
	case proto.TypeError:
		return "! " + event.Text
	default:
		return "? " + event.Type
	}
}

func writeLoop(ctx context.Context, conn *websocket.Conn) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			text := strings.TrimSpace(line)
			if text == "" {
				continue
			}
			if utf8.RuneCountInString(text) >= maxMessageLength {
				fmt.Printf("! message too long (max %d characters)\n", maxMessageLength-1)
				continue
			}
			if err := conn.Write(ctx, websocket.MessageText, []byte(text)); err != nil {
				log.Printf("send error: %v", err)
				return
			}
		}
	}
}
