package http

import (
	"bytes"
	"sync"

	"github.com/rs/zerolog"
)

func testLogger() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}

// lockedBuffer collects log output written from connection goroutines.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func captureLogger() (*zerolog.Logger, *lockedBuffer) {
	out := &lockedBuffer{}
	logger := zerolog.New(out).Level(zerolog.DebugLevel)
	return &logger, out
}
