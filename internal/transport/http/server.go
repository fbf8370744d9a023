package http

import (
	"fmt"
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-lobby/internal/config"
	"github.com/vovakirdan/wirechat-lobby/internal/core"
	"github.com/vovakirdan/wirechat-lobby/internal/heartbeat"
)

// NewServer builds the HTTP server with the health and chat routes.
// The WebSocket route bypasses gin: the upgrade hijacks the raw
// ResponseWriter, which gin's writer refuses once headers are flushed.
func NewServer(dispatcher *core.Dispatcher, cfg config.Config, logger *zerolog.Logger) (*stdhttp.Server, error) {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	prober, err := heartbeat.New(heartbeat.Config{
		InitialDelay: cfg.Heartbeat.InitialDelay,
		Interval:     cfg.Heartbeat.Interval,
		Timeout:      cfg.Heartbeat.PingTimeout,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("init heartbeat: %w", err)
	}

	ws := NewWSHandler(dispatcher, prober, WSOptions{
		SendBuffer:         cfg.Chat.SendBuffer,
		RateLimitPerMinute: cfg.Chat.RateLimitPerMinute,
	}, logger)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), LoggerMiddleware(logger))
	router.GET("/health", healthHandler)

	mux := stdhttp.NewServeMux()
	mux.Handle("/chat", ws)
	mux.Handle("/", router)

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}, nil
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}
