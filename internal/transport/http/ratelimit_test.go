package http

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRateLimiterDisabled(t *testing.T) {
	r := newRateLimiter(0, time.Minute)
	for range 1000 {
		require.True(t, r.allow())
	}

	var nilLimiter *rateLimiter
	require.True(t, nilLimiter.allow())
}

func TestRateLimiterBlocksThenResets(t *testing.T) {
	req := require.New(t)
	r := newRateLimiter(2, 20*time.Millisecond)
	stop := make(chan struct{})
	defer close(stop)
	r.startReset(stop)

	req.True(r.allow())
	req.True(r.allow())
	req.False(r.allow())

	req.Eventually(r.allow, time.Second, 5*time.Millisecond)
}
