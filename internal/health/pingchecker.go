package health

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// PingChecker caches the result of a HealthPinger probed on an interval.
type PingChecker struct {
	name         string
	pinger       HealthPinger
	healthy      atomic.Int32
	log          zerolog.Logger
	probeTimeout time.Duration
}

func NewPingChecker(name string, p HealthPinger, log zerolog.Logger, probeTimeout time.Duration) *PingChecker {
	if probeTimeout <= 0 {
		probeTimeout = 2 * time.Second
	}
	c := &PingChecker{name: name, pinger: p, log: log, probeTimeout: probeTimeout}
	c.healthy.Store(0)
	return c
}

func (c *PingChecker) Name() string { return c.name }

func (c *PingChecker) IsHealthy() bool { return c.healthy.Load() == 1 }

func (c *PingChecker) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	c.probe(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.probe(ctx)
		}
	}
}

func (c *PingChecker) probe(ctx context.Context) {
	pctx, cancel := context.WithTimeout(ctx, c.probeTimeout)
	defer cancel()
	if err := c.pinger.HealthPing(pctx); err != nil {
		c.log.Error().Err(err).Str("checker", c.name).Msg("health probe failed")
		c.healthy.Store(0)
		return
	}
	c.healthy.Store(1)
}
