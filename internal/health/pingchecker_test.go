package health

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type togglePinger struct{ fail atomic.Bool }

func (p *togglePinger) HealthPing(context.Context) error {
	if p.fail.Load() {
		return errors.New("unwritable")
	}
	return nil
}

func TestPingChecker_FollowsPinger(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := &togglePinger{}
	c := NewPingChecker("outbox", p, zerolog.Nop(), 0)
	require.Equal(t, "outbox", c.Name())
	require.False(t, c.IsHealthy())

	go c.Start(ctx, 10*time.Millisecond)
	require.Eventually(t, c.IsHealthy, time.Second, 5*time.Millisecond)

	p.fail.Store(true)
	require.Eventually(t, func() bool { return !c.IsHealthy() }, time.Second, 5*time.Millisecond)
}
