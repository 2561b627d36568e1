// Package outbox drains mail queued by mail.OutboxTransport through a live
// transport once an SMTP relay is available.
package outbox

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/novendor/novendor-site/server/internal/mail"
)

// Subdirectories of the outbox dir that processed files are moved into.
const (
	SentDir   = "sent"
	FailedDir = "failed"
)

// Config controls batch size and polling cadence.
type Config struct {
	Dir       string        // outbox directory written by the booking service
	BatchSize int           // files sent per cycle
	Interval  time.Duration // poll interval
}

// Result counts the outcome of one cycle.
type Result struct {
	Sent     int
	Failed   int
	Poisoned int
}

// Relay sends queued outbox files and moves each delivered file to sent/.
type Relay struct {
	transport mail.Transport
	cfg       Config
	log       zerolog.Logger
}

func NewRelay(t mail.Transport, cfg Config, log zerolog.Logger) *Relay {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	return &Relay{transport: t, cfg: cfg, log: log}
}

// Run drains the outbox immediately and then on every interval until ctx is canceled.
func (r *Relay) Run(ctx context.Context) error {
	r.log.Info().Str("dir", r.cfg.Dir).Int("batch", r.cfg.BatchSize).Dur("interval", r.cfg.Interval).Msg("outbox relay starting")
	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	r.cycle(ctx)
	for {
		select {
		case <-ctx.Done():
			r.log.Info().Msg("outbox relay stopping")
			return ctx.Err()
		case <-ticker.C:
			r.cycle(ctx)
		}
	}
}

func (r *Relay) cycle(ctx context.Context) {
	res, err := r.ProcessOnce(ctx)
	if err != nil {
		// failed files stay queued; the next tick retries them
		r.log.Error().Err(err).Msg("outbox relay cycle")
		return
	}
	if res.Sent+res.Failed+res.Poisoned > 0 {
		r.log.Info().Int("sent", res.Sent).Int("failed", res.Failed).Int("poisoned", res.Poisoned).Msg("outbox relay cycle")
	}
}

// ProcessOnce sends up to BatchSize queued messages, oldest first. Files that
// fail to send stay in place; files that cannot be decoded move to failed/.
func (r *Relay) ProcessOnce(ctx context.Context) (Result, error) {
	var res Result
	files, err := mail.ListOutbox(r.cfg.Dir)
	if err != nil {
		return res, fmt.Errorf("list outbox: %w", err)
	}
	if len(files) > r.cfg.BatchSize {
		files = files[:r.cfg.BatchSize]
	}

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		rec, err := mail.ReadOutboxFile(path)
		if err != nil {
			// Poison pill: park it so it does not block the queue
			r.log.Error().Err(err).Str("file", filepath.Base(path)).Msg("undecodable outbox file")
			if e := r.move(path, FailedDir); e != nil {
				r.log.Error().Err(e).Str("file", filepath.Base(path)).Msg("park failed")
			}
			res.Poisoned++
			continue
		}
		if _, err := r.transport.Send(ctx, rec.Message); err != nil {
			r.markFailed(path, err)
			res.Failed++
			continue
		}
		if err := r.markDone(path); err != nil {
			// already delivered; leaving it queued would send it twice
			return res, fmt.Errorf("mark done %s: %w", filepath.Base(path), err)
		}
		res.Sent++
	}
	return res, nil
}

func (r *Relay) markDone(path string) error { return r.move(path, SentDir) }

func (r *Relay) markFailed(path string, cause error) {
	r.log.Warn().Err(cause).Str("file", filepath.Base(path)).Msg("outbox send failed; will retry")
}

func (r *Relay) move(path, sub string) error {
	dst := filepath.Join(filepath.Dir(path), sub)
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return err
	}
	return os.Rename(path, filepath.Join(dst, filepath.Base(path)))
}
