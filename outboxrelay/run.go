// Package outboxrelay wires the outbox relay process: it drains queued
// booking emails through the configured SMTP relay.
package outboxrelay

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/novendor/novendor-site/server/internal/config"
	"github.com/novendor/novendor-site/server/internal/logger"
	"github.com/novendor/novendor-site/server/internal/mail"
	"github.com/novendor/novendor-site/server/internal/outbox"
)

// Run starts the outbox relay and blocks until shutdown or error.
func Run() error {
	log := logger.New("outbox-relay")

	cfg, err := config.New()
	if err != nil {
		log.Error().Err(err).Msg("config")
		return err
	}
	mcfg := cfg.Mail()
	if !mcfg.Enabled() {
		err := fmt.Errorf("outbox relay needs SMTP_HOST and SMTP_FROM")
		log.Error().Err(err).Msg("config")
		return err
	}

	r := outbox.NewRelay(mail.NewSMTPTransport(mcfg), outbox.Config{
		Dir:       cfg.OutboxDir,
		BatchSize: cfg.RelayBatchSize,
		Interval:  time.Duration(cfg.RelayIntervalSeconds) * time.Second,
	}, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := r.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("outbox relay exit")
		return err
	}
	return nil
}
