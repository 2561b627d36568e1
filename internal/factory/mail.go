package factory

import (
	"github.com/rs/zerolog"

	"github.com/novendor/novendor-site/server/internal/config"
	"github.com/novendor/novendor-site/server/internal/mail"
)

// NewMailTransport returns an SMTP transport when both a relay host and a
// from address are configured, otherwise the local outbox. It is built once
// at startup and injected.
func NewMailTransport(cfg config.Mail, outboxDir string, log zerolog.Logger) mail.Transport {
	if cfg.Enabled() {
		log.Info().Str("host", cfg.Host).Int("port", cfg.Port).Bool("secure", cfg.Secure).Msg("mail transport: smtp")
		return mail.NewSMTPTransport(cfg)
	}
	log.Info().Str("dir", outboxDir).Msg("mail transport: outbox (no SMTP relay configured)")
	return mail.NewOutboxTransport(outboxDir)
}
