package config

import (
	"fmt"
	"net/mail"
	"path/filepath"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"

	"github.com/novendor/novendor-site/server/internal/localstate"
)

// Store drivers accepted by STORE_DRIVER.
const (
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Last-resort defaults applied by Booking when nothing else is configured.
const (
	DefaultOrganizerName  = "NoVendor"
	DefaultOrganizerEmail = "hello@novendor.com"
	DefaultUIDDomain      = "novendor.com"
	DefaultSummary        = "NoVendor intro call"
	DefaultLocation       = "Video call"
)

// Config holds the booking service configuration.
// Variables are read without a prefix so the names match the deployment env files.
type Config struct {
	HTTPPort int `envconfig:"HTTP_PORT" default:"8080"`

	// Storage
	DataDir     string `envconfig:"DATA_DIR" default:""`
	StoreDriver string `envconfig:"STORE_DRIVER" default:"file"`
	SQLitePath  string `envconfig:"SQLITE_PATH" default:""`
	PostgresDSN string `envconfig:"POSTGRES_DSN" default:""`
	OutboxDir   string `envconfig:"OUTBOX_DIR" default:""`

	// Mail relay
	SMTPHost   string `envconfig:"SMTP_HOST" default:""`
	SMTPPort   int    `envconfig:"SMTP_PORT" default:"587"`
	SMTPSecure bool   `envconfig:"SMTP_SECURE" default:"false"`
	SMTPUser   string `envconfig:"SMTP_USER" default:""`
	SMTPPass   string `envconfig:"SMTP_PASS" default:""`
	SMTPFrom   string `envconfig:"SMTP_FROM" default:""`

	// Admin resend; empty disables the endpoint
	AdminToken string `envconfig:"BOOKING_ADMIN_TOKEN" default:""`

	// Organizer and invite presentation
	OrganizerName  string `envconfig:"BOOKING_ORGANIZER_NAME" default:""`
	OrganizerEmail string `envconfig:"BOOKING_ORGANIZER_EMAIL" default:""`
	Summary        string `envconfig:"BOOKING_SUMMARY" default:""`
	Location       string `envconfig:"BOOKING_LOCATION" default:""`
	JoinLink       string `envconfig:"BOOKING_JOIN_LINK" default:""`
	SiteURL        string `envconfig:"SITE_URL" default:""`
	UIDDomain      string `envconfig:"BOOKING_UID_DOMAIN" default:""`
	InternalEmail  string `envconfig:"BOOKING_INTERNAL_EMAIL" default:""`

	// Health
	HealthIntervalSeconds     int `envconfig:"HEALTH_INTERVAL_SECONDS" default:"30"`
	HealthProbeTimeoutSeconds int `envconfig:"HEALTH_PROBE_TIMEOUT_SECONDS" default:"2"`

	// Outbox relay
	RelayIntervalSeconds int `envconfig:"OUTBOX_RELAY_INTERVAL_SECONDS" default:"30"`
	RelayBatchSize       int `envconfig:"OUTBOX_RELAY_BATCH_SIZE" default:"50"`
}

// Booking is the resolved organizer and presentation configuration handed to
// the lifecycle service by value.
type Booking struct {
	UIDDomain      string
	OrganizerName  string
	OrganizerEmail string
	Summary        string
	Location       string
	JoinLink       string
	InternalEmail  string
}

// Mail is the resolved mail relay configuration.
type Mail struct {
	Host     string
	Port     int
	Secure   bool
	Username string
	Password string
	From     string
}

// Enabled reports whether a live relay can be built: both host and from are required.
func (m Mail) Enabled() bool { return m.Host != "" && m.From != "" }

// ResolveDefaults validates the store driver, port and health timings and derives file locations.
func (c *Config) ResolveDefaults() error {
	c.StoreDriver = strings.ToLower(strings.TrimSpace(c.StoreDriver))
	if c.StoreDriver == "" {
		c.StoreDriver = DriverFile
	}
	switch c.StoreDriver {
	case DriverFile, DriverSQLite:
	case DriverPostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("STORE_DRIVER=postgres requires POSTGRES_DSN")
		}
	default:
		return fmt.Errorf("unsupported STORE_DRIVER: %s", c.StoreDriver)
	}

	if c.DataDir == "" {
		dir, err := localstate.DataDir()
		if err != nil {
			return fmt.Errorf("resolve data dir: %w", err)
		}
		c.DataDir = dir
	}
	if c.SQLitePath == "" {
		c.SQLitePath = filepath.Join(c.DataDir, localstate.SQLiteFilename)
	}
	if c.OutboxDir == "" {
		c.OutboxDir = filepath.Join(c.DataDir, localstate.OutboxDirName)
	}
	if c.HTTPPort <= 0 {
		return fmt.Errorf("invalid HTTP_PORT: %d", c.HTTPPort)
	}
	if c.HealthIntervalSeconds <= 0 {
		return fmt.Errorf("invalid HEALTH_INTERVAL_SECONDS: %d", c.HealthIntervalSeconds)
	}
	if c.HealthProbeTimeoutSeconds <= 0 {
		return fmt.Errorf("invalid HEALTH_PROBE_TIMEOUT_SECONDS: %d", c.HealthProbeTimeoutSeconds)
	}
	return nil
}

// Booking applies every organizer fallback rule in one place.
func (c *Config) Booking() Booking {
	b := Booking{
		OrganizerName:  firstNonEmpty(c.OrganizerName, DefaultOrganizerName),
		OrganizerEmail: firstNonEmpty(c.OrganizerEmail, addressOf(c.SMTPFrom), DefaultOrganizerEmail),
		Summary:        firstNonEmpty(c.Summary, DefaultSummary),
		InternalEmail:  strings.TrimSpace(c.InternalEmail),
	}

	b.JoinLink = strings.TrimSpace(c.JoinLink)
	if b.JoinLink == "" {
		if site := strings.TrimRight(strings.TrimSpace(c.SiteURL), "/"); site != "" {
			b.JoinLink = site + "/meet"
		}
	}

	b.Location = firstNonEmpty(c.Location, b.JoinLink, DefaultLocation)
	b.UIDDomain = firstNonEmpty(c.UIDDomain, domainOf(b.OrganizerEmail), DefaultUIDDomain)
	return b
}

// Mail returns the relay settings.
func (c *Config) Mail() Mail {
	return Mail{
		Host:     strings.TrimSpace(c.SMTPHost),
		Port:     c.SMTPPort,
		Secure:   c.SMTPSecure,
		Username: c.SMTPUser,
		Password: c.SMTPPass,
		From:     strings.TrimSpace(c.SMTPFrom),
	}
}

// New parses the process environment and resolves defaults.
func New() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}
	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}

	log.Info().
		Str("store_driver", cfg.StoreDriver).
		Str("data_dir", cfg.DataDir).
		Str("outbox_dir", cfg.OutboxDir).
		Int("port", cfg.HTTPPort).
		Bool("smtp_enabled", cfg.Mail().Enabled()).
		Bool("admin_enabled", cfg.AdminToken != "").
		Msg("Configuration loaded")

	return &cfg, nil
}

// GetHTTPAddr returns the HTTP server address
func (c *Config) GetHTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// addressOf accepts either a bare address or "Name <addr>".
func addressOf(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	if a, err := mail.ParseAddress(v); err == nil {
		return a.Address
	}
	return ""
}

func domainOf(email string) string {
	i := strings.LastIndex(email, "@")
	if i < 0 || i == len(email)-1 {
		return ""
	}
	return strings.ToLower(email[i+1:])
}
