package factory

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/novendor/novendor-site/server/internal/config"
	"github.com/novendor/novendor-site/server/internal/localstate"
	storepkg "github.com/novendor/novendor-site/server/internal/store"
	"github.com/novendor/novendor-site/server/internal/store/filestore"
	storepg "github.com/novendor/novendor-site/server/internal/store/postgres"
	storesqlite "github.com/novendor/novendor-site/server/internal/store/sqlite"
)

// NewStore opens the booking store selected by cfg.StoreDriver.
// The returned store implements store.Closer for the database drivers.
func NewStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (storepkg.Store, error) {
	var (
		s   storepkg.Store
		err error
	)
	switch cfg.StoreDriver {
	case "", config.DriverFile:
		path := localstate.BookingsPath(cfg.DataDir)
		s, err = filestore.Open(path)
		log.Debug().Str("driver", config.DriverFile).Str("path", path).Msg("opening booking store")
	case config.DriverSQLite:
		s, err = storesqlite.New(ctx, cfg.SQLitePath)
		log.Debug().Str("driver", config.DriverSQLite).Str("path", cfg.SQLitePath).Msg("opening booking store")
	case config.DriverPostgres:
		if cfg.PostgresDSN == "" {
			return nil, fmt.Errorf("POSTGRES_DSN is required when STORE_DRIVER=postgres")
		}
		s, err = storepg.New(ctx, cfg.PostgresDSN)
		log.Debug().Str("driver", config.DriverPostgres).Msg("opening booking store")
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER: %s", cfg.StoreDriver)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}
