package store

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-chat-profiles/internal/config"
	"github.com/MKhiriev/go-chat-profiles/internal/logger"
)

// Storages bundles the record store selected by configuration together with
// the resources it owns.
type Storages struct {
	RecordStore RecordStore

	db *DB
}

// NewStorages opens the backend named by cfg.Driver. SQL backends apply the
// embedded migrations when cfg.DB.AutoMigrate is set.
func NewStorages(ctx context.Context, cfg config.Storage, log *logger.Logger) (*Storages, error) {
	switch cfg.Driver {
	case config.DriverPostgres, config.DriverSQLite:
		connect := NewConnectPostgres
		if cfg.Driver == config.DriverSQLite {
			connect = NewConnectSQLite
		}

		db, err := connect(ctx, cfg.DB, log)
		if err != nil {
			return nil, err
		}
		if cfg.DB.AutoMigrate {
			applied, err := db.Migrate(ctx)
			if err != nil {
				log.Err(err).Str("func", "NewStorages").Msg("error applying migrations")
				db.Close()
				return nil, err
			}
			log.Info().Str("func", "NewStorages").Int("applied", applied).Msg("migrations applied")
		}

		return &Storages{RecordStore: NewSQLRecordStore(db, log), db: db}, nil
	case config.DriverREST:
		return &Storages{RecordStore: NewRESTRecordStore(cfg.REST, log)}, nil
	case config.DriverMemory:
		log.Warn().Str("func", "NewStorages").Msg("using in-memory storage, data will not survive a restart")
		return &Storages{RecordStore: NewMemoryStore()}, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
}

// Close releases the database connection, if any.
func (s *Storages) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
