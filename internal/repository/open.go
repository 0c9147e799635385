package repository

import (
	"context"
	"fmt"

	"github.com/evacreport/backend/internal/config"
	"github.com/evacreport/backend/internal/db"
	"github.com/evacreport/backend/internal/logger"
	"github.com/evacreport/backend/internal/models"
	"github.com/evacreport/backend/internal/services"
)

// Store is implemented by every backend the server can run on.
type Store interface {
	services.CenterStore
	services.DraftRepository
	services.UserDirectory
	UpsertIncident(ctx context.Context, inc models.Incident) error
	CreateUser(ctx context.Context, u models.User) (models.User, error)
	Health(ctx context.Context) error
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*GormStore)(nil)
	_ Store = (*FirestoreStore)(nil)
)

// Open connects the store selected by STORE_DRIVER. The returned close
// function releases the underlying connection.
func Open(ctx context.Context, cfg *config.Config) (Store, func() error, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres, config.DriverSQLite:
		gdb, err := db.Connect(cfg)
		if err != nil {
			return nil, nil, err
		}
		if err := db.AutoMigrate(gdb); err != nil {
			_ = db.Close(gdb)
			return nil, nil, err
		}
		return NewGormStore(gdb), func() error { return db.Close(gdb) }, nil

	case config.DriverFirestore:
		client, err := NewFirestoreClient(ctx, cfg.FirebaseCreds, cfg.FirebaseProjectID)
		if err != nil {
			return nil, nil, err
		}
		store := NewFirestoreStore(client)
		logger.Info("Firestore client initialized", map[string]interface{}{"project": cfg.FirebaseProjectID})
		return store, store.Close, nil

	case config.DriverMemory:
		store := NewMemoryStore()
		if cfg.SeedFile != "" {
			data, err := LoadSeedFile(cfg.SeedFile)
			if err != nil {
				return nil, nil, err
			}
			if _, err := Apply(ctx, store, data, cfg.DemographicsSchema); err != nil {
				return nil, nil, err
			}
		}
		logger.Warn("Using in-memory store; data is lost on restart", nil)
		return store, func() error { return nil }, nil

	default:
		return nil, nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
}
