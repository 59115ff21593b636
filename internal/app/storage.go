package app

import (
	"fmt"

	"bandly-go/internal/config"
	"bandly-go/internal/db"
	"bandly-go/internal/domain/roster"
	boltstorage "bandly-go/internal/repository/bolt"
	filestorage "bandly-go/internal/repository/file"
	"bandly-go/internal/repository/inmemory"
	statestorage "bandly-go/internal/repository/postgres/state"
	sqlitestorage "bandly-go/internal/repository/sqlite"
	"bandly-go/pkg/logger"
)

// openStorage returns the driver selected by STORAGE_DRIVER together with the
// function that releases it.
func openStorage(cfg config.Config, log logger.Logger) (roster.Storage, func() error, error) {
	noClose := func() error { return nil }

	switch cfg.Storage.Driver {
	case config.StorageDriverMemory:
		log.Warn("app: using in-memory storage, data is lost on exit")
		return inmemory.NewStorage(), noClose, nil

	case config.StorageDriverFile:
		storage, err := filestorage.NewStorage(cfg.Storage.FileDir, log)
		if err != nil {
			return nil, nil, err
		}
		return storage, noClose, nil

	case config.StorageDriverSQLite:
		sqlDB, err := db.NewSQLite(cfg.Storage.SQLitePath, log)
		if err != nil {
			return nil, nil, err
		}
		return sqlitestorage.NewStorage(sqlDB), sqlDB.Close, nil

	case config.StorageDriverBolt:
		boltDB, err := db.NewBolt(cfg.Storage.BoltPath, cfg.Storage.BoltBucket, log)
		if err != nil {
			return nil, nil, err
		}
		return boltstorage.NewStorage(boltDB, cfg.Storage.BoltBucket), boltDB.Close, nil

	case config.StorageDriverPostgres:
		gormDB, err := db.NewPostgres(cfg.DB, log)
		if err != nil {
			return nil, nil, err
		}
		if err := db.Migrate(gormDB, log); err != nil {
			_ = db.ClosePostgres(gormDB)
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
		return statestorage.NewPostgres(gormDB), func() error { return db.ClosePostgres(gormDB) }, nil
	}

	return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}
