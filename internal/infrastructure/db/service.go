package db

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/arkade-os/xreserve/internal/core/domain"
	"github.com/arkade-os/xreserve/internal/core/ports"
	badgerdb "github.com/arkade-os/xreserve/internal/infrastructure/db/badger"
	pgdb "github.com/arkade-os/xreserve/internal/infrastructure/db/postgres"
	sqlitedb "github.com/arkade-os/xreserve/internal/infrastructure/db/sqlite"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	sqlitemigrate "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	log "github.com/sirupsen/logrus"
)

//go:embed sqlite/migration/*
var migrations embed.FS

//go:embed postgres/migration/*
var pgMigration embed.FS

var (
	registryStoreTypes = map[string]func(...interface{}) (domain.AssetRegistryRepository, error){
		"badger":   badgerdb.NewAssetRegistryRepository,
		"sqlite":   sqlitedb.NewAssetRegistryRepository,
		"postgres": pgdb.NewAssetRegistryRepository,
	}
	trapStoreTypes = map[string]func(...interface{}) (domain.TrapRepository, error){
		"badger":   badgerdb.NewTrapRepository,
		"sqlite":   sqlitedb.NewTrapRepository,
		"postgres": pgdb.NewTrapRepository,
	}
)

const (
	sqliteDbFile = "sqlite.db"
)

type ServiceConfig struct {
	DataStoreType string

	// DataStoreConfig is (baseDir, badger.Logger) for badger, (baseDir) for
	// sqlite and (dsn, autoCreate) for postgres. An empty badger baseDir
	// keeps everything in memory.
	DataStoreConfig []interface{}
}

type service struct {
	registryStore domain.AssetRegistryRepository
	trapStore     domain.TrapRepository
}

func NewService(config ServiceConfig) (ports.RepoManager, error) {
	registryStoreFactory, ok := registryStoreTypes[config.DataStoreType]
	if !ok {
		return nil, fmt.Errorf("invalid data store type: %s", config.DataStoreType)
	}
	trapStoreFactory, ok := trapStoreTypes[config.DataStoreType]
	if !ok {
		return nil, fmt.Errorf("invalid data store type: %s", config.DataStoreType)
	}

	var registryStore domain.AssetRegistryRepository
	var trapStore domain.TrapRepository
	var err error

	switch config.DataStoreType {
	case "badger":
		registryStore, err = registryStoreFactory(config.DataStoreConfig...)
		if err != nil {
			return nil, fmt.Errorf("failed to open registry store: %s", err)
		}
		trapStore, err = trapStoreFactory(config.DataStoreConfig...)
		if err != nil {
			return nil, fmt.Errorf("failed to open trap store: %s", err)
		}

	case "postgres":
		if len(config.DataStoreConfig) != 2 {
			return nil, fmt.Errorf("invalid data store config for postgres")
		}

		dsn, ok := config.DataStoreConfig[0].(string)
		if !ok {
			return nil, fmt.Errorf("invalid DSN for postgres")
		}

		autoCreate, ok := config.DataStoreConfig[1].(bool)
		if !ok {
			return nil, fmt.Errorf("invalid autocreate flag for postgres")
		}

		db, err := pgdb.OpenDb(dsn, autoCreate)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres db: %s", err)
		}

		pgDriver, err := migratepg.WithInstance(db, &migratepg.Config{})
		if err != nil {
			return nil, fmt.Errorf("failed to init postgres migration driver: %s", err)
		}
		if err := runMigrations(pgMigration, "postgres/migration", "postgres", pgDriver); err != nil {
			return nil, err
		}

		if registryStore, trapStore, err = openSQLStores(
			db, registryStoreFactory, trapStoreFactory,
		); err != nil {
			return nil, err
		}

	case "sqlite":
		if len(config.DataStoreConfig) != 1 {
			return nil, fmt.Errorf("invalid data store config")
		}

		baseDir, ok := config.DataStoreConfig[0].(string)
		if !ok {
			return nil, fmt.Errorf("invalid base directory")
		}

		dbFile := filepath.Join(baseDir, sqliteDbFile)
		db, err := sqlitedb.OpenDb(dbFile)
		if err != nil {
			return nil, fmt.Errorf("failed to open db: %s", err)
		}

		driver, err := sqlitemigrate.WithInstance(db, &sqlitemigrate.Config{})
		if err != nil {
			return nil, fmt.Errorf("failed to init driver: %s", err)
		}
		if err := runMigrations(migrations, "sqlite/migration", "xreservedb", driver); err != nil {
			return nil, err
		}

		if registryStore, trapStore, err = openSQLStores(
			db, registryStoreFactory, trapStoreFactory,
		); err != nil {
			return nil, err
		}
	}

	log.Debugf("opened %s data store", config.DataStoreType)

	return &service{
		registryStore: registryStore,
		trapStore:     trapStore,
	}, nil
}

func (s *service) Registry() domain.AssetRegistryRepository {
	return s.registryStore
}

func (s *service) Traps() domain.TrapRepository {
	return s.trapStore
}

func (s *service) Close() {
	s.registryStore.Close()
	s.trapStore.Close()
}

func runMigrations(fs embed.FS, dir, dbName string, driver database.Driver) error {
	source, err := iofs.New(fs, dir)
	if err != nil {
		return fmt.Errorf("failed to embed migrations: %s", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, dbName, driver)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %s", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %s", err)
	}
	return nil
}

func openSQLStores(
	db *sql.DB,
	registryStoreFactory func(...interface{}) (domain.AssetRegistryRepository, error),
	trapStoreFactory func(...interface{}) (domain.TrapRepository, error),
) (domain.AssetRegistryRepository, domain.TrapRepository, error) {
	registryStore, err := registryStoreFactory(db)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open registry store: %s", err)
	}
	trapStore, err := trapStoreFactory(db)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open trap store: %s", err)
	}
	return registryStore, trapStore, nil
}
