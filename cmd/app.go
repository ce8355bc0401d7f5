package cmd

import (
	"fmt"
	"os"

	"access-sync/core/cloudbeds"
	"access-sync/core/config"
	"access-sync/core/credentials"
	"access-sync/core/database"
	"access-sync/core/property"
	"access-sync/core/storage"
	"access-sync/feature/commoncodes"
	"access-sync/feature/locks"
	"access-sync/feature/roomblocks"
	"access-sync/feature/roomcodes"
	"access-sync/feature/stays"
	"access-sync/feature/sync"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// models lists every table the service owns.
var models = []any{
	&locks.Lock{},
	&stays.Stay{},
	&commoncodes.CommonCode{},
	&roomblocks.RoomBlockCode{},
}

// app holds the wired components shared by the commands.
type app struct {
	db       *gorm.DB
	registry *locks.Registry
	blocks   *roomblocks.Service
	runner   *sync.Runner
}

// openDB connects to the record store and migrates its tables.
func openDB(cfg *config.Config) (*gorm.DB, error) {
	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db, models...); err != nil {
		return nil, err
	}
	return db, nil
}

// buildApp wires the reconciliation engine from configuration.
func buildApp(cfg *config.Config, logg *zap.Logger) (*app, error) {
	rules, err := property.NewRules(cfg.Property)
	if err != nil {
		return nil, fmt.Errorf("property rules: %w", err)
	}

	db, err := openDB(cfg)
	if err != nil {
		return nil, err
	}

	var archive stays.Archiver
	if cfg.Storage.Enabled {
		client, err := storage.NewClient(cfg.Storage)
		if err != nil {
			return nil, err
		}
		archive = storage.NewArchive(client, cfg.Storage.Bucket, cfg.Storage.Region)
		logg.Info("Snapshot archive enabled", zap.String("bucket", cfg.Storage.Bucket))
	}

	registry := locks.NewRegistry(db)
	resolver := credentials.NewEnvResolver(cfg.Seam, os.LookupEnv)
	source := cloudbeds.NewClient(cfg.Cloudbeds)
	stayStore := stays.NewStore(db)

	blocks, err := roomblocks.NewService(
		roomblocks.NewStore(db), registry, resolver, source, rules, cfg.RoomBlock,
		logg.Named("roomblocks"),
	)
	if err != nil {
		return nil, fmt.Errorf("room blocks: %w", err)
	}

	runner := sync.NewRunner(
		stays.NewBuilder(source, stayStore, registry, archive, logg.Named("stays")),
		roomcodes.NewReconciler(stayStore, registry, rules, logg.Named("roomcodes")),
		commoncodes.NewReconciler(commoncodes.NewStore(db), registry, rules, logg.Named("commoncodes")),
		blocks,
		resolver,
		rules,
		logg.Named("sync"),
	)

	return &app{db: db, registry: registry, blocks: blocks, runner: runner}, nil
}
