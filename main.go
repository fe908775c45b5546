package main

import (
	"context"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/System625/StellarCade/apps/go-resolver/internal/config"
	"github.com/System625/StellarCade/apps/go-resolver/internal/engine"
	"github.com/System625/StellarCade/apps/go-resolver/internal/events"
	"github.com/System625/StellarCade/apps/go-resolver/internal/httpserver"
	"github.com/System625/StellarCade/apps/go-resolver/internal/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	db, err := openDB(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	if err := store.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}
	if err := httpserver.EnsureAdmin(db, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		log.Warn().Err(err).Msg("admin user not seeded")
	}

	st := store.NewSQLite(db)
	reg := engine.NewRegistry(events.NewLog(log.Logger))

	// Rehydrate engine state from the last committed writes.
	snapshots, err := st.LoadAll(context.Background())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load puzzles")
	}
	if err := reg.Restore(snapshots); err != nil {
		log.Fatal().Err(err).Msg("failed to restore puzzles")
	}
	log.Info().Int("puzzles", len(snapshots)).Msg("state restored")

	srv := httpserver.New(reg, st, db, cfg)
	log.Info().Str("port", cfg.Port).Msg("starting go-resolver")
	if err := srv.Start(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
