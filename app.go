package main

import (
	"fmt"
	"log/slog"
	"net/http"

	"notes-api/auth"
	"notes-api/config"
	"notes-api/db"
	"notes-api/handlers"
	"notes-api/service"
)

type app struct {
	store    db.Store
	sessions *auth.Manager
	router   http.Handler
}

// openStore opens the configured store and seeds it when it is empty.
func openStore(cfg *config.Config, scheme auth.PasswordScheme, logger *slog.Logger) (db.Store, error) {
	store, err := db.Open(cfg.StoreDriver, cfg.DSN)
	if err != nil {
		return nil, err
	}
	if !cfg.Seed {
		return store, nil
	}

	seed, err := db.LoadSeed(cfg.SeedFile)
	if err != nil {
		store.Close()
		return nil, err
	}
	applied, err := db.ApplySeed(store, seed, scheme.Hash)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("apply seed: %w", err)
	}
	if applied {
		logger.Info("store seeded", "users", len(seed.Users), "notes", len(seed.Notes))
	}
	return store, nil
}

func newApp(cfg *config.Config, logger *slog.Logger) (*app, error) {
	scheme, err := auth.NewPasswordScheme(cfg.PasswordScheme)
	if err != nil {
		return nil, err
	}
	store, err := openStore(cfg, scheme, logger)
	if err != nil {
		return nil, err
	}

	sessions := auth.NewManager(auth.Options{
		Store:  store,
		Scheme: scheme,
		Secret: cfg.SessionSecret,
		TTL:    cfg.SessionTTL,
		Logger: logger,
	})
	svc := service.New(store, sessions, logger)

	return &app{
		store:    store,
		sessions: sessions,
		router:   handlers.NewRouter(handlers.New(svc, logger), sessions),
	}, nil
}
