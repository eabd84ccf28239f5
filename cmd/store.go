package cmd

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"eventboard-backend/internal/config"
	"eventboard-backend/internal/handlers"
	"eventboard-backend/internal/repository"
	"eventboard-backend/internal/repository/memory"
	"eventboard-backend/internal/repository/mongodb"
	"eventboard-backend/internal/services"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

type store struct {
	backend string
	users   services.UserStore
	events  services.EventStore
	pinger  handlers.Pinger
	close   func()
}

// openStore connects to the backend named by the URI scheme
func openStore(ctx context.Context, cfg config.StoreConfig) (*store, error) {
	u, err := url.Parse(cfg.URI)
	if err != nil {
		return nil, fmt.Errorf("failed to parse store uri: %w", err)
	}

	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	switch u.Scheme {
	case "mongodb", "mongodb+srv":
		db, err := mongodb.Connect(connectCtx, cfg.URI, cfg.Database)
		if err != nil {
			return nil, err
		}
		return &store{
			backend: "mongodb",
			users:   db.Users(),
			events:  db.Events(),
			pinger:  db,
			close: func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := db.Close(ctx); err != nil {
					log.Error().Err(err).Msg("Failed to disconnect from mongodb")
				}
			},
		}, nil

	case "postgres", "postgresql":
		if err := repository.MigrateUp(cfg.URI); err != nil {
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		pool, err := pgxpool.New(connectCtx, cfg.URI)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := pool.Ping(connectCtx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}
		return &store{
			backend: "postgres",
			users:   repository.NewUserRepository(pool),
			events:  repository.NewEventRepository(pool),
			pinger:  pool,
			close:   pool.Close,
		}, nil

	case "memory":
		db := memory.New()
		log.Warn().Msg("Using in-memory store, data is lost on exit")
		return &store{
			backend: "memory",
			users:   db.Users(),
			events:  db.Events(),
			pinger:  db,
			close:   func() {},
		}, nil

	default:
		return nil, fmt.Errorf("unsupported store scheme %q", u.Scheme)
	}
}
