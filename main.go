// main.go
//
// Entry point for the tenpair server: loads configuration, opens and
// migrates the SQLite database, picks the session store and serves HTTP.

package main

import (
	"context"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/tenpair/internal/config"
	"github.com/robalobadob/tenpair/internal/database"
	"github.com/robalobadob/tenpair/internal/httpserver"
	"github.com/robalobadob/tenpair/internal/store"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if !cfg.Production {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database")
	}
	defer db.Close()
	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	st, err := newStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("store", cfg.Store).Msg("session store")
	}

	srv := httpserver.New(st, db, cfg)
	log.Info().Str("port", cfg.Port).Str("store", cfg.Store).Msg("starting tenpair server")
	if err := srv.Start(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

// newStore returns the session store named by cfg.Store.
func newStore(cfg config.Config) (store.Store, error) {
	if cfg.Store != "redis" {
		return store.NewMemoryStore(cfg.SessionTTL), nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return store.NewRedisStore(rdb, cfg.SessionTTL), nil
}
