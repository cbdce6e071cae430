package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/sawpanic/tradegate/internal/admission"
	"github.com/sawpanic/tradegate/internal/history"
	pgstore "github.com/sawpanic/tradegate/internal/history/postgres"
	redisstore "github.com/sawpanic/tradegate/internal/history/redis"
	httpapi "github.com/sawpanic/tradegate/internal/interfaces/http"
)

const storeTimeout = 3 * time.Second

// runServe assembles the pipeline around the configured history store and
// serves the admission API until interrupted.
func runServe(cmd *cobra.Command, args []string) error {
	policiesPath, _ := cmd.Flags().GetString("policies")
	port, _ := cmd.Flags().GetInt("port")
	postgresDSN, _ := cmd.Flags().GetString("postgres-dsn")
	initSchema, _ := cmd.Flags().GetBool("init-schema")
	redisAddr, _ := cmd.Flags().GetString("redis-addr")
	redisPassword, _ := cmd.Flags().GetString("redis-password")
	redisDB, _ := cmd.Flags().GetInt("redis-db")

	if postgresDSN != "" && redisAddr != "" {
		return fmt.Errorf("choose one history store: --postgres-dsn or --redis-addr")
	}

	policies, err := loadPolicyRouter(policiesPath)
	if err != nil {
		return err
	}

	store, cleanup, err := buildHistoryStore(cmd.Context(), postgresDSN, initSchema, redisAddr, redisPassword, redisDB)
	if err != nil {
		return err
	}
	defer cleanup()

	breaker := history.NewBreakerReader(store, history.DefaultBreakerConfig())

	metrics := httpapi.NewMetricsRegistry()
	stream := httpapi.NewDecisionHub()
	service := admission.NewService(nil, breaker, store, policies, metrics, stream)

	handlers := httpapi.NewHandlers(service, version)
	handlers.AddHealthProbe("history_breaker", func() string {
		return breaker.State().String()
	})

	serverConfig := httpapi.DefaultServerConfig()
	if port > 0 {
		serverConfig.Port = port
	}
	server, err := httpapi.NewServer(serverConfig, handlers, metrics, stream)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}

// buildHistoryStore opens the configured trade history backend. With no
// backend configured an in-memory store serves neutral lookups.
func buildHistoryStore(ctx context.Context, postgresDSN string, initSchema bool, redisAddr, redisPassword string, redisDB int) (history.PerformanceStore, func(), error) {
	switch {
	case postgresDSN != "":
		db, err := sqlx.Open("postgres", postgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(30 * time.Minute)

		pingCtx, cancel := context.WithTimeout(ctx, storeTimeout)
		defer cancel()
		if err := db.PingContext(pingCtx); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("ping postgres: %w", err)
		}
		if initSchema {
			if _, err := db.ExecContext(pingCtx, pgstore.Schema); err != nil {
				db.Close()
				return nil, nil, fmt.Errorf("apply history schema: %w", err)
			}
			log.Info().Msg("History schema applied")
		}

		log.Info().Msg("Trade history store: postgres")
		return pgstore.NewStore(db, storeTimeout), func() { db.Close() }, nil

	case redisAddr != "":
		config := redisstore.DefaultConfig()
		config.Addr = redisAddr
		config.Password = redisPassword
		config.DB = redisDB
		store := redisstore.NewStore(config)

		pingCtx, cancel := context.WithTimeout(ctx, storeTimeout)
		defer cancel()
		if err := store.Ping(pingCtx); err != nil {
			store.Close()
			return nil, nil, fmt.Errorf("ping redis: %w", err)
		}

		log.Info().Msg("Trade history store: redis")
		return store, func() { store.Close() }, nil

	default:
		log.Info().Msg("Trade history store: in-memory")
		return history.NewMemoryStore(), func() {}, nil
	}
}
