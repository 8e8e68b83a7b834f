package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cyberquiz-service/internal/app"
	"cyberquiz-service/internal/auth"
	"cyberquiz-service/internal/bank"
	"cyberquiz-service/internal/config"
	"cyberquiz-service/internal/domain"
	"cyberquiz-service/internal/infra/kv"
	"cyberquiz-service/internal/infra/memory"
	pgseed "cyberquiz-service/internal/infra/postgres"
	redisstore "cyberquiz-service/internal/infra/redis"
	"cyberquiz-service/internal/results"
	transport "cyberquiz-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	store, err := buildStore(cfg)
	if err != nil {
		return err
	}

	seed, cleanup, err := buildSeedLoader(ctx, cfg)
	if err != nil {
		return err
	}
	if cleanup != nil {
		defer cleanup()
	}

	questionBank := bank.New(store, seed)
	resultStore := results.NewStore(store)
	gate := auth.NewGate(store)
	service := app.NewService(store, questionBank, resultStore)
	verifier := auth.NewClientWithPolicy(
		cfg.Auth.URL,
		cfg.Auth.CheckURL,
		config.Duration(cfg.Auth.PollInterval, 2*time.Second),
		config.Duration(cfg.Auth.Timeout, 5*time.Minute),
	)

	countdown := app.NewCountdown(func(ctx context.Context) domain.Schedule {
		return service.Schedule(ctx)
	})
	countdownCtx, stopCountdown := context.WithCancel(ctx)
	defer stopCountdown()
	go countdown.Run(countdownCtx)

	handler := transport.NewHandler(service, questionBank, resultStore, gate, verifier)
	wsHandler := transport.NewWSHandler(countdown)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws/availability", wsHandler.ServeWS)
	handler.Register(mux)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting quiz service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// buildStore picks Redis when configured, otherwise the in-memory store.
func buildStore(cfg config.Config) (kv.Store, error) {
	if cfg.Redis.Addr == "" {
		return memory.NewStore(), nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	return redisstore.NewStore(client, cfg.Redis.KeyPrefix, 0), nil
}

// buildSeedLoader prefers the Postgres-managed seed bank when configured and
// falls back to the embedded one.
func buildSeedLoader(ctx context.Context, cfg config.Config) (bank.SeedLoader, func(), error) {
	if cfg.Postgres.URL == "" {
		return bank.EmbeddedSeed{}, nil, nil
	}
	pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
	if err != nil {
		return nil, nil, err
	}
	return pgseed.NewSeedLoader(pool, cfg.Postgres.BankID), pool.Close, nil
}
