package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"trivia-admin-service/internal/app"
	"trivia-admin-service/internal/config"
	"trivia-admin-service/internal/infra/memory"
	pgstore "trivia-admin-service/internal/infra/postgres"
	redisstore "trivia-admin-service/internal/infra/redis"
	transport "trivia-admin-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the admin backend",
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

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	// Store selection mirrors what is configured: postgres when available,
	// redis as a lighter document store, memory for local runs.
	var participantStore app.ParticipantStore
	switch {
	case pool != nil:
		participantStore = pgstore.NewParticipantStore(pool)
	case redisClient != nil:
		participantStore = redisstore.NewParticipantStore(redisClient)
	default:
		participantStore = memory.NewParticipantStore()
	}

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	var quizStore app.QuizStore
	switch {
	case pool != nil && redisClient != nil:
		quizStore = redisstore.NewCachedQuizStore(redisClient, pgstore.NewQuizStore(pool), quizTTL)
	case pool != nil:
		quizStore = pgstore.NewQuizStore(pool)
	case redisClient != nil:
		quizStore = redisstore.NewQuizStore(redisClient)
	default:
		quizStore = memory.NewQuizStore(nil)
	}

	var sessionStore app.SessionStore
	if redisClient != nil {
		sessionStore = redisstore.NewSessionStore(redisClient)
	} else {
		sessionStore = memory.NewSessionStore()
	}

	adminUser := cfg.Admin.Username
	if adminUser == "" {
		adminUser = "admin"
	}
	passwordHash := cfg.Admin.PasswordHash
	if passwordHash == "" {
		log.Printf("admin.passwordHash not set, falling back to default credentials")
		generated, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		passwordHash = string(generated)
	}
	sessionTTL := config.TTLDuration(cfg.Admin.SessionTTL, 12*time.Hour)

	hub := app.NewHub()
	participants := app.NewParticipantService(participantStore, hub)
	quizzes := app.NewQuizService(quizStore, hub)
	auth := app.NewAuthService(sessionStore, adminUser, passwordHash, sessionTTL)

	handler := transport.NewHandler(participants, quizzes, auth, hub)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      handler.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting trivia admin service on :%s", finalPort)
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
