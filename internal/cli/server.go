package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"quiz-session-engine/internal/app"
	"quiz-session-engine/internal/config"
	"quiz-session-engine/internal/domain"
	"quiz-session-engine/internal/infra/memory"
	pgstore "quiz-session-engine/internal/infra/postgres"
	"quiz-session-engine/internal/infra/rabbitmq"
	redisstore "quiz-session-engine/internal/infra/redis"
	"quiz-session-engine/internal/logger"
	"quiz-session-engine/internal/metrics"
	transport "quiz-session-engine/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz session server",
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
	secret, err := cfg.JWTSecret()
	if err != nil {
		return err
	}
	log, err := logger.New(cfg)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Postgres.URL != "" {
		if err := runMigrations(ctx, cfg, log); err != nil {
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
		defer redisClient.Close()
	}

	var loader memory.QuizLoader = memory.NewStaticQuizLoader(sampleQuizzes())
	var results app.ResultStore = memory.NewResultStore()
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		loader = pgstore.NewQuizLoader(pool)

		db := openDB(cfg)
		defer db.Close()
		results = pgstore.NewResultStore(db)
	}

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	var quizRepo app.QuizRepository
	if redisClient != nil {
		quizRepo = redisstore.NewQuizRepository(redisClient, loader, quizTTL)
	} else {
		quizRepo = memory.NewQuizRepository(loader, quizTTL)
	}

	var store app.SessionRepository
	if redisClient != nil {
		store = redisstore.NewSessionStore(redisClient, config.TTLDuration(cfg.Redis.TTL, 10*time.Minute))
	} else {
		store = memory.NewSessionStore()
	}

	var publisher app.ResultPublisher
	if cfg.RabbitMQ.URL != "" {
		queue := cfg.RabbitMQ.Queue
		if queue == "" {
			queue = rabbitmq.EventSessionFinalized
		}
		p, err := rabbitmq.Dial(cfg.RabbitMQ.URL, queue)
		if err != nil {
			return err
		}
		defer p.Close()
		publisher = p
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := app.NewRecorder(results, publisher, log, cfg.Session.RecorderQueue)

	manager := app.NewSessionManager(store,
		app.WithLogger(log),
		app.WithObserver(metrics.NewCollector(registry)),
		app.WithFinalizeHook(recorder.Record),
	)
	service := app.NewQuizService(manager, quizRepo, results,
		config.TTLDuration(cfg.Session.DefaultTimeLimit, 2*time.Hour))

	gin.SetMode(gin.ReleaseMode)
	router := transport.NewRouter(service, secret, log,
		promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	// no WriteTimeout: websocket connections stay open for the whole session
	server := &http.Server{
		Addr:        ":" + finalPort,
		Handler:     router,
		ReadTimeout: 15 * time.Second,
	}

	workerCtx, cancelWorkers := context.WithCancel(context.WithoutCancel(ctx))
	defer cancelWorkers()
	var workers errgroup.Group
	workers.Go(func() error {
		recorder.Run(workerCtx)
		return nil
	})
	workers.Go(func() error {
		manager.RunPruner(workerCtx,
			config.TTLDuration(cfg.Session.PruneInterval, time.Minute),
			config.TTLDuration(cfg.Session.Retention, 30*time.Minute))
		return nil
	})

	serveErr := make(chan error, 1)
	go func() {
		log.Info("starting quiz session engine", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		log.Info("shutting down server")
	case runErr = <-serveErr:
		log.Error("server failed", zap.Error(runErr))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	shutdownErr := server.Shutdown(shutdownCtx)

	// recorder drains queued results before exiting
	cancelWorkers()
	_ = workers.Wait()
	if runErr != nil {
		return runErr
	}
	return shutdownErr
}

// sampleQuizzes backs the service when no database is configured.
func sampleQuizzes() map[string]domain.Quiz {
	return map[string]domain.Quiz{
		"go-basics": {
			ID:               "go-basics",
			Title:            "Go basics",
			Subject:          "programming",
			Topic:            "go",
			Difficulty:       "easy",
			TimeLimitSeconds: 300,
			Questions: []domain.Question{
				{
					ID:           "q1",
					Prompt:       "Which keyword starts a goroutine?",
					Options:      []string{"go", "async", "spawn", "thread"},
					CorrectIndex: 0,
					Explanation:  "The go statement runs a function call in a new goroutine.",
					Source:       "https://go.dev/ref/spec#Go_statements",
				},
				{
					ID:           "q2",
					Prompt:       "What is len of a nil slice?",
					Options:      []string{"panic", "0", "-1"},
					CorrectIndex: 1,
					Explanation:  "A nil slice has length and capacity zero.",
				},
				{
					ID:           "q3",
					Prompt:       "Which statement runs a call when the surrounding function returns?",
					Options:      []string{"finally", "defer", "ensure"},
					CorrectIndex: 1,
				},
			},
		},
		"arithmetic": {
			ID:    "arithmetic",
			Title: "Arithmetic warm-up",
			Questions: []domain.Question{
				{ID: "q1", Prompt: "What is 2 + 2?", Options: []string{"3", "4", "5"}, CorrectIndex: 1},
				{ID: "q2", Prompt: "What is 7 * 6?", Options: []string{"42", "36"}, CorrectIndex: 0},
			},
		},
	}
}
