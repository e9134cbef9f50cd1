// Package backend wires configuration, storage, providers and routes into
// a running HTTP server.
package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"talkie/server/backend/auth"
	"talkie/server/backend/completions"
	"talkie/server/backend/config"
	"talkie/server/backend/providers"
	"talkie/server/backend/routers"
	"talkie/server/backend/socket"
	"talkie/server/backend/storage"
	"talkie/server/backend/tasks"
	"talkie/server/database"
	"talkie/server/models"
)

// Server 聚合 Gin、配置与数据库。
// Server owns every long lived dependency and closes them on shutdown.
type Server struct {
	Engine *gin.Engine

	cfg       *config.Configuration
	db        *gorm.DB
	http      *http.Server
	scheduler *tasks.Scheduler
	logger    *slog.Logger
}

// OpenDatabase connects and migrates the configured store.
func OpenDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	db, err := database.Open(cfg.Driver, cfg.DSN, logger.Warn)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		database.Close(db)
		return nil, err
	}
	return db, nil
}

// NewServer builds the server from cfg.
func NewServer(cfg *config.Configuration, log *slog.Logger) (*Server, error) {
	db, err := OpenDatabase(cfg.Database)
	if err != nil {
		return nil, err
	}
	store, err := storage.NewFileStore(cfg.Storage.AudioDir)
	if err != nil {
		database.Close(db)
		return nil, err
	}

	opts, media, lister, err := buildProviders(cfg.Providers, log)
	if err != nil {
		database.Close(db)
		return nil, err
	}
	adapter := providers.NewAdapter(opts...)
	if p, err := providers.ParseProvider(cfg.Completions.DefaultProvider); err == nil && !adapter.Configured(p) {
		log.Warn("default provider is not configured, requests without a model will fail", "provider", p)
	}

	authSvc := auth.NewService(db, cfg.Auth.TokenTTL(), log.With("component", "auth"))
	relay := completions.NewRelay(adapter, completions.NewRecorder(db),
		completions.WithPersistPartial(cfg.Completions.PersistPartialOnFailure),
		completions.WithLogger(log.With("component", "relay")),
	)
	defaults := models.ModelRef{Name: cfg.Completions.DefaultModel, Provider: cfg.Completions.DefaultProvider}
	hub := socket.NewHub(authSvc, relay, defaults, log.With("component", "socket"))

	engine := routers.NewEngine(routers.Deps{
		DB:           db,
		Auth:         authSvc,
		Relay:        relay,
		Hub:          hub,
		Media:        media,
		Lister:       lister,
		Store:        store,
		SpeechFile:   cfg.Storage.SpeechFile,
		DefaultModel: defaults,
		StaticDir:    cfg.Server.StaticDir,
		Logger:       log,
	})

	scheduler := tasks.NewScheduler(log.With("component", "tasks"), tasks.Job{
		Name:     "purge-expired-tokens",
		Interval: cfg.Auth.PurgeInterval(),
		Run: func(ctx context.Context) error {
			n, err := authSvc.PurgeExpired(ctx)
			if n > 0 {
				log.Info("expired tokens purged", "count", n)
			}
			return err
		},
	})

	return &Server{
		Engine:    engine,
		cfg:       cfg,
		db:        db,
		scheduler: scheduler,
		logger:    log,
		http: &http.Server{
			Addr:         cfg.Server.Addr(),
			Handler:      engine,
			ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
			WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
		},
	}, nil
}

// buildProviders creates a client for every provider with enough settings.
// Ollama needs only a host; OpenAI and Anthropic need a key.
func buildProviders(cfg config.ProvidersConfig, log *slog.Logger) ([]providers.Option, providers.Media, providers.ModelLister, error) {
	var (
		opts   []providers.Option
		media  providers.Media
		lister providers.ModelLister
	)
	if cfg.OpenAI.APIKey != "" {
		oc := providers.NewOpenAIClient(cfg.OpenAI)
		opts = append(opts, providers.WithClient(providers.OpenAI, oc))
		media = oc
	} else {
		log.Warn("openai api key not set, openai completions and media are disabled")
	}
	if cfg.Ollama.Host != "" {
		oc, err := providers.NewOllamaClient(cfg.Ollama.Host, nil)
		if err != nil {
			return nil, nil, nil, err
		}
		opts = append(opts, providers.WithClient(providers.Ollama, oc))
		lister = oc
	}
	if cfg.Anthropic.APIKey != "" {
		opts = append(opts, providers.WithClient(providers.Anthropic, providers.NewAnthropicClient(cfg.Anthropic)))
	}
	return opts, media, lister, nil
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	if err := s.scheduler.Start(ctx); err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		s.scheduler.Stop()
		s.closeDB()
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	return s.Shutdown()
}

// Shutdown stops accepting requests, waits for in-flight ones, stops the
// scheduler and closes the database.
func (s *Server) Shutdown() error {
	timeout := time.Duration(s.cfg.Server.ShutdownTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.logger.Info("shutting down")
	err := s.http.Shutdown(ctx)
	s.scheduler.Stop()
	return errors.Join(err, s.closeDB())
}

func (s *Server) closeDB() error {
	if err := database.Close(s.db); err != nil {
		s.logger.Error("close database", "error", err)
		return err
	}
	return nil
}
