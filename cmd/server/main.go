package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Simplici0/spicebooks/internal/archive"
	"github.com/Simplici0/spicebooks/internal/books"
	"github.com/Simplici0/spicebooks/internal/config"
	"github.com/Simplici0/spicebooks/internal/db"
	"github.com/Simplici0/spicebooks/internal/export"
	"github.com/Simplici0/spicebooks/internal/logger"
	"github.com/Simplici0/spicebooks/internal/migrations"
	"github.com/Simplici0/spicebooks/internal/remote"
	"github.com/Simplici0/spicebooks/internal/scheduler"
	"github.com/Simplici0/spicebooks/internal/store"
)

type pinger interface {
	Ping(ctx context.Context) error
}

type server struct {
	books    *books.Service
	store    pinger
	validate *validator.Validate
	log      *zap.Logger
	now      func() time.Time
}

func newServer(svc *books.Service, st pinger, log *zap.Logger) *server {
	if log == nil {
		log = zap.NewNop()
	}
	return &server{
		books:    svc,
		store:    st,
		validate: validator.New(),
		log:      log,
		now:      time.Now,
	}
}

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.LogLevel, cfg.IsDev()))
	defer func() { _ = baseLogger.Sync() }()

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		baseLogger.Fatal("failed to open database", zap.Error(err))
	}
	defer database.Close()

	if err := migrations.Up(context.Background(), database); err != nil {
		baseLogger.Fatal("failed to run database migrations", zap.Error(err))
	}

	st := store.New(database)
	deps := books.Deps{
		Store:      st,
		Logger:     baseLogger,
		TaxPercent: cfg.TaxPercent,
	}
	if cfg.Remote.URL != "" {
		deps.Mirror = remote.NewClient(cfg.Remote)
		baseLogger.Info("hosted backend mirror enabled", zap.String("url", cfg.Remote.URL))
	} else {
		baseLogger.Warn("REMOTE_URL missing, writes stay local")
	}
	svc := books.New(deps)

	sched, closeArchive := newScheduler(cfg, svc, baseLogger)
	defer closeArchive()
	if sched != nil {
		if err := sched.Start(); err != nil {
			baseLogger.Fatal("failed to start scheduler", zap.Error(err))
		}
		defer sched.Stop()
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      newServer(svc, st, baseLogger.Named("http")).routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}

// newScheduler wires the monthly snapshot job. It returns nil when neither an
// export bucket nor an archive is configured. The returned func closes the archive connection.
func newScheduler(cfg config.Config, svc *books.Service, baseLogger *zap.Logger) (*scheduler.Scheduler, func()) {
	closeArchive := func() {}
	opts := scheduler.Options{
		Spec:     cfg.Reporting.SnapshotCron,
		Location: cfg.Location(),
		Source:   svc,
		Logger:   baseLogger.Named("scheduler"),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if cfg.Export.Bucket != "" {
		uploader, err := export.NewS3Uploader(ctx, cfg.Export.Region, cfg.Export.Bucket)
		if err != nil {
			baseLogger.Error("s3 export disabled", zap.Error(err))
		} else {
			opts.Uploader = uploader
		}
	}
	if cfg.MongoDB.URI != "" {
		arc, err := archive.NewMongoArchive(ctx, cfg.MongoDB.URI, cfg.MongoDB.DBName)
		if err != nil {
			baseLogger.Error("register archive disabled", zap.Error(err))
		} else {
			opts.Archive = arc
			closeArchive = func() {
				if err := arc.Close(context.Background()); err != nil {
					baseLogger.Error("failed to close mongodb connection", zap.Error(err))
				}
			}
		}
	}

	if opts.Uploader == nil && opts.Archive == nil {
		baseLogger.Warn("no export bucket or archive configured, monthly snapshot disabled")
		return nil, closeArchive
	}
	return scheduler.New(opts), closeArchive
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(s.log))

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/ingredients", s.handleIngredientsList)
		r.Post("/ingredients", s.handleIngredientsCreate)
		r.Put("/ingredients/{name}/price", s.handleIngredientPriceUpdate)

		r.Get("/recipes", s.handleRecipesList)
		r.Post("/recipes", s.handleRecipesCreate)
		r.Get("/recipes/{id}", s.handleRecipeDetail)
		r.Put("/recipes/{id}", s.handleRecipeUpdate)
		r.Post("/recipes/{id}/visibility", s.handleRecipeVisibilityToggle)
		r.Get("/recipes/{id}/cost", s.handleRecipeCost)
		r.Get("/price-list", s.handlePriceList)
		r.Get("/price-list.csv", s.handlePriceListCSV)

		r.Get("/registers/{register}/entries", s.handleEntriesList)
		r.Post("/registers/{register}/entries", s.handleEntriesCreate)
		r.Put("/registers/{register}/entries/{id}", s.handleEntryUpdate)
		r.Delete("/registers/{register}/entries/{id}", s.handleEntryDelete)
		r.Get("/registers/{register}/opening", s.handleOpeningSuggestion)
		r.Get("/registers/{register}/items", s.handleRegisterItems)
		r.Get("/registers/{register}/summary", s.handleRegisterSummary)

		r.Get("/orders", s.handleOrdersList)
		r.Post("/orders", s.handleOrdersCreate)
		r.Get("/orders/{id}/invoice", s.handleOrderInvoice)
	})

	r.Get("/registers/{register}/print", s.handleRegisterPrint)
	r.Get("/registers/{register}/export.csv", s.handleRegisterCSV)

	return r
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	if err := s.store.Ping(r.Context()); err != nil {
		s.log.Warn("store ping failed", zap.Error(err))
		status = "degraded"
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": status})
}
