package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/wiratama/courtside/external/jobqueue"
	"github.com/wiratama/courtside/internal/auth"
	"github.com/wiratama/courtside/internal/config"
	"github.com/wiratama/courtside/internal/domain/registrant"
	"github.com/wiratama/courtside/internal/domain/session"
	cacherepo "github.com/wiratama/courtside/internal/infrastructure/repository/cache"
	"github.com/wiratama/courtside/internal/infrastructure/repository/memory"
	"github.com/wiratama/courtside/internal/infrastructure/repository/postgres"
	"github.com/wiratama/courtside/internal/interfaces/httpapi"
	basecache "github.com/wiratama/courtside/internal/platform/cache"
	idgen "github.com/wiratama/courtside/internal/platform/id"
	"github.com/wiratama/courtside/internal/platform/logging"
	"github.com/wiratama/courtside/internal/platform/resilience"
	"github.com/wiratama/courtside/internal/platform/sessionlock"
	"github.com/wiratama/courtside/internal/usecase"
)

// App holds the wired HTTP server plus the background pieces main controls.
type App struct {
	Server   *http.Server
	Rollover *usecase.RolloverService

	cfg       config.Config
	logger    *logging.Logger
	db        *sqlx.DB
	scheduler *jobqueue.QStashPublisher
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	var (
		db             *sqlx.DB
		sessionRepo    session.Repository
		registrantRepo registrant.Repository
	)

	switch cfg.StorageBackend {
	case config.StorageMemory:
		memSessions := memory.NewSessionRepository()
		memRegistrants := memory.NewRegistrantRepository()
		if cfg.DemoSeedEnabled {
			memory.Seed(memSessions, memRegistrants, cfg.SessionWeekday)
			logger.Info("demo data seeded", "weekday", cfg.SessionWeekday.String())
		}
		sessionRepo = memSessions
		registrantRepo = memRegistrants
	case config.StoragePostgres:
		opened, err := openDB(ctx, cfg)
		if err != nil {
			return nil, err
		}
		db = opened
		sessionRepo = postgres.NewSessionRepository(db)
		registrantRepo = postgres.NewRegistrantRepository(db)
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.StorageBackend)
	}

	if cfg.CacheEnabled {
		sessionRepo = cacherepo.NewSessionRepository(sessionRepo, basecache.NewStore(cfg.CacheTTL))
	}

	locks := sessionlock.New()
	ids := idgen.NewRandomGenerator()

	sessionSvc := usecase.NewSessionService(sessionRepo, registrantRepo, locks, ids, cfg.SessionWeekday, logger)
	rosterSvc := usecase.NewRosterService(sessionRepo, registrantRepo, locks, ids, logger)
	rolloverSvc := usecase.NewRolloverService(sessionRepo, ids, cfg.SessionWeekday, logger)

	authSvc := auth.NewService(auth.Config{
		UserPassword:  cfg.UserPassword,
		AdminPassword: cfg.AdminPassword,
		SigningSecret: cfg.AuthSigningSecret,
		UserTokenTTL:  cfg.UserTokenTTL,
		AdminTokenTTL: cfg.AdminTokenTTL,
	})

	handler := httpapi.NewHandler(sessionSvc, rosterSvc, rolloverSvc, authSvc, logger)
	router := httpapi.NewRouter(handler, authSvc, logger, cfg.CORSAllowedOrigins, cfg.InternalJobToken)

	var scheduler *jobqueue.QStashPublisher
	if cfg.QStashEnabled {
		scheduler = jobqueue.NewQStashPublisher(jobqueue.QStashPublisherConfig{
			BaseURL:          cfg.QStashBaseURL,
			Token:            cfg.QStashToken,
			TargetBaseURL:    cfg.QStashTargetBaseURL,
			Retries:          cfg.QStashRetries,
			InternalJobToken: cfg.InternalJobToken,
			CircuitBreaker:   resilience.DefaultCircuitBreakerConfig(),
		}, logger)
	}

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return &App{
		Server:    server,
		Rollover:  rolloverSvc,
		cfg:       cfg,
		logger:    logger,
		db:        db,
		scheduler: scheduler,
	}, nil
}

// RunBackgroundJobs drives the weekly archive and rollover until ctx ends.
// When QStash is configured it also keeps a delayed callback scheduled as a
// second trigger; the job itself is idempotent, so double firing is safe.
func (a *App) RunBackgroundJobs(ctx context.Context) {
	if !a.cfg.RolloverTickerEnabled {
		a.logger.Info("rollover ticker disabled", "reason", "JOB_ROLLOVER_TICKER_ENABLED=false")
		return
	}

	a.runRolloverOnce(ctx)

	ticker := time.NewTicker(a.cfg.RolloverTickerInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.runRolloverOnce(ctx)
		}
	}
}

func (a *App) runRolloverOnce(ctx context.Context) {
	result, err := a.Rollover.Run(ctx)
	if err != nil {
		a.logger.ErrorContext(ctx, "rollover run failed", "error", err)
		return
	}
	if result.ArchivedCount > 0 || result.Created {
		a.logger.InfoContext(ctx, "rollover run completed",
			"archived_count", result.ArchivedCount,
			"ensured_date", result.EnsuredDate,
			"created", result.Created,
		)
	}

	if a.scheduler == nil {
		return
	}
	now := time.Now().UTC()
	if err := a.scheduler.ScheduleRollover(ctx, nextRolloverTime(now, a.cfg.SessionWeekday), now); err != nil {
		a.logger.WarnContext(ctx, "schedule rollover callback failed", "error", err)
	}
}

// nextRolloverTime is the morning after the upcoming session day, so the
// callback fires once the session date has passed.
func nextRolloverTime(now time.Time, weekday time.Weekday) time.Time {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	for day.Weekday() != weekday {
		day = day.AddDate(0, 0, 1)
	}
	return day.AddDate(0, 0, 1).Add(3 * time.Hour)
}

func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	if err := a.db.Close(); err != nil {
		return fmt.Errorf("close db: %w", err)
	}
	return nil
}
