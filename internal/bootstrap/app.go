package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"resume-matcher/internal/analyzer"
	"resume-matcher/internal/classifier"
	"resume-matcher/internal/events"
	"resume-matcher/internal/extract"
	"resume-matcher/internal/matches"
	"resume-matcher/internal/resumes"
	"resume-matcher/internal/shared/auth"
	"resume-matcher/internal/shared/config"
	"resume-matcher/internal/shared/metrics"
	"resume-matcher/internal/shared/server"
	"resume-matcher/internal/shared/server/middleware"
	"resume-matcher/internal/shared/storage/blob"
	"resume-matcher/internal/shared/storage/db"
	"resume-matcher/internal/shared/telemetry"
	"resume-matcher/internal/users"
)

// App holds shared dependencies and the wired router.
type App struct {
	Config    config.Config
	Router    *gin.Engine
	DB        *sql.DB
	Store     blob.Store
	Publisher events.Publisher
	Registry  *prometheus.Registry
	Metrics   *metrics.Collector
	Limiter   *middleware.RateLimiter
	Issuer    *auth.Issuer

	UsersRepo   users.Repo
	ResumesRepo resumes.Repo
	MatchesRepo matches.Repo

	UsersService   *users.Service
	ResumesService *resumes.Service
	MatchesService *matches.Service
}

// Overrides replaces dependencies that would otherwise be built from config.
type Overrides struct {
	Analyzer  analyzer.Analyzer
	Publisher events.Publisher
	Store     blob.Store
}

// Build prepares dependencies and the router from cfg.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	return BuildWith(ctx, cfg, Overrides{})
}

// BuildWith is Build with selected dependencies supplied by the caller.
func BuildWith(ctx context.Context, cfg config.Config, ov Overrides) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}

	issuer, err := auth.NewIssuer(cfg.JWTSecret, cfg.Env == "production")
	if err != nil {
		return nil, err
	}

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store := ov.Store
	if store == nil {
		store, err = ReadStore(ctx, cfg, sqlDB)
		if err != nil {
			return nil, err
		}
	}

	pub := ov.Publisher
	if pub == nil {
		pub, err = buildPublisher(cfg)
		if err != nil {
			return nil, err
		}
	}

	an := ov.Analyzer
	if an == nil {
		an, err = buildAnalyzer(ctx, cfg)
		if err != nil {
			return nil, err
		}
	}

	rules := classifier.DefaultRuleSet()
	if cfg.ClassifierRulesFile != "" {
		rules, err = classifier.LoadRuleSet(cfg.ClassifierRulesFile)
		if err != nil {
			return nil, fmt.Errorf("load classifier rules: %w", err)
		}
	}
	cl, err := classifier.New(rules)
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(reg)

	app := &App{
		Config:    cfg,
		DB:        sqlDB,
		Store:     store,
		Publisher: pub,
		Registry:  reg,
		Metrics:   collector,
		Limiter:   middleware.NewRateLimiter(nil),
		Issuer:    issuer,
	}

	if sqlDB != nil {
		app.UsersRepo = &users.PGRepo{DB: sqlDB}
		app.ResumesRepo = &resumes.PGRepo{DB: sqlDB}
		app.MatchesRepo = &matches.PGRepo{DB: sqlDB}
	} else {
		app.UsersRepo = users.NewMemoryRepo()
		app.ResumesRepo = resumes.NewMemoryRepo()
		app.MatchesRepo = matches.NewMemoryRepo()
	}

	pipeline := resumes.NewPipeline(store, app.ResumesRepo, extract.New(), cl, pub, collector)
	app.UsersService = users.NewService(app.UsersRepo, issuer)
	app.ResumesService = resumes.NewService(app.ResumesRepo, store, pipeline)
	app.MatchesService = matches.NewService(app.MatchesRepo, app.ResumesRepo, an, pub, collector)

	exposeDetails := cfg.IsDevLike()
	app.Router = server.NewRouter(server.RouterDeps{
		Config:   cfg,
		Verifier: issuer,
		Limiter:  app.Limiter,
		Gatherer: reg,
		DB:       sqlDB,
		Public: []server.RouteRegistrar{
			users.NewHandler(app.UsersService),
		},
		Protected: []server.RouteRegistrar{
			resumes.NewHandler(app.ResumesService, exposeDetails),
			matches.NewHandler(app.MatchesService, exposeDetails),
		},
	})

	return app, nil
}

// Close releases the database and broker connections.
func (a *App) Close() error {
	var errs []error
	if closer, ok := a.Publisher.(interface{ Close() error }); ok {
		errs = append(errs, closer.Close())
	}
	if a.DB != nil {
		errs = append(errs, a.DB.Close())
	}
	return errors.Join(errs...)
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.db.memory", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, errors.New("DATABASE_URL is required")
	}

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
	if err != nil {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.db.memory", map[string]any{"reason": "connect failed", "err": err.Error()})
			return nil, nil
		}
		return nil, err
	}
	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return sqlDB, nil
}

func buildPublisher(cfg config.Config) (events.Publisher, error) {
	if strings.TrimSpace(cfg.AMQPURL) == "" {
		return events.Nop{}, nil
	}
	pub, err := events.DialAMQP(cfg.AMQPURL, cfg.AMQPExchange)
	if err != nil {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.events.disabled", map[string]any{"err": err.Error()})
			return events.Nop{}, nil
		}
		return nil, fmt.Errorf("connect amqp: %w", err)
	}
	return pub, nil
}

func buildAnalyzer(ctx context.Context, cfg config.Config) (analyzer.Analyzer, error) {
	provider, err := analyzer.NewProvider(ctx, analyzer.Settings{
		Provider:        cfg.AnalyzerProvider,
		Model:           cfg.AnalyzerModel,
		Timeout:         cfg.AnalyzerTimeout,
		AnthropicAPIKey: cfg.AnthropicAPIKey,
		OpenAIAPIKey:    cfg.OpenAIAPIKey,
		OpenAIBaseURL:   cfg.OpenAIBaseURL,
		GeminiAPIKey:    cfg.GeminiAPIKey,
	})
	if err != nil {
		if !cfg.IsDevLike() {
			return nil, fmt.Errorf("analyzer: %w", err)
		}
		telemetry.Warn("bootstrap.analyzer.placeholder", map[string]any{"provider": cfg.AnalyzerProvider, "err": err.Error()})
		provider = analyzer.Placeholder{}
	}
	return analyzer.New(provider), nil
}
