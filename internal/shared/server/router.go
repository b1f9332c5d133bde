package server

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"resume-matcher/internal/shared/config"
	"resume-matcher/internal/shared/metrics"
	"resume-matcher/internal/shared/server/middleware"
	"resume-matcher/internal/shared/server/respond"
	"resume-matcher/internal/shared/storage/db"
)

// Rate limit groups.
const (
	GroupDefault  = "DEFAULT"
	GroupUpload   = "UPLOAD"
	GroupAnalysis = "ANALYSIS"
)

// RouteRegistrar attaches a feature's routes to a group.
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// RouterDeps carries everything NewRouter wires.
type RouterDeps struct {
	Config   config.Config
	Verifier middleware.TokenVerifier
	Limiter  *middleware.RateLimiter
	Gatherer prometheus.Gatherer
	DB       *sql.DB

	// Public routes are served without authentication.
	Public []RouteRegistrar
	// Protected routes require a bearer token.
	Protected []RouteRegistrar
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	cfg := deps.Config

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(cfg.IsDevLike()),
		middleware.CORS(cfg.CORSAllowOrigin),
	)

	if deps.Gatherer != nil {
		r.GET("/metrics", metrics.Handler(deps.Gatherer))
	}

	limit := middleware.RateLimit(middleware.RateLimitConfig{
		DefaultGroup: GroupDefault,
		GroupFor:     groupFor,
		Limiter:      deps.Limiter,
		Rules: map[string]middleware.RateLimitRule{
			GroupDefault:  {Rate: cfg.RateLimitRPS, Burst: cfg.RateLimitBurst},
			GroupUpload:   {Rate: cfg.UploadRateLimitRPS, Burst: cfg.UploadRateLimitBurst},
			GroupAnalysis: {Rate: cfg.AnalysisRateLimitRPS, Burst: cfg.AnalysisRateLimitBurst},
		},
	})

	api := r.Group("/api")
	api.GET("/health", health(deps.DB))

	public := api.Group("", limit)
	for _, reg := range deps.Public {
		reg.RegisterRoutes(public)
	}

	protected := api.Group("", middleware.Auth(deps.Verifier), limit)
	for _, reg := range deps.Protected {
		reg.RegisterRoutes(protected)
	}

	return r
}

func groupFor(c *gin.Context) string {
	switch c.FullPath() {
	case "/api/resume/upload":
		return GroupUpload
	case "/api/match/create":
		return GroupAnalysis
	default:
		return GroupDefault
	}
}

func health(database *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Healthy(c.Request.Context(), database); err != nil {
			respond.WithCause(c, err)
			respond.JSON(c, http.StatusServiceUnavailable, gin.H{"ok": false})
			return
		}
		respond.OK(c, gin.H{"ok": true})
	}
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
