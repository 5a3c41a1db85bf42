package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/kinship/internal/middleware"
	"github.com/persistorai/kinship/internal/security"
	"github.com/persistorai/kinship/internal/ws"
)

// RouterDeps holds all dependencies needed by the router.
type RouterDeps struct {
	Log          *logrus.Logger
	Hub          *ws.Hub
	Health       HealthChecker
	People       PersonService
	Links        LinkService
	Kinship      KinshipService
	ExportImport ExportImportService
	Stats        StatsService
	Audit        AuditLog
	TenantLookup middleware.TenantLookup
	CORSOrigins  []string
	Version      string
	Engine       string
	MaxPairs     int
	RateLimit    float64
	RateBurst    int
}

// maxBodySize caps request bodies; imports are the largest payloads.
const maxBodySize = 10 << 20 // 10 MB

// setupMiddleware configures all middleware on the Gin engine.
func setupMiddleware(r *gin.Engine, deps *RouterDeps) {
	r.SetTrustedProxies(nil) //nolint:errcheck // nil always succeeds.
	r.Use(middleware.RequestID(deps.Log))
	r.Use(ginLogger(deps.Log))
	r.Use(gin.Recovery())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.MaxBodySize(maxBodySize))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     deps.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		MaxAge:           1 * time.Hour,
		AllowCredentials: false,
	}))
	r.Use(middleware.NewRateLimiter(deps.RateLimit, deps.RateBurst).Handler())
	r.Use(middleware.PrometheusMiddleware())
}

// registerRoutes sets up all API route handlers on the given router group.
func registerRoutes(ctx context.Context, api *gin.RouterGroup, deps *RouterDeps) {
	log := deps.Log

	var hub ClientCounter
	if deps.Hub != nil {
		hub = deps.Hub
	}

	health := NewHealthHandler(deps.Health, hub, log, deps.Version, deps.Engine)
	people := NewPersonHandler(deps.People, log)
	links := NewLinkHandler(deps.Links, log)
	rel := NewRelationshipHandler(deps.Kinship, log, deps.MaxPairs)
	exportImport := NewExportImportHandler(deps.ExportImport, log)
	stats := NewStatsHandler(deps.Stats, log)
	audit := NewAuditHandler(deps.Audit, log)

	// Health and readiness are unauthenticated.
	api.GET("/health", health.Liveness)
	api.GET("/ready", health.Readiness)

	// All other API routes require authentication.
	lookup := middleware.NewCachedTenantLookup(deps.TenantLookup)
	bfGuard := security.NewBruteForceGuard(log)
	api.Use(middleware.BruteForceMiddleware(bfGuard))
	api.Use(middleware.AuthMiddleware(lookup, log, bfGuard))

	// People.
	api.GET("/people", people.List)
	api.POST("/people", people.Create)
	api.GET("/people/:id", people.Get)
	api.PUT("/people/:id", people.Update)
	api.DELETE("/people/:id", people.Delete)
	api.GET("/people/:id/ancestors", rel.Ancestors)

	// Links.
	api.POST("/people/:id/parents", links.AddParent)
	api.DELETE("/people/:id/parents/:parent", links.RemoveParent)
	api.POST("/people/:id/partners", links.AddPartner)
	api.DELETE("/people/:id/partners/:partner", links.RemovePartner)

	// Relationships.
	api.GET("/relationship/:from/:to", rel.Get)
	api.GET("/relationship/:from/:to/chain", rel.Chain)
	api.POST("/relationship/batch", rel.Batch)

	// Export / import.
	api.GET("/export", exportImport.Export)
	api.POST("/import", exportImport.Import)
	api.POST("/import/validate", exportImport.Validate)

	// Stats.
	api.GET("/stats", stats.GetStats)

	// Audit.
	api.GET("/audit", audit.Query)
	api.DELETE("/audit", audit.Purge)

	// WebSocket endpoint.
	if deps.Hub != nil {
		api.GET("/ws", watchHandler(ctx, log, deps.Hub, deps.CORSOrigins, lookup))
	}
}

// NewRouter creates and configures the Gin engine with all middleware and routes.
// Prometheus metrics are served separately on the metrics listener.
func NewRouter(ctx context.Context, deps *RouterDeps) http.Handler {
	r := gin.New()
	setupMiddleware(r, deps)
	registerRoutes(ctx, r.Group("/api/v1"), deps)

	return r
}
