package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/your-org/reunite/internal/api/handlers"
	"github.com/your-org/reunite/internal/api/ws"
	"github.com/your-org/reunite/internal/auth"
	"github.com/your-org/reunite/internal/ingest"
	"github.com/your-org/reunite/internal/intake"
	"github.com/your-org/reunite/internal/queue"
	"github.com/your-org/reunite/internal/resolution"
	"github.com/your-org/reunite/internal/storage"
)

type RouterConfig struct {
	APIKey     string
	DB         *storage.PostgresStore
	MinIO      *storage.MinIOStore
	Producer   *queue.Producer
	Hub        *ws.Hub
	Intake     *intake.Service
	Ingest     *ingest.Service
	Resolution *resolution.Engine
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(LoggingMiddleware())
	r.Use(cors.Default())

	// System endpoints (no auth)
	systemH := handlers.NewSystemHandler(cfg.DB, cfg.MinIO, cfg.Producer)
	r.GET("/healthz", systemH.Healthz)
	r.GET("/readyz", systemH.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/v1")

	caseH := handlers.NewCaseHandler(cfg.DB, cfg.MinIO, cfg.Intake)
	matchH := handlers.NewMatchHandler(cfg.Ingest)
	notificationH := handlers.NewNotificationHandler(cfg.DB, cfg.MinIO)
	resolutionH := handlers.NewResolutionHandler(cfg.Resolution)

	// Public surface: intake form, recognizer reports, mobile app.
	v1.POST("/cases", caseH.Create)
	v1.GET("/cases", caseH.List)
	v1.GET("/cases/:id", caseH.Get)
	v1.GET("/cases/:id/images/:imageId", caseH.Image)
	v1.GET("/cases/:id/snapshot", caseH.Snapshot)
	v1.POST("/matches", matchH.Report)
	v1.POST("/cases/:id/confirm", resolutionH.Confirm)
	v1.POST("/cases/:id/finalize", resolutionH.Finalize)
	v1.GET("/notifications/:id/snapshot", notificationH.Snapshot)

	// Dashboard surface, gated by the shared key.
	dash := v1.Group("")
	dash.Use(auth.APIKeyMiddleware(cfg.APIKey))
	dash.GET("/ws", cfg.Hub.HandleWS)
	dash.GET("/notifications", notificationH.List)
	dash.POST("/cases/:id/review", resolutionH.Review)

	overviewH := handlers.NewOverviewHandler(cfg.DB)
	dash.GET("/overview", overviewH.Get)

	return r
}
