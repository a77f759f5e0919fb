package api

import (
	"github.com/gin-gonic/gin"

	"github.com/timmy/contentfactory/internal/api/handler"
	"github.com/timmy/contentfactory/internal/api/middleware"
	"github.com/timmy/contentfactory/internal/service"
)

// Services are the pipeline operations exposed over HTTP.
type Services struct {
	Scheduler *service.ProductionScheduler
	Runner    *service.ProductionRunner
	Scanner   *service.QualityScanner
	Dripper   *service.SitemapDripper
}

// SetupRouter configures the Gin router with all routes
func SetupRouter(svc Services, mode string, cors middleware.CORSConfig) *gin.Engine {
	switch mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(cors))

	healthHandler := handler.NewHealthHandler()
	productionHandler := handler.NewProductionHandler(svc.Scheduler, svc.Runner)
	qualityHandler := handler.NewQualityHandler(svc.Scanner)
	sitemapHandler := handler.NewSitemapHandler(svc.Dripper)

	r.GET("/health", healthHandler.Health)

	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", healthHandler.Health)

		// Scheduling and review
		v1.POST("/schedule-production", productionHandler.ScheduleProduction)
		v1.POST("/generate-test-batch", productionHandler.GenerateTestBatch)
		v1.POST("/approve-queue", productionHandler.ApproveQueue)
		v1.POST("/assemble-article", productionHandler.AssembleArticle)

		// Production
		v1.POST("/process-queue", productionHandler.ProcessQueue)
		v1.GET("/queues/:id", productionHandler.QueueStatus)

		// Quality
		v1.POST("/scan-duplicates", qualityHandler.ScanDuplicates)

		// Sitemap
		v1.GET("/sitemap-drip", sitemapHandler.Drip)
		v1.GET("/sites/:id/sitemap.xml", sitemapHandler.Sitemap)
		v1.GET("/nearby-articles", sitemapHandler.NearbyArticles)
	}

	return r
}
