package bootstrap

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/klmaterial-hub/api/swagger"
	"github.com/noah-isme/klmaterial-hub/internal/handler"
	"github.com/noah-isme/klmaterial-hub/internal/middleware"
	"github.com/noah-isme/klmaterial-hub/pkg/config"
	"github.com/noah-isme/klmaterial-hub/pkg/logger"
	corsmiddleware "github.com/noah-isme/klmaterial-hub/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/klmaterial-hub/pkg/middleware/requestid"
)

// NewRouter builds the gin engine serving the page, the JSON API and the ops endpoints.
func NewRouter(c *Container) *gin.Engine {
	cfg := c.Config
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(middleware.Metrics(c.Metrics, "/metrics", "/health", "/ready"))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Session(c.Sessions, cfg.Session, c.Logger))
	r.Use(logger.GinMiddleware(c.Logger, middleware.SessionID))
	r.SetHTMLTemplate(handler.Templates())

	checks := map[string]handler.Pinger{}
	if c.Redis != nil {
		checks["redis"] = redisPinger{client: c.Redis}
	}
	if c.MetadataDB != nil {
		checks["postgres"] = c.MetadataDB
	}
	metricsHandler := handler.NewMetricsHandler(c.Metrics, checks)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	pageHandler := handler.NewPageHandler(c.Materials, c.Subjects, cfg.APIPrefix)
	r.GET("/", pageHandler.Materials)

	materialHandler := handler.NewMaterialHandler(c.Materials, c.Exports)
	subjectHandler := handler.NewSubjectHandler(c.Subjects)

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.WithResponseMeta())
	{
		api.GET("/subjects", subjectHandler.List)
		api.GET("/subjects/:code", subjectHandler.Get)
		api.GET("/search-history", materialHandler.History)
		api.DELETE("/search-history", materialHandler.ClearHistory)

		materials := api.Group("/materials")
		materials.GET("", materialHandler.List)
		materials.GET("/metadata", materialHandler.Metadata)
		materials.GET("/export", materialHandler.Export)
		materials.POST("/view", materialHandler.View)
		materials.POST("/download", materialHandler.Download)
		materials.GET("/download", materialHandler.DownloadRedirect)
		materials.POST("/rate", materialHandler.Rate)
		materials.POST("/favorite", materialHandler.Favorite)
	}

	if c.Admin.Enabled() {
		adminHandler := handler.NewAdminHandler(c.Materials)
		admin := api.Group("/admin", middleware.AdminOnly(c.Admin))
		admin.POST("/catalog/refresh", middleware.Audit(c.Logger, "catalog.refresh"), adminHandler.Refresh)
	}

	return r
}
