package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/partscout/api/handler"
	"github.com/use-agent/partscout/api/middleware"
	"github.com/use-agent/partscout/config"
	"github.com/use-agent/partscout/store"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger → CORS
//	API:     Auth (if enabled) → RateLimit
//
// Health endpoint is intentionally outside auth so monitoring probes always work.
func NewRouter(s handler.Searcher, sessions handler.SessionCounter, db *store.DB, cfg *config.Config, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

	api := r.Group("/api")

	// Health, no auth required.
	api.GET("/health", handler.Health(s, sessions, startTime))

	// Protected group: auth + rate limit.
	protected := api.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	protected.Use(middleware.RateLimit(cfg.RateLimit))

	// Search
	protected.GET("/search", handler.Search(s))
	protected.GET("/bing-search", handler.BingSearch(s))

	// Component catalog
	protected.GET("/components", handler.ListComponents(db))
	protected.POST("/components", handler.CreateComponent(db))
	protected.POST("/components/import", handler.ImportComponents(db))
	protected.PUT("/components/:id", handler.UpdateComponent(db))
	protected.DELETE("/components/:id", handler.DeleteComponent(db))

	// Quotations
	quotations := db.Quotations(cfg.Store.QuotationsDir)
	protected.POST("/quotations", handler.SaveQuotation(quotations))
	protected.GET("/quotations", handler.ListQuotations(quotations))
	protected.GET("/quotations/:id", handler.GetQuotation(quotations))
	protected.DELETE("/quotations/:id", handler.DeleteQuotation(quotations))

	// PDF info
	protected.POST("/save_pdf_info", handler.SavePDFInfo(db))
	protected.GET("/load_pdf_info", handler.LoadPDFInfo(db))
	protected.DELETE("/delete_pdf_info/:id", handler.DeletePDFInfo(db))

	// Company profile
	protected.GET("/company", handler.GetCompany(db))
	protected.POST("/company", handler.SaveCompany(db))

	return r
}
