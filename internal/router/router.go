package router

import (
	"time"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/gunnas32/QR-Stock/internal/config"
	"github.com/gunnas32/QR-Stock/internal/handler"
	"github.com/gunnas32/QR-Stock/internal/middleware"
	"github.com/gunnas32/QR-Stock/internal/registry"
	"github.com/gunnas32/QR-Stock/internal/service"
	"github.com/gunnas32/QR-Stock/internal/store"
	"github.com/gunnas32/QR-Stock/internal/worker"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Registry/Store. The dispatcher is
// built in main (it also feeds the worker pool) and injected here. db and
// rdb may be nil when the snapshot store runs standalone.
func New(cfg *config.Config, reg *registry.Registry, st store.Store, db *gorm.DB, rdb *redis.Client, dispatcher *worker.Dispatcher) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Services ─────────────────────────────────────────────────────────────
	alertSvc := service.NewAlertService(dispatcher)
	itemSvc := service.NewItemService(reg, st, cfg.PublicBaseURL)
	txSvc := service.NewTransactionService(reg, st, alertSvc)

	// ── Handlers ─────────────────────────────────────────────────────────────
	scanCache := handler.NewScanCache(rdb)
	itemsH := handler.NewItemsHandler(itemSvc, scanCache)
	txH := handler.NewTransactionsHandler(txSvc, scanCache)
	scanH := handler.NewScanHandler(itemSvc, scanCache)
	labelsH := handler.NewLabelsHandler(itemSvc, cfg.PublicBaseURL)
	exportH := handler.NewExportHandler(reg)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, dispatcher))

	// Scan landing — printed QR labels resolve here, no auth
	r.GET("/scan", middleware.ScanRateLimiter(), scanH.Get)

	v1 := r.Group("/v1")
	{
		items := v1.Group("/items")
		{
			items.POST("", itemsH.Create)
			items.GET("", itemsH.List)
			items.GET("/:code", itemsH.Get)
			items.PATCH("/:code", itemsH.Update)
			items.POST("/:code/rename", itemsH.Rename)

			items.POST("/:code/transactions", txH.Apply)
			items.GET("/:code/transactions", txH.ListForItem)

			items.GET("/:code/label.png", labelsH.PNG)
			items.GET("/:code/label.pdf", labelsH.PDF)
		}

		v1.GET("/transactions", txH.ListAll)

		v1.GET("/export.xlsx", exportH.XLSX)
		v1.GET("/export.csv", exportH.CSV)
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
