package router

import (
	"log/slog"
	"net/http"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/polkiloo/pdfshop/internal/config"
	"github.com/polkiloo/pdfshop/internal/server/http/handlers"
	"github.com/polkiloo/pdfshop/internal/server/http/middleware"
)

// maxInflatedBody matches the largest accepted PDF upload.
const maxInflatedBody = 200 << 20

type routerParams struct {
	fx.In

	Facade handlers.ShopFacade
	Config *config.Config
	Logger *slog.Logger
}

func newRouter(p routerParams) *gin.Engine {
	return Setup(p.Facade, p.Config.CORSAllowedOrigins, p.Logger)
}

// Setup configures gin router with handlers and middleware.
func Setup(facade handlers.ShopFacade, corsOrigins []string, logger *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(logger))
	engine.Use(middleware.Metrics())
	if cors := middleware.CORS(corsOrigins); cors != nil {
		engine.Use(cors)
	}

	paymentHandler := handlers.NewPaymentHandler(facade, logger)
	adminHandler := handlers.NewAdminHandler(facade, logger)
	fileHandler := handlers.NewFileHandler(facade, logger)
	healthHandler := handlers.NewHealthHandler(facade, logger)

	engine.GET("/healthz", healthHandler.Check)
	engine.GET("/metrics", middleware.PrometheusHandler())
	engine.GET("/files/*ref", fileHandler.Serve)

	api := engine.Group("/api")
	api.Use(middleware.DecompressRequest(maxInflatedBody))
	api.Use(gzip.Gzip(gzip.DefaultCompression))

	payment := api.Group("/payment")
	payment.POST("/checkout", paymentHandler.Checkout)
	payment.Match([]string{http.MethodGet, http.MethodPost}, "/result", paymentHandler.Result)
	payment.GET("/success", paymentHandler.Success)
	payment.POST("/success", paymentHandler.Success)
	payment.GET("/fail", paymentHandler.Fail)
	payment.POST("/fail", paymentHandler.Fail)
	payment.GET("/download", paymentHandler.Download)

	admin := api.Group("/admin")
	admin.POST("/login", adminHandler.Login)

	adminAuth := admin.Group("")
	adminAuth.Use(middleware.AdminRequired(facade))
	adminAuth.GET("/orders", adminHandler.Orders)
	adminAuth.GET("/orders/:id", adminHandler.Order)
	adminAuth.GET("/orders/:id/gateway-state", adminHandler.GatewayState)
	adminAuth.PUT("/books/:id", adminHandler.SaveBook)
	adminAuth.POST("/books/:id/pdf", adminHandler.UploadPDF)

	return engine
}
