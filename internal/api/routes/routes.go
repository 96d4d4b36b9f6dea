package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/porter-wallet/porter_service/internal/api/handlers"
	"github.com/porter-wallet/porter_service/internal/api/middleware"
	"github.com/porter-wallet/porter_service/internal/infrastructure/config"
	"github.com/porter-wallet/porter_service/pkg/logger"
)

// Handlers groups everything the router mounts
type Handlers struct {
	Transfer *handlers.TransferHandlers
	Balance  *handlers.BalanceHandlers
	Health   *handlers.HealthHandlers
}

// SetupRouter configures the gin engine with all routes and middleware
func SetupRouter(cfg *config.Config, h *Handlers, log *logger.Logger) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery(log))
	router.Use(middleware.Logger(log))
	router.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	router.Use(middleware.RequestSizeLimit())

	router.NoRoute(func(c *gin.Context) {
		handlers.SendNotFound(c, handlers.ErrCodeNotFound, "Route not found")
	})

	router.GET("/health", h.Health.Liveness)
	router.GET("/health/ready", h.Health.Readiness)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		transfers := v1.Group("/transfers")
		{
			transfers.POST("/prepare", h.Transfer.PrepareTransfer)
			transfers.POST("/submit", h.Transfer.SubmitTransfer)
		}

		v1.GET("/trades", h.Transfer.ListTrades)
		v1.GET("/trades/:id", h.Transfer.GetTrade)
		v1.GET("/balances/:address", h.Balance.GetBalances)
	}

	return router
}
