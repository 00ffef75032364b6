package api_gateway

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/bank-reconciliation-engine/internal/api_gateway/handler"
	"github.com/bank-reconciliation-engine/internal/api_gateway/middleware"
	"github.com/bank-reconciliation-engine/internal/platform/metrics"
	"github.com/gin-gonic/gin"
)

type handlers struct {
	pass        *handler.PassHandler
	transaction *handler.TransactionHandler
	rule        *handler.RuleHandler
}

// setupRouter configures API routes and middleware for the application.
// rateLimit may be nil when rate limiting is disabled.
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	h handlers,
	m *metrics.Metrics,
	rateLimit gin.HandlerFunc,
) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CorrelationID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics(m))

	v1 := r.Group("/api/v1")
	if rateLimit != nil {
		v1.Use(rateLimit)
	}
	{
		passes := v1.Group("/reconciliation/passes")
		{
			passes.POST("", h.pass.Create)
			passes.GET("", h.pass.List)
			passes.GET("/:id", h.pass.GetByID)
		}

		transactions := v1.Group("/transactions")
		{
			transactions.GET("", h.transaction.List)
			transactions.GET("/:id", h.transaction.GetByID)
			transactions.GET("/:id/proposals", h.transaction.GetProposals)
			transactions.POST("/:id/reconcile", h.transaction.Reconcile)
			transactions.POST("/:id/categorize", h.transaction.Categorize)
		}

		rules := v1.Group("/rules")
		{
			rules.POST("", h.rule.Create)
			rules.GET("", h.rule.List)
			rules.POST("/suggest", h.rule.Suggest)
			rules.GET("/:id", h.rule.GetByID)
			rules.DELETE("/:id", h.rule.Delete)
		}
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
	r.GET("/metrics", gin.WrapH(m.Handler()))
}
