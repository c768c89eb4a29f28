package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/gpay-transactions/config"
	"github.com/yourusername/gpay-transactions/middleware"
)

func NewRouter(cfg *config.Config, auth *AuthHandler, charges *ChargeHandler, transfers *TransferHandler) *gin.Engine {
	router := gin.Default()

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "gpay-transactions-api",
		})
	})

	router.POST("/api/v1/token", auth.IssueToken)

	api := router.Group("/api/v1")
	api.Use(middleware.JwtAuthMiddleware(cfg))
	{
		charge := api.Group("/charges", middleware.RequireScope("charges"))
		charge.POST("", charges.CreateCharge)
		charge.GET("/:id", charges.GetCharge)
		charge.POST("/:id/paid", charges.MarkPaid)
		charge.POST("/:id/reverse", charges.MarkReversed)
		charge.POST("/:id/failure", charges.RecordFailure)
		charge.POST("/:id/refunds", charges.CreateRefund)
		charge.GET("/:id/channel", charges.GetChannel)

		transfer := api.Group("/transfers", middleware.RequireScope("transfers"))
		transfer.POST("", transfers.CreateTransfer)
		transfer.GET("/:id", transfers.GetTransfer)
		transfer.POST("/:id/failure", transfers.SetFailure)
		transfer.POST("/:id/envelope", transfers.BuildEnvelope)
	}

	return router
}
