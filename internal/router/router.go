package router

import (
	"net/http"

	"github.com/blues/smartfunding/internal/chain"
	"github.com/blues/smartfunding/internal/handler"
	"github.com/blues/smartfunding/internal/metrics"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Setup 注册路由。db 为空时不提供流水查询接口
func Setup(service handler.FundingService, db *gorm.DB, contract *chain.Contract) *gin.Engine {
	r := gin.New()

	// 中间件
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(corsMiddleware())
	r.Use(metrics.GinMiddleware())

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "smartfunding-service",
			"stage":   service.Summary().Stage.String(),
		})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	v1 := r.Group("/api/v1")
	{
		fundingHandler := handler.NewFundingHandler(service)
		funding := v1.Group("/funding")
		{
			funding.GET("", fundingHandler.GetSummary)
			funding.GET("/investors/:address", fundingHandler.GetInvestor)
			funding.GET("/reward", fundingHandler.CalculateReward)
			funding.POST("/initialize", fundingHandler.Initialize)
			funding.POST("/invest", fundingHandler.Invest)
			funding.POST("/finalize", fundingHandler.Finalize)
			funding.POST("/claim", fundingHandler.Claim)
			funding.POST("/refund", fundingHandler.Refund)
			funding.POST("/withdraw", fundingHandler.Withdraw)
			funding.POST("/pause", fundingHandler.Pause)
			funding.POST("/unpause", fundingHandler.Unpause)

			if db != nil {
				recordHandler := handler.NewRecordHandler(db, contract)
				funding.GET("/contributions", recordHandler.GetContributeRecords)
				funding.GET("/contributions/stats", recordHandler.GetContributeStats)
				funding.GET("/claims", recordHandler.GetClaimRecords)
				funding.GET("/refunds", recordHandler.GetRefundRecords)
				funding.GET("/refunds/stats", recordHandler.GetRefundStats)
				funding.GET("/events", recordHandler.GetEvents)
				funding.GET("/events/stats", recordHandler.GetEventStats)
				funding.GET("/events/:tx_hash", recordHandler.GetEventByTxHash)
				funding.GET("/settlements", recordHandler.GetSettlementRecords)
			}
		}
	}

	return r
}

// CORS中间件
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
