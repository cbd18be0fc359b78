package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmashiku07/starlink-tracker/internal/handler"
	"github.com/dmashiku07/starlink-tracker/internal/middleware"
	"github.com/dmashiku07/starlink-tracker/pkg/response"
)

// SetupRouter 设置路由
func SetupRouter(trackHandler *handler.TrackHandler, limiter *middleware.RateLimiter) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.Logger(), middleware.Metrics())

	// CORS 中间件
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	r.GET("/health", trackHandler.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 轨迹相关接口
	tracks := r.Group("", middleware.RateLimit(limiter))
	{
		tracks.POST("/tracker", trackHandler.Ingest)
		tracks.GET("/history", trackHandler.History)
	}

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c, "Route not found")
	})

	return r
}
