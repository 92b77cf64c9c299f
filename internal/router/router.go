package router

import (
	"github.com/gin-gonic/gin"

	"logmein/config"
	"logmein/internal/handler"
	"logmein/internal/middleware"
)

// SetupRouter 设置路由
func SetupRouter(h *handler.GatewayHandler, cfg *config.ServerConfig) *gin.Engine {
	r := gin.New()

	// 全局中间件
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.CORSMiddleware(cfg.AllowOrigins))
	r.Use(middleware.LoggerMiddleware())

	r.GET("/health", h.Health)

	api := r.Group("/api/v1")
	{
		// 网关操作会真正发出请求，单独限流
		gw := api.Group("")
		gw.Use(middleware.RateLimitMiddleware(cfg.RateLimit, cfg.RateBurst))
		{
			gw.POST("/login", h.Login)
			gw.POST("/logout", h.Logout)
		}

		prefs := api.Group("/preferences")
		{
			prefs.GET("/username", h.GetUsername)
			prefs.PUT("/username", h.SetUsername)
		}
	}

	return r
}
