package main

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "planillas/api/swagger" // swagger docs
	"planillas/internal/config"
	"planillas/internal/handler"
	"planillas/internal/middleware"
	"planillas/internal/service"
	"planillas/internal/websocket"
)

type routerDeps struct {
	cfg       config.Config
	log       *zap.Logger
	auth      *middleware.Authenticator
	hub       *websocket.Hub
	users     service.UserService
	authn     service.AuthService
	planillas service.PlanillaService
}

func newRouter(d routerDeps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(d.log))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = d.cfg.CORSOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", middleware.RequestIDHeader}
	corsConfig.ExposeHeaders = []string{middleware.RequestIDHeader}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(d.hub, d.auth, c)
	})

	root := router.Group("")
	handler.NewAuthHandler(d.authn, d.planillas, d.auth, d.log).RegisterRoutes(root)
	handler.NewPlanillaHandler(d.planillas, d.auth, d.log).RegisterRoutes(root)
	handler.NewUserHandler(d.users, d.auth, d.log).RegisterRoutes(root)

	return router
}
