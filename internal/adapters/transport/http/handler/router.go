package handler

import (
	"context"
	"time"

	"github.com/Miraines/MoonyAndStarry/rfi-service/internal/adapters/transport/http/middleware"
	appsvc "github.com/Miraines/MoonyAndStarry/rfi-service/internal/app/auth/service"
	"github.com/Miraines/MoonyAndStarry/rfi-service/internal/app/projects"
	"github.com/Miraines/MoonyAndStarry/rfi-service/internal/app/rfi"
	"github.com/Miraines/MoonyAndStarry/rfi-service/internal/app/users"
	"github.com/Miraines/MoonyAndStarry/rfi-service/internal/infra/config"
	"github.com/Miraines/MoonyAndStarry/rfi-service/internal/infra/health"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Deps struct {
	Config   *config.Config
	Log      *zap.Logger
	Auth     appsvc.Service
	Users    *users.Service
	Projects *projects.Service
	RFIs     *rfi.Service
	Health   *health.Checker
	Registry *prometheus.Registry
}

// NewRouter собирает gin-движок; ctx ограничивает жизнь фоновой очистки rate limiter'а.
func NewRouter(ctx context.Context, d Deps) *gin.Engine {
	cfg := d.Config

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(d.Log))
	router.Use(middleware.NewHTTPMetrics(d.Registry).Handler())
	router.Use(middleware.NewRateLimitPerIP(ctx, cfg.RateLimitRPS, cfg.RateLimitBurst, 10_000, time.Hour))
	router.Use(cors.New(corsConfig(cfg)))

	hh := NewHealthHandler(cfg.ProjectName, cfg.Version, d.Health, d.Log)
	router.GET("/health", hh.Live)
	router.GET("/health/detailed", hh.Detailed)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{})))

	api := router.Group("/api/v1")
	authn := middleware.Authenticate(d.Auth)
	su := middleware.RequireSuperuser()

	ah := NewAuthHandler(d.Auth, d.Log)
	authGroup := api.Group("/auth")
	authGroup.POST("/register", ah.Register)
	authGroup.POST("/login", ah.Login)
	authGroup.POST("/refresh", ah.Refresh)
	authGroup.POST("/logout", authn, ah.Logout)
	authGroup.GET("/me", authn, ah.Me)

	uh := NewUserHandler(d.Users)
	usersGroup := api.Group("/users", authn)
	usersGroup.GET("", su, uh.List)
	usersGroup.POST("", su, uh.Create)
	usersGroup.GET("/me", ah.Me)
	usersGroup.GET("/:id", uh.Get)
	usersGroup.PUT("/:id", uh.Update)
	usersGroup.DELETE("/:id", su, uh.Delete)
	usersGroup.POST("/:id/restore", su, uh.Restore)

	ph := NewProjectHandler(d.Projects)
	projectsGroup := api.Group("/projects", authn)
	projectsGroup.GET("", ph.List)
	projectsGroup.POST("", ph.Create)
	projectsGroup.GET("/:id", ph.Get)
	projectsGroup.PUT("/:id", ph.Update)
	projectsGroup.DELETE("/:id", ph.Delete)

	rh := NewRFIHandler(d.RFIs)
	rfisGroup := api.Group("/rfis", authn)
	rfisGroup.POST("", rh.Create)
	rfisGroup.GET("", rh.List)
	rfisGroup.GET("/search", rh.Search)
	rfisGroup.GET("/pending", rh.Pending)
	rfisGroup.GET("/statistics", rh.Statistics)
	rfisGroup.GET("/:id", rh.Get)
	rfisGroup.PUT("/:id", rh.Update)
	rfisGroup.POST("/:id/approve", rh.Approve)
	rfisGroup.POST("/:id/reject", rh.Reject)
	rfisGroup.POST("/:id/cancel", su, rh.Cancel)
	rfisGroup.DELETE("/:id", su, rh.Delete)

	return router
}

func corsConfig(cfg *config.Config) cors.Config {
	c := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{
			"Origin", "Content-Type", "Accept",
			"Authorization",
			"X-Requested-With",
		},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           12 * time.Hour,
	}
	// "*" вместе с credentials браузер не примет – отражаем Origin.
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		c.AllowOriginFunc = func(string) bool { return true }
	} else {
		c.AllowOrigins = cfg.AllowedOrigins
	}
	return c
}
