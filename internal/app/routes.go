package app

import (
	"net/http"
	"time"

	"github.com/Till769/zero2prod/internal/middleware"
	"github.com/Till769/zero2prod/internal/modules/auth/user"
	"github.com/Till769/zero2prod/internal/modules/newsletter/issue"
	"github.com/Till769/zero2prod/internal/modules/newsletter/subscription"
	appconfigs "github.com/Till769/zero2prod/internal/modules/system/core/configs"
	"github.com/Till769/zero2prod/internal/modules/system/core/health"
	"github.com/Till769/zero2prod/internal/modules/system/home"
	"github.com/Till769/zero2prod/internal/pkg/response"
	"github.com/gin-gonic/gin"
)

func (a *App) registerRoutes() {
	r := a.router
	db := a.db
	authMW := middleware.Auth(db)

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c)
	})
	r.NoMethod(func(c *gin.Context) {
		response.MethodNotAllowed(c)
	})

	// Redis-backed middleware stays off when redis is absent.
	var limitMW, idemMW gin.HandlerFunc
	if a.rdb != nil {
		limitMW = middleware.RateLimit(a.rdb.Raw(), a.logger)
		idemMW = middleware.Idempotence(a.rdb.Raw())
	}

	// Shared services
	cfgSvc := appconfigs.NewService(db)
	subSvc := subscription.NewService(db)
	issueSvc := issue.NewService(db, cfgSvc, a.logger)

	root := r.Group("")

	// Public surface
	home.NewHandler(cfgSvc).RegisterRoutes(r)
	subscription.NewHandler(subSvc, cfgSvc).RegisterRoutes(root, authMW)
	health.RegisterRoutes(root, db, a.sched, cfgSvc, authMW)

	// Admin surface
	issue.NewHandler(issueSvc).RegisterRoutes(root, authMW, idemMW)
	appconfigs.NewHandler(cfgSvc).RegisterRoutes(r.Group("/admin"), authMW)

	// Owner auth
	user.NewHandler(user.NewService(db), cfgSvc).RegisterRoutes(root, authMW, limitMW)

	r.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"data": "pong"}) })
	r.GET("/uptime", func(c *gin.Context) {
		uptimeMs := time.Since(processStart).Milliseconds()
		c.JSON(http.StatusOK, gin.H{
			"timestamp": uptimeMs,
			"humanize":  humanizeDuration(time.Duration(uptimeMs) * time.Millisecond),
		})
	})
}
