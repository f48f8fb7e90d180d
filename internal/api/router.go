package api

import (
	"github.com/gin-gonic/gin"
	"github.com/yourname/rehabtracker/internal/auth"
)

// NewRouter wires every route. Everything except login, logout and the
// health check requires a session.
func NewRouter(app App) *gin.Engine {
	if app.Config().Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), RequestIDMiddleware(), RequestLogger(app.Logger()))

	r.GET("/healthz", GetHealth())
	r.POST("/auth", PostAuth(app))
	r.DELETE("/auth", DeleteAuth(app))

	protected := r.Group("/", auth.AuthMiddleware(app.Auth(), app.Now))
	protected.GET("/logs", GetLogs(app))
	protected.POST("/logs", PostLog(app))
	protected.DELETE("/logs", DeleteLog(app))
	protected.POST("/logs/quick-fill", PostQuickFill(app))
	protected.GET("/dashboard", GetDashboard(app))
	protected.GET("/progress", GetProgress(app))
	protected.GET("/exercises", GetExercises(app))
	return r
}
