package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourname/rehabtracker/internal/auth"
)

type LoginRequest struct {
	Password string `json:"password"`
}

func PostAuth(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request"})
			return
		}
		if !app.Auth().Check(req.Password) {
			app.Logger().Warnf("[request_id=%s] rejected login attempt", c.GetString("request_id"))
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid password"})
			return
		}
		token, err := app.Auth().Issue(app.Now())
		if err != nil {
			app.Logger().Errorf("[request_id=%s] failed to issue session: %v", c.GetString("request_id"), err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Authentication failed"})
			return
		}
		auth.SetSessionCookie(c, token, app.Config().SecureCookies())
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

func DeleteAuth(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth.ClearSessionCookie(c, app.Config().SecureCookies())
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}
