package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yourname/rehabtracker/internal"
	"github.com/yourname/rehabtracker/internal/catalog"
	"github.com/yourname/rehabtracker/internal/service"
)

func GetDashboard(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		today, err := todayParam(c, app, "today")
		if err != nil {
			HandleError(c, app.Logger(), err, http.StatusBadRequest, "Invalid today")
			return
		}
		summary, err := service.Dashboard(c.Request.Context(), app.DailyLogRepo(), today)
		if err != nil {
			HandleServiceError(c, app.Logger(), err, "Failed to build dashboard")
			return
		}
		HandleSuccess(c, app.Logger(), summary, nil)
	}
}

func GetProgress(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		today, err := todayParam(c, app, "today")
		if err != nil {
			HandleError(c, app.Logger(), err, http.StatusBadRequest, "Invalid today")
			return
		}
		month := today
		if v := c.Query("month"); v != "" {
			if month, err = time.Parse("2006-01", v); err != nil {
				HandleError(c, app.Logger(), fmt.Errorf("%w: month %q, expected YYYY-MM", internal.ErrValidation, v), http.StatusBadRequest, "Invalid month")
				return
			}
		}
		summary, err := service.Progress(c.Request.Context(), app.DailyLogRepo(), month, today)
		if err != nil {
			HandleServiceError(c, app.Logger(), err, "Failed to build progress")
			return
		}
		HandleSuccess(c, app.Logger(), summary, nil)
	}
}

func GetExercises(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		HandleSuccess(c, app.Logger(), catalog.All(), nil)
	}
}

func GetHealth() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
