package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourname/rehabtracker/internal"
	"github.com/yourname/rehabtracker/internal/response"
	"github.com/yourname/rehabtracker/internal/service"
)

func GetLogs(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		logs, err := service.ListDailyLogs(c.Request.Context(), app.DailyLogRepo(), c.Query("startDate"), c.Query("endDate"))
		if err != nil {
			HandleServiceError(c, app.Logger(), err, "Failed to fetch logs")
			return
		}
		HandleSuccess(c, app.Logger(), logs, map[string]any{"count": len(logs)})
	}
}

func PostLog(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body service.DailyLogRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			HandleError(c, app.Logger(), err, http.StatusBadRequest, "Invalid JSON")
			return
		}
		if err := service.ValidateDailyLogRequest(&body); err != nil {
			HandleError(c, app.Logger(), err, http.StatusBadRequest, "Validation failed")
			return
		}

		l, err := service.UpsertDailyLog(c.Request.Context(), app.DailyLogRepo(), &body)
		if err != nil {
			HandleServiceError(c, app.Logger(), err, "Failed to save log")
			return
		}
		HandleSuccess(c, app.Logger(), l, nil)
	}
}

func DeleteLog(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		date := c.Query("date")
		if date == "" {
			HandleError(c, app.Logger(), internal.ErrValidation, http.StatusBadRequest, "date is required")
			return
		}
		deleted, err := service.DiscardDailyLog(c.Request.Context(), app.DailyLogRepo(), date)
		if err != nil {
			HandleServiceError(c, app.Logger(), err, "Failed to discard log")
			return
		}
		HandleSuccess(c, app.Logger(), gin.H{"date": deleted, "deleted": true}, nil)
	}
}

// PostQuickFill answers 404 with the untouched default record when there is
// nothing to copy from.
func PostQuickFill(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body service.QuickFillRequest
		if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
			HandleError(c, app.Logger(), err, http.StatusBadRequest, "Invalid JSON")
			return
		}
		if err := service.ValidateQuickFillRequest(&body); err != nil {
			HandleError(c, app.Logger(), err, http.StatusBadRequest, "Validation failed")
			return
		}
		if body.Date == "" {
			body.Date = app.Now().Format(internal.DateLayout)
		}

		res, err := service.QuickFill(c.Request.Context(), app.DailyLogRepo(), body.Date)
		if err != nil {
			HandleServiceError(c, app.Logger(), err, "Failed to quick fill")
			return
		}
		if !res.Prefilled {
			resp := response.NotFound("No previous workout to copy from")
			resp.Data = res
			c.JSON(http.StatusNotFound, resp)
			return
		}
		HandleSuccess(c, app.Logger(), res, nil)
	}
}
