package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yourname/rehabtracker/internal"
	"github.com/yourname/rehabtracker/internal/response"
)

// StatusFor maps a service error to its HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, internal.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, internal.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, internal.ErrNotFound), errors.Is(err, internal.ErrNoPreviousLog):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// HandleError logs err and writes the error envelope. Store failures and
// auth failures never carry the underlying error to the client.
func HandleError(c *gin.Context, logger internal.Logger, err error, status int, msg string) {
	requestID := c.GetString("request_id")
	logger.Errorf("[request_id=%s] %s: %v", requestID, msg, err)
	var resp response.APIResponse
	switch status {
	case http.StatusBadRequest:
		resp = response.BadRequest(msg + ": " + err.Error())
	case http.StatusUnauthorized:
		resp = response.Unauthorized(msg)
	case http.StatusNotFound:
		resp = response.NotFound(msg + ": " + err.Error())
	case http.StatusInternalServerError:
		resp = response.InternalError(msg)
	default:
		resp = response.NewAppError(status, msg)
	}
	c.AbortWithStatusJSON(status, resp)
}

// HandleServiceError picks the status from err.
func HandleServiceError(c *gin.Context, logger internal.Logger, err error, msg string) {
	HandleError(c, logger, err, StatusFor(err), msg)
}

func HandleSuccess(c *gin.Context, logger internal.Logger, data interface{}, meta map[string]any) {
	requestID := c.GetString("request_id")
	logger.Debugf("[request_id=%s] Success", requestID)
	c.JSON(http.StatusOK, response.Success(data, meta))
}

// todayParam reads an optional date query parameter, defaulting to the
// app's current date.
func todayParam(c *gin.Context, app App, key string) (time.Time, error) {
	v := c.Query(key)
	if v == "" {
		return internal.DateOf(app.Now()), nil
	}
	return internal.ParseDate(v)
}
