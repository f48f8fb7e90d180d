package response

import "github.com/yourname/rehabtracker/internal"

type APIResponse struct {
	Data  interface{}        `json:"data,omitempty"`
	Meta  map[string]any     `json:"meta,omitempty"`
	Error *internal.AppError `json:"error,omitempty"`
}

func Success(data interface{}, meta map[string]any) APIResponse {
	return APIResponse{Data: data, Meta: meta}
}

func BadRequest(msg string) APIResponse {
	return NewAppError(400, msg)
}

func Unauthorized(msg string) APIResponse {
	return NewAppError(401, msg)
}

func NotFound(msg string) APIResponse {
	return NewAppError(404, msg)
}

func InternalError(msg string) APIResponse {
	return NewAppError(500, msg)
}

func NewAppError(status int, msg string) APIResponse {
	return APIResponse{Error: internal.NewAppError(status, msg)}
}
