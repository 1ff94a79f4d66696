package middleware

import (
	"github.com/gin-gonic/gin"

	"pharmadesk/internal/core/apperror"
	"pharmadesk/internal/infrastructure/http/v1/dto"
	"pharmadesk/pkg/logger"
)

// ErrorHandler renders the last error a handler registered with c.Error.
// Errors that are not AppErrors become INTERNAL_ERROR and only their request
// id reaches the client. A response the handler already wrote is kept.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		status, body := renderError(c, c.Errors.Last().Err)
		c.JSON(status, body)
	}
}

// renderError logs the hidden part of err and builds the response.
func renderError(c *gin.Context, err error) (int, dto.ErrorResponse) {
	ctx := c.Request.Context()

	appErr, ok := apperror.AsAppError(err)
	if !ok {
		logger.Error(ctx, "unhandled error", "error", err)
		appErr = apperror.NewInternal(err)
	} else if appErr.Err != nil {
		logger.Error(ctx, "request error", "code", appErr.Code, "cause", appErr.Err)
	}

	details := appErr.Details
	if appErr.Code == apperror.CodeInternal {
		details = map[string]any{"request_id": c.GetString("request_id")}
	}
	return appErr.HTTPStatus, dto.ErrorResponse{
		Code:    appErr.Code,
		Message: appErr.Message,
		Details: details,
	}
}
