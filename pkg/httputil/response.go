package httputil

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/booking-api/pkg/errors"
)

// Response wraps all API responses
type Response struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data,omitempty"`
	Error  *Error      `json:"error,omitempty"`
}

// Error is the structured error object returned to clients.
type Error struct {
	Kind          errors.Kind `json:"kind"`
	HTTPStatus    int         `json:"httpStatus"`
	IsOperational bool        `json:"isOperational"`
	Message       string      `json:"message"`
}

// RespondWithSuccess sends a success response
func RespondWithSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Status: "success",
		Data:   data,
	})
}

// AbortWithError terminates the request with the client-safe view of err.
func AbortWithError(c *gin.Context, err error) {
	appErr := errors.FromError(err)
	status := appErr.HTTPStatus
	if status == 0 {
		status = http.StatusInternalServerError
	}

	_ = c.Error(appErr)
	c.AbortWithStatusJSON(status, Response{
		Status: "error",
		Error: &Error{
			Kind:          appErr.Kind,
			HTTPStatus:    status,
			IsOperational: appErr.IsOperational,
			Message:       appErr.Message,
		},
	})
}
