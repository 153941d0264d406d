package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/booking-api/pkg/errors"
	"github.com/jwalitptl/booking-api/pkg/httputil"
)

// NotImplemented answers routes whose controller is not mounted in this
// service. It only runs after the route's gates have passed.
func NotImplemented(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusNotImplemented, httputil.Response{
		Status: "error",
		Error: &httputil.Error{
			Kind:          errors.KindInternal,
			HTTPStatus:    http.StatusNotImplemented,
			IsOperational: true,
			Message:       "not implemented",
		},
	})
}
