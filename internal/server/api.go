package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error is a handler failure rendered as {"error": Message} with status Code.
type Error struct {
	Code    int
	Message string
}

// HandlerFunc returns either a value to render as JSON or an *Error.
type HandlerFunc func(ctx *gin.Context) (any, *Error)

// ResolveEndpoint adapts a HandlerFunc to gin.
func ResolveEndpoint(h HandlerFunc) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		result, apiErr := h(ctx)
		if apiErr != nil {
			ctx.JSON(apiErr.Code, gin.H{"error": apiErr.Message})
			return
		}

		ctx.JSON(http.StatusOK, result)
	}
}

func badRequest(msg string) *Error {
	return &Error{Code: http.StatusBadRequest, Message: msg}
}

func notFound(msg string) *Error {
	return &Error{Code: http.StatusNotFound, Message: msg}
}

func internal(err error) *Error {
	return &Error{Code: http.StatusInternalServerError, Message: err.Error()}
}
