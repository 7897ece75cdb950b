package response

import (
	"carbon-market/internal/services"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response represents a standard API response
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Success returns a success response
func Success(data interface{}) Response {
	return Response{
		Success: true,
		Message: "success",
		Data:    data,
	}
}

// Error returns an error response
func Error(statusCode int, message string) Response {
	return Response{
		Success: false,
		Message: message,
	}
}

// SuccessJSON sends a success JSON response
func SuccessJSON(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Success(data))
}

// CreatedJSON sends a created JSON response
func CreatedJSON(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{Success: true, Message: "created", Data: data})
}

// ErrorJSON sends an error JSON response
func ErrorJSON(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, Error(statusCode, message))
}

// FromError maps a service-layer error onto its HTTP status and sends it.
func FromError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		ErrorJSON(c, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrInvalidInput):
		ErrorJSON(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		ErrorJSON(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, services.ErrForbidden):
		ErrorJSON(c, http.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrConflict):
		ErrorJSON(c, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrUpstream):
		ErrorJSON(c, http.StatusBadGateway, err.Error())
	default:
		ErrorJSON(c, http.StatusInternalServerError, "internal error")
	}
}
