package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wayfarer-maps/service-routing/internal/domain/shared"
)

// Success writes a 200 response with the payload.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"data": data})
}

// Created writes a 201 response with the payload.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, gin.H{"data": data})
}

// NoContent writes a 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// BadRequest writes a 400 response with the message.
func BadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

// Error maps a domain error kind to an HTTP status code. Unclassified
// errors become 500 with a generic message.
func Error(c *gin.Context, err error) {
	switch shared.KindOf(err) {
	case shared.KindValidation:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case shared.KindUnauthorized:
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case shared.KindForbidden:
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case shared.KindNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case shared.KindConflict:
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case shared.KindUnavailable:
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
