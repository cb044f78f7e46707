package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/wayfarer-maps/service-routing/internal/application"
	"github.com/wayfarer-maps/service-routing/internal/platform/auth"
	"github.com/wayfarer-maps/service-routing/internal/platform/middleware"
	"github.com/wayfarer-maps/service-routing/internal/platform/response"
)

// PlaceHandler handles HTTP requests for saved-place operations.
type PlaceHandler struct {
	service *application.PlaceService
}

// NewPlaceHandler creates a new PlaceHandler.
func NewPlaceHandler(service *application.PlaceService) *PlaceHandler {
	return &PlaceHandler{service: service}
}

// RegisterRoutes registers all place routes on the given router group.
func (h *PlaceHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	places := r.Group("/api/v1/places")
	places.Use(middleware.AuthMiddleware(jwtManager))
	{
		places.POST("", h.CreatePlace)
		places.GET("", h.ListPlaces)
		places.GET("/:id", h.GetPlace)
		places.DELETE("/:id", h.DeletePlace)
	}
}

// CreatePlace handles POST /api/v1/places.
func (h *PlaceHandler) CreatePlace(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req application.CreatePlaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CreatePlace(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// ListPlaces handles GET /api/v1/places.
func (h *PlaceHandler) ListPlaces(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	result, err := h.service.GetMyPlaces(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// GetPlace handles GET /api/v1/places/:id.
func (h *PlaceHandler) GetPlace(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	placeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid place ID")
		return
	}

	result, err := h.service.GetPlace(c.Request.Context(), userID, placeID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// DeletePlace handles DELETE /api/v1/places/:id.
func (h *PlaceHandler) DeletePlace(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	placeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid place ID")
		return
	}

	if err := h.service.DeletePlace(c.Request.Context(), userID, placeID); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
