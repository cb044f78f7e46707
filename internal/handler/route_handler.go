package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/wayfarer-maps/service-routing/internal/application"
	routeDomain "github.com/wayfarer-maps/service-routing/internal/domain/route"
	"github.com/wayfarer-maps/service-routing/internal/platform/auth"
	"github.com/wayfarer-maps/service-routing/internal/platform/middleware"
	"github.com/wayfarer-maps/service-routing/internal/platform/response"
)

// SaveRouteRequest is the request body for computing and saving a route
// in one call.
type SaveRouteRequest struct {
	Name string `json:"name" binding:"required"`
	application.RouteRequest
}

// PreferencesRequest is the request body for updating unit preferences.
type PreferencesRequest struct {
	DistanceUnit   string `json:"distance_unit" binding:"required"`
	CombustionUnit string `json:"combustion_unit" binding:"required"`
	ElectricUnit   string `json:"electric_unit" binding:"required"`
}

// RouteHandler handles HTTP requests for route computation, saved routes
// and unit preferences.
type RouteHandler struct {
	service *application.RouteService
}

// NewRouteHandler creates a new RouteHandler.
func NewRouteHandler(service *application.RouteService) *RouteHandler {
	return &RouteHandler{service: service}
}

// RegisterRoutes registers all route endpoints on the given router group.
func (h *RouteHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)

	routes := r.Group("/api/v1/routes")
	routes.Use(authMW)
	{
		routes.POST("", h.ComputeRoute)
		routes.POST("/saved", h.SaveRoute)
		routes.GET("/saved", h.ListSavedRoutes)
		routes.DELETE("/saved/:id", h.DeleteSavedRoute)
	}

	prefs := r.Group("/api/v1/preferences")
	prefs.Use(authMW)
	{
		prefs.GET("", h.GetPreferences)
		prefs.PUT("", h.UpdatePreferences)
	}
}

// ComputeRoute handles POST /api/v1/routes.
func (h *RouteHandler) ComputeRoute(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req application.RouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.RequestRoute(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// SaveRoute handles POST /api/v1/routes/saved.
func (h *RouteHandler) SaveRoute(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req SaveRouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.RequestAndSaveRoute(c.Request.Context(), userID, req.Name, req.RouteRequest)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// ListSavedRoutes handles GET /api/v1/routes/saved.
func (h *RouteHandler) ListSavedRoutes(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	result, err := h.service.GetSavedRoutes(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// DeleteSavedRoute handles DELETE /api/v1/routes/saved/:id.
func (h *RouteHandler) DeleteSavedRoute(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	routeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid route ID")
		return
	}

	if err := h.service.DeleteSavedRoute(c.Request.Context(), userID, routeID); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// GetPreferences handles GET /api/v1/preferences.
func (h *RouteHandler) GetPreferences(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	prefs, err := h.service.GetPreferences(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, prefs)
}

// UpdatePreferences handles PUT /api/v1/preferences.
func (h *RouteHandler) UpdatePreferences(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req PreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	prefs := routeDomain.UnitPreferences{
		DistanceUnit:   routeDomain.DistanceUnit(req.DistanceUnit),
		CombustionUnit: routeDomain.ConsumptionUnit(req.CombustionUnit),
		ElectricUnit:   routeDomain.ConsumptionUnit(req.ElectricUnit),
	}
	if err := h.service.UpdatePreferences(c.Request.Context(), userID, prefs); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, prefs)
}
