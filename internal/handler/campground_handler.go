package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/campground-booking/service-campground/internal/application"
	"github.com/campground-booking/service-campground/internal/common/auth"
	"github.com/campground-booking/service-campground/internal/common/middleware"
	"github.com/campground-booking/service-campground/internal/common/response"
	campgroundDomain "github.com/campground-booking/service-campground/internal/domain/campground"
)

// CampgroundHandler handles HTTP requests for the campground catalogue.
type CampgroundHandler struct {
	service *application.CampgroundService
}

// NewCampgroundHandler creates a new CampgroundHandler.
func NewCampgroundHandler(service *application.CampgroundService) *CampgroundHandler {
	return &CampgroundHandler{service: service}
}

// RegisterRoutes registers campground routes. Reads are public, writes are admin-only.
func (h *CampgroundHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)
	adminRole := middleware.RequireRole(auth.RoleAdmin)

	camps := r.Group("/api/v1/campgrounds")
	{
		camps.GET("", h.ListCampgrounds)
		camps.GET("/:id", h.GetCampground)
		camps.POST("", authMW, adminRole, h.CreateCampground)
		camps.PUT("/:id", authMW, adminRole, h.UpdateCampground)
		camps.DELETE("/:id", authMW, adminRole, h.DeleteCampground)
	}
}

// ListCampgrounds handles GET /api/v1/campgrounds.
func (h *CampgroundHandler) ListCampgrounds(c *gin.Context) {
	page, limit := parsePagination(c)

	result, err := h.service.ListCampgrounds(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, result.Items, len(result.Items), result.Total, result.Page, result.Limit)
}

// GetCampground handles GET /api/v1/campgrounds/:id.
func (h *CampgroundHandler) GetCampground(c *gin.Context) {
	id, ok := pathID(c, "campground")
	if !ok {
		return
	}

	result, err := h.service.GetCampground(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// CreateCampground handles POST /api/v1/campgrounds.
func (h *CampgroundHandler) CreateCampground(c *gin.Context) {
	var details campgroundDomain.Details
	if err := c.ShouldBindJSON(&details); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CreateCampground(c.Request.Context(), details)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// UpdateCampground handles PUT /api/v1/campgrounds/:id.
func (h *CampgroundHandler) UpdateCampground(c *gin.Context) {
	id, ok := pathID(c, "campground")
	if !ok {
		return
	}

	var details campgroundDomain.Details
	if err := c.ShouldBindJSON(&details); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.UpdateCampground(c.Request.Context(), id, details)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// DeleteCampground handles DELETE /api/v1/campgrounds/:id.
func (h *CampgroundHandler) DeleteCampground(c *gin.Context) {
	id, ok := pathID(c, "campground")
	if !ok {
		return
	}

	if err := h.service.DeleteCampground(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{})
}
