package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/campground-booking/service-campground/internal/application"
	"github.com/campground-booking/service-campground/internal/common/auth"
	"github.com/campground-booking/service-campground/internal/common/middleware"
	"github.com/campground-booking/service-campground/internal/common/response"
)

// ReviewHandler handles HTTP requests for campground reviews.
type ReviewHandler struct {
	service *application.ReviewService
}

// NewReviewHandler creates a new ReviewHandler.
func NewReviewHandler(service *application.ReviewService) *ReviewHandler {
	return &ReviewHandler{service: service}
}

// RegisterRoutes registers all review routes.
func (h *ReviewHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)

	reviews := r.Group("/api/v1/reviews")
	{
		reviews.GET("", h.ListReviews)
		reviews.GET("/:id", h.GetReview)
		reviews.PUT("/:id", authMW, h.UpdateReview)
		reviews.DELETE("/:id", authMW, h.DeleteReview)
	}

	nested := r.Group("/api/v1/campgrounds/:id/reviews")
	{
		nested.GET("", h.ListCampgroundReviews)
		nested.POST("", authMW, h.CreateReview)
	}
}

// ListReviews handles GET /api/v1/reviews.
func (h *ReviewHandler) ListReviews(c *gin.Context) {
	result, err := h.service.ListReviews(c.Request.Context(), nil)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ListCampgroundReviews handles GET /api/v1/campgrounds/:id/reviews.
func (h *ReviewHandler) ListCampgroundReviews(c *gin.Context) {
	campgroundID, ok := pathID(c, "campground")
	if !ok {
		return
	}

	result, err := h.service.ListReviews(c.Request.Context(), &campgroundID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// GetReview handles GET /api/v1/reviews/:id.
func (h *ReviewHandler) GetReview(c *gin.Context) {
	reviewID, ok := pathID(c, "review")
	if !ok {
		return
	}

	result, err := h.service.GetReview(c.Request.Context(), reviewID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// CreateReview handles POST /api/v1/campgrounds/:id/reviews.
func (h *ReviewHandler) CreateReview(c *gin.Context) {
	req, ok := requester(c)
	if !ok {
		return
	}
	campgroundID, ok := pathID(c, "campground")
	if !ok {
		return
	}

	var body application.CreateReviewRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CreateReview(c.Request.Context(), req, campgroundID, body)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// UpdateReview handles PUT /api/v1/reviews/:id.
func (h *ReviewHandler) UpdateReview(c *gin.Context) {
	req, ok := requester(c)
	if !ok {
		return
	}
	reviewID, ok := pathID(c, "review")
	if !ok {
		return
	}

	var body application.UpdateReviewRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.UpdateReview(c.Request.Context(), req, reviewID, body)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// DeleteReview handles DELETE /api/v1/reviews/:id.
func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	req, ok := requester(c)
	if !ok {
		return
	}
	reviewID, ok := pathID(c, "review")
	if !ok {
		return
	}

	if err := h.service.DeleteReview(c.Request.Context(), req, reviewID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{})
}
