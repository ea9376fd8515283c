package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/campground-booking/service-campground/internal/application"
	"github.com/campground-booking/service-campground/internal/common/auth"
	"github.com/campground-booking/service-campground/internal/common/middleware"
	"github.com/campground-booking/service-campground/internal/common/response"
)

// BookingHandler handles HTTP requests for booking operations.
type BookingHandler struct {
	service *application.BookingService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(service *application.BookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

// RegisterRoutes registers all booking routes on the given router group.
func (h *BookingHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)

	bookings := r.Group("/api/v1/bookings")
	bookings.Use(authMW)
	{
		bookings.POST("", h.CreateBooking)
		bookings.GET("", h.ListBookings)
		bookings.GET("/:id", h.GetBooking)
		bookings.PUT("/:id", h.UpdateBooking)
		bookings.DELETE("/:id", h.DeleteBooking)
	}

	nested := r.Group("/api/v1/campgrounds/:id/bookings")
	nested.Use(authMW)
	{
		nested.POST("", h.CreateCampgroundBooking)
		nested.GET("", h.ListCampgroundBookings)
	}
}

// CreateBooking handles POST /api/v1/bookings.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	req, ok := requester(c)
	if !ok {
		return
	}

	var body application.CreateBookingRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	campgroundID, err := uuid.Parse(body.CampgroundID)
	if err != nil {
		response.BadRequest(c, "invalid campground ID")
		return
	}

	h.create(c, req, campgroundID, body.BookingDate)
}

// CreateCampgroundBooking handles POST /api/v1/campgrounds/:id/bookings.
func (h *BookingHandler) CreateCampgroundBooking(c *gin.Context) {
	req, ok := requester(c)
	if !ok {
		return
	}
	campgroundID, ok := pathID(c, "campground")
	if !ok {
		return
	}

	var body application.CreateBookingRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	h.create(c, req, campgroundID, body.BookingDate)
}

func (h *BookingHandler) create(c *gin.Context, req application.Requester, campgroundID uuid.UUID, bookingDate string) {
	result, err := h.service.CreateBooking(c.Request.Context(), req, campgroundID, bookingDate)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// ListBookings handles GET /api/v1/bookings. Users see their own bookings,
// admins see everyone's.
func (h *BookingHandler) ListBookings(c *gin.Context) {
	h.list(c, nil)
}

// ListCampgroundBookings handles GET /api/v1/campgrounds/:id/bookings.
func (h *BookingHandler) ListCampgroundBookings(c *gin.Context) {
	campgroundID, ok := pathID(c, "campground")
	if !ok {
		return
	}
	h.list(c, &campgroundID)
}

func (h *BookingHandler) list(c *gin.Context, campgroundID *uuid.UUID) {
	req, ok := requester(c)
	if !ok {
		return
	}
	page, limit := parsePagination(c)

	result, err := h.service.ListBookings(c.Request.Context(), req, campgroundID, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, result.Items, len(result.Items), result.Total, result.Page, result.Limit)
}

// GetBooking handles GET /api/v1/bookings/:id.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	req, ok := requester(c)
	if !ok {
		return
	}
	bookingID, ok := pathID(c, "booking")
	if !ok {
		return
	}

	result, err := h.service.GetBooking(c.Request.Context(), req, bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// UpdateBooking handles PUT /api/v1/bookings/:id.
func (h *BookingHandler) UpdateBooking(c *gin.Context) {
	req, ok := requester(c)
	if !ok {
		return
	}
	bookingID, ok := pathID(c, "booking")
	if !ok {
		return
	}

	var body application.UpdateBookingRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.UpdateBooking(c.Request.Context(), req, bookingID, body)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// DeleteBooking handles DELETE /api/v1/bookings/:id.
func (h *BookingHandler) DeleteBooking(c *gin.Context) {
	req, ok := requester(c)
	if !ok {
		return
	}
	bookingID, ok := pathID(c, "booking")
	if !ok {
		return
	}

	if err := h.service.DeleteBooking(c.Request.Context(), req, bookingID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{})
}
