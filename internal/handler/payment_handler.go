package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/campground-booking/service-campground/internal/application"
	"github.com/campground-booking/service-campground/internal/common/auth"
	"github.com/campground-booking/service-campground/internal/common/middleware"
	"github.com/campground-booking/service-campground/internal/common/response"
)

// PaymentHandler handles hosted checkout and booking finalization.
type PaymentHandler struct {
	service *application.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(service *application.PaymentService) *PaymentHandler {
	return &PaymentHandler{service: service}
}

// RegisterRoutes registers all payment routes.
func (h *PaymentHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	payments := r.Group("/api/v1/payments")
	payments.Use(middleware.AuthMiddleware(jwtManager))
	{
		payments.POST("/create-checkout-session", h.CreateCheckoutSession)
		payments.POST("/finalize-booking", h.FinalizeBooking)
	}
}

// CreateCheckoutSession handles POST /api/v1/payments/create-checkout-session.
func (h *PaymentHandler) CreateCheckoutSession(c *gin.Context) {
	req, ok := requester(c)
	if !ok {
		return
	}

	var body application.CheckoutRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "campgroundId and bookingDate are required")
		return
	}

	result, err := h.service.InitiateCheckout(c.Request.Context(), req, body)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// FinalizeBooking handles POST /api/v1/payments/finalize-booking. A
// first-time finalization answers 201, a repeat answers 200.
func (h *PaymentHandler) FinalizeBooking(c *gin.Context) {
	req, ok := requester(c)
	if !ok {
		return
	}

	var body application.FinalizeRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "sessionId is required")
		return
	}

	result, err := h.service.FinalizeBooking(c.Request.Context(), req, body.SessionID)
	if err != nil {
		response.Error(c, err)
		return
	}

	if result.AlreadyExists {
		response.Success(c, result)
		return
	}
	response.Created(c, result)
}
