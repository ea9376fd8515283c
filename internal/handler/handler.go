// Package handler exposes the application services over HTTP with gin.
package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/campground-booking/service-campground/internal/application"
	"github.com/campground-booking/service-campground/internal/common/middleware"
	"github.com/campground-booking/service-campground/internal/common/response"
)

const (
	defaultPageLimit = 25
	maxPageLimit     = 100
)

// requester builds the caller identity set by AuthMiddleware. It aborts
// with 401 when the context carries none.
func requester(c *gin.Context) (application.Requester, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "Not authorized to access this route")
		return application.Requester{}, false
	}
	role, ok := middleware.GetUserRole(c)
	if !ok {
		response.Unauthorized(c, "Not authorized to access this route")
		return application.Requester{}, false
	}
	return application.Requester{UserID: userID, Role: role, Email: middleware.GetUserEmail(c)}, true
}

// pathID parses the :id parameter, answering 400 for anything but a UUID.
func pathID(c *gin.Context, entity string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid "+entity+" ID")
		return uuid.Nil, false
	}
	return id, true
}

// parsePagination extracts page and limit query parameters with defaults.
func parsePagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageLimit)))

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	return page, limit
}
