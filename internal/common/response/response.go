package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/campground-booking/service-campground/internal/common/domain"
)

// Envelope is the JSON shape of every API response.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// PageInfo points at the neighbouring pages of a paginated listing.
type PageInfo struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// Pagination carries next/prev page hints.
type Pagination struct {
	Next *PageInfo `json:"next,omitempty"`
	Prev *PageInfo `json:"prev,omitempty"`
}

// loggerKey is the gin context key under which the request logger is stored.
const loggerKey = "logger"

// SetLogger attaches a logger used by Error for unexpected failures.
func SetLogger(c *gin.Context, log *zap.Logger) {
	c.Set(loggerKey, log)
}

// Success writes a 200 response with data.
func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

// Created writes a 201 response with data.
func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Data: data})
}

// BadRequest writes a 400 response with a message.
func BadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, Envelope{Success: false, Message: msg})
}

// Unauthorized writes a 401 response.
func Unauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, Envelope{Success: false, Message: msg})
}

// Paginated writes a listing with count and next/prev hints.
func Paginated(c *gin.Context, items any, count int, total int64, page, limit int) {
	pagination := Pagination{}
	if int64(page*limit) < total {
		pagination.Next = &PageInfo{Page: page + 1, Limit: limit}
	}
	if page > 1 {
		pagination.Prev = &PageInfo{Page: page - 1, Limit: limit}
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"count":      count,
		"total":      total,
		"pagination": pagination,
		"data":       items,
	})
}

// Error maps a domain error onto an HTTP status. Unexpected errors are
// logged and reported with a generic message.
func Error(c *gin.Context, err error) {
	kind := domain.KindOf(err)
	status := StatusFor(kind)
	if kind == domain.KindInternal {
		if v, ok := c.Get(loggerKey); ok {
			if log, ok := v.(*zap.Logger); ok {
				log.Error("request failed",
					zap.String("path", c.FullPath()),
					zap.Error(err),
				)
			}
		}
		c.JSON(status, Envelope{Success: false, Message: "Something went wrong, please try again later"})
		return
	}
	c.JSON(status, Envelope{Success: false, Message: err.Error()})
}

// StatusFor returns the HTTP status used for an error kind.
func StatusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindForbidden:
		return http.StatusForbidden
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindInvalidRequest,
		domain.KindInvalidDate,
		domain.KindLimitExceeded,
		domain.KindDuplicateReview,
		domain.KindPaymentIncomplete,
		domain.KindInvalidSession,
		domain.KindIncompleteMetadata,
		domain.KindConfiguration:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
