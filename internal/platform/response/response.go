// Package response writes the JSON envelopes returned by every HTTP handler.
package response

import (
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/Kilat-Pet-Delivery/service-routeplanner/internal/platform/apperr"
	"github.com/gin-gonic/gin"
)

var dismissAfter atomic.Int64

func init() {
	dismissAfter.Store(int64(5 * time.Second))
}

// SetDismissAfter configures how long front-ends should show an error banner.
func SetDismissAfter(d time.Duration) {
	if d > 0 {
		dismissAfter.Store(int64(d))
	}
}

// StatusCoder is implemented by errors that know their own HTTP status.
type StatusCoder interface {
	StatusCode() int
}

// ErrorBody is the error payload shown in the front-end error banner.
type ErrorBody struct {
	Message        string `json:"message"`
	Code           string `json:"code,omitempty"`
	DismissAfterMs int64  `json:"dismiss_after_ms"`
}

// Envelope is the common response shape.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorBody  `json:"error,omitempty"`
	Meta    *PageMeta   `json:"meta,omitempty"`
}

// PageMeta describes a page of a paginated listing.
type PageMeta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int64 `json:"total_pages"`
}

// Success writes a 200 response.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

// Created writes a 201 response.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Data: data})
}

// Paginated writes a 200 response with pagination metadata.
func Paginated(c *gin.Context, items interface{}, total int64, page, limit int) {
	pages := int64(0)
	if limit > 0 {
		pages = (total + int64(limit) - 1) / int64(limit)
	}
	c.JSON(http.StatusOK, Envelope{
		Success: true,
		Data:    items,
		Meta:    &PageMeta{Total: total, Page: page, Limit: limit, TotalPages: pages},
	})
}

// BadRequest writes a 400 response with the given message.
func BadRequest(c *gin.Context, message string) {
	writeError(c, http.StatusBadRequest, string(apperr.KindValidation), message)
}

// Error maps err to an HTTP status and writes its display message.
func Error(c *gin.Context, err error) {
	status, code := classify(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal server error"
	}
	writeError(c, status, code, message)
}

// ErrorWithPrefix behaves like Error but prefixes the display message,
// e.g. "Route calculation failed: No route found between the specified locations".
func ErrorWithPrefix(c *gin.Context, prefix string, err error) {
	status, code := classify(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal server error"
	}
	writeError(c, status, code, prefix+": "+message)
}

func classify(err error) (int, string) {
	var coder StatusCoder
	if errors.As(err, &coder) {
		code := ""
		var named interface{ Code() string }
		if errors.As(err, &named) {
			code = named.Code()
		}
		return coder.StatusCode(), code
	}

	kind, ok := apperr.KindOf(err)
	if !ok {
		return http.StatusInternalServerError, "internal"
	}
	switch kind {
	case apperr.KindValidation:
		return http.StatusBadRequest, string(kind)
	case apperr.KindNotFound:
		return http.StatusNotFound, string(kind)
	case apperr.KindConflict, apperr.KindInvalidState:
		return http.StatusConflict, string(kind)
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func writeError(c *gin.Context, status int, code, message string) {
	c.JSON(status, Envelope{
		Success: false,
		Error: &ErrorBody{
			Message:        message,
			Code:           code,
			DismissAfterMs: time.Duration(dismissAfter.Load()).Milliseconds(),
		},
	})
}
