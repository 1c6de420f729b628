package resp

import (
	"errors"
	"net/http"

	"littlelemon/pkg/apperr"

	"github.com/gin-gonic/gin"
)

func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "data": data})
}
func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, gin.H{"ok": true, "data": data})
}
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
func BadRequest(c *gin.Context, msg string) {
	fail(c, http.StatusBadRequest, apperr.KindValidation, msg)
}
func Unauthorized(c *gin.Context, msg string) {
	fail(c, http.StatusUnauthorized, apperr.KindUnauthorized, msg)
}
func Forbidden(c *gin.Context, msg string) {
	fail(c, http.StatusForbidden, apperr.KindPermissionDenied, msg)
}
func TooManyRequests(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"ok": false, "error": msg, "code": "throttled"})
}

// Error renders err with the status of its kind. Unclassified errors never leak their text.
func Error(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	msg := "internal server error"
	var e *apperr.Error
	if errors.As(err, &e) {
		msg = e.Message
	}
	_ = c.Error(err)
	fail(c, StatusOf(kind), kind, msg)
}

func StatusOf(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized
	case apperr.KindPermissionDenied:
		return http.StatusForbidden
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case apperr.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func fail(c *gin.Context, status int, kind apperr.Kind, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"ok": false, "error": msg, "code": kind})
}
