package util

import (
	"errors"
	"net/http"

	"placement_portal_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Response is the uniform JSON envelope.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// PageResponse wraps paginated lists.
type PageResponse struct {
	List  interface{} `json:"list"`
	Total int64       `json:"total"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: "success",
		Data:    data,
	})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    http.StatusCreated,
		Message: "created",
		Data:    data,
	})
}

func Error(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
	})
}

func Unauthorized(c *gin.Context) {
	Error(c, http.StatusUnauthorized, "Unauthorized")
}

func Forbidden(c *gin.Context) {
	Error(c, http.StatusForbidden, "Forbidden")
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

func NotFound(c *gin.Context) {
	Error(c, http.StatusNotFound, "Resource not found")
}

func Conflict(c *gin.Context, message string) {
	Error(c, http.StatusConflict, message)
}

func InternalServerError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, "Internal server error")
}

func LogInternalError(c *gin.Context, err error) {
	logger.Log.Error("Internal server error", zap.Error(err))
	InternalServerError(c)
}

// RespondError maps the service error taxonomy onto HTTP statuses: missing
// resources to 404, terminal-state violations to 409, ownership to 403,
// malformed payloads to 400, everything else to 500.
func RespondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrQuizNotFound),
		errors.Is(err, ErrAttemptNotFound),
		errors.Is(err, ErrQuestionNotFound),
		errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrRecordNotFound):
		NotFound(c)
	case errors.Is(err, ErrAttemptSubmitted),
		errors.Is(err, ErrSessionNotActive),
		errors.Is(err, ErrSubmitInProgress),
		errors.Is(err, ErrAttemptNotGraded):
		Conflict(c, err.Error())
	case errors.Is(err, ErrAttemptForbidden),
		errors.Is(err, ErrPermissionDenied),
		errors.Is(err, ErrQuizNotPublished):
		Forbidden(c)
	case errors.Is(err, ErrInvalidAnswer),
		errors.Is(err, ErrInvalidQuestion),
		errors.Is(err, ErrEmailRegistered):
		BadRequest(c, err.Error())
	default:
		LogInternalError(c, err)
	}
}
