package utils

import (
	"errors"
	"krishna_store/internal/domain"
	"net/http"

	"github.com/gin-gonic/gin"
)

// RetrySuggestion accompanies infrastructure failures
const RetrySuggestion = "Wait 30 seconds and retry"

// Envelope is the shape of every API response
type Envelope struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	Data       any    `json:"data,omitempty"`
	Error      string `json:"error,omitempty"`      // Only outside release mode
	Suggestion string `json:"suggestion,omitempty"` // Retry hint for 503s
}

// IsDebug reports whether internal error detail may be exposed
func IsDebug() bool {
	return gin.Mode() != gin.ReleaseMode
}

// Success writes a successful envelope
func Success(c *gin.Context, status int, message string, data any) {
	c.JSON(status, Envelope{Success: true, Message: message, Data: data})
}

// Fail writes an error envelope, picking the status from the error kind
func Fail(c *gin.Context, err error) {
	status, body := failure(err)
	c.JSON(status, body)
}

// Abort is Fail for middleware: the handler chain stops here
func Abort(c *gin.Context, err error) {
	status, body := failure(err)
	c.AbortWithStatusJSON(status, body)
}

func failure(err error) (int, Envelope) {
	body := Envelope{Success: false, Message: "Internal server error"}
	var appErr *domain.AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		body.Message = appErr.Message
	}
	kind := domain.KindOf(err)
	status := StatusFor(kind)
	if status == http.StatusServiceUnavailable {
		body.Suggestion = RetrySuggestion
	}
	// Conflict causes name the colliding identifier, so they stay internal in every mode
	if IsDebug() && err != nil && kind != domain.KindConflict {
		body.Error = err.Error()
	}
	return status, body
}

// StatusFor maps an error kind onto an HTTP status code
func StatusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindAuthorization:
		return http.StatusForbidden
	case domain.KindValidation, domain.KindConflict:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindInfrastructure:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
