package errors

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/stwalsh4118/landledger/internal/envelope"
	"github.com/stwalsh4118/landledger/internal/middleware"
)

// Error code constants for standardized error responses
const (
	ErrNotFound           = envelope.CodeNotFound
	ErrBadRequest         = envelope.CodeBadRequest
	ErrConflict           = envelope.CodeConflict
	ErrInternalServer     = envelope.CodeInternalServer
	ErrValidation         = envelope.CodeValidation
	ErrDatabaseConnection = envelope.CodeDatabaseConnection
	ErrServiceUnavailable = envelope.CodeServiceUnavailable
)

// ErrorResponse is the top-level error response structure.
type ErrorResponse = envelope.ErrorResponse

// ErrorDetail contains the error information.
type ErrorDetail = envelope.ErrorDetail

var (
	translatorOnce sync.Once
	translator     ut.Translator
)

// Translator returns the shared English translator used for validation messages.
func Translator() ut.Translator {
	translatorOnce.Do(func() {
		english := en.New()
		translator, _ = ut.New(english, english).GetTranslator("en")
	})
	return translator
}

// RegisterTranslations installs the English messages for the built-in
// validation tags on v. Tags without a hand-written message fall back to them.
func RegisterTranslations(v *validator.Validate) error {
	return en_translations.RegisterDefaultTranslations(v, Translator())
}

func respond(c *gin.Context, status int, code, message string, details map[string]interface{}) {
	c.JSON(status, envelope.New(code, message, details, middleware.GetRequestID(c)))
}

// NotFound returns a 404 Not Found error response.
func NotFound(c *gin.Context, message string) {
	if log := middleware.GetLogger(c); log != nil {
		log.Warn("Resource not found", map[string]interface{}{
			"message":    message,
			"request_id": middleware.GetRequestID(c),
			"path":       c.Request.URL.Path,
		})
	}

	respond(c, http.StatusNotFound, ErrNotFound, message, nil)
}

// BadRequest returns a 400 Bad Request error response with optional details.
func BadRequest(c *gin.Context, message string, details map[string]interface{}) {
	logFields := map[string]interface{}{
		"message":    message,
		"request_id": middleware.GetRequestID(c),
		"path":       c.Request.URL.Path,
	}
	if details != nil {
		logFields["details"] = details
	}

	if log := middleware.GetLogger(c); log != nil {
		log.Warn("Bad request", logFields)
	}

	respond(c, http.StatusBadRequest, ErrBadRequest, message, details)
}

// Conflict returns a 409 Conflict error response, used when a write would
// collide with an existing resource.
func Conflict(c *gin.Context, message string) {
	if log := middleware.GetLogger(c); log != nil {
		log.Warn("Conflict", map[string]interface{}{
			"message":    message,
			"request_id": middleware.GetRequestID(c),
			"path":       c.Request.URL.Path,
		})
	}

	respond(c, http.StatusConflict, ErrConflict, message, nil)
}

// InternalServerError returns a 500 Internal Server Error response.
// The underlying error is logged but never sent to the client.
func InternalServerError(c *gin.Context, message string, err error) {
	if log := middleware.GetLogger(c); log != nil {
		log.Error("Internal server error", err, map[string]interface{}{
			"message":    message,
			"request_id": middleware.GetRequestID(c),
			"path":       c.Request.URL.Path,
			"method":     c.Request.Method,
		})
	}

	respond(c, http.StatusInternalServerError, ErrInternalServer, message, nil)
}

// ServiceUnavailable returns a 503 response for a dependency that is down.
func ServiceUnavailable(c *gin.Context, code, message string, err error) {
	if log := middleware.GetLogger(c); log != nil {
		log.Error("Service unavailable", err, map[string]interface{}{
			"code":       code,
			"request_id": middleware.GetRequestID(c),
			"path":       c.Request.URL.Path,
		})
	}

	respond(c, http.StatusServiceUnavailable, code, message, nil)
}

// ValidationError returns a 400 Bad Request error response with field-specific validation errors.
func ValidationError(c *gin.Context, validationErrors validator.ValidationErrors) {
	details := make(map[string]interface{})
	for _, err := range validationErrors {
		details[err.Field()] = formatValidationError(err)
	}

	if log := middleware.GetLogger(c); log != nil {
		log.Warn("Validation error", map[string]interface{}{
			"request_id": middleware.GetRequestID(c),
			"path":       c.Request.URL.Path,
			"fields":     details,
		})
	}

	respond(c, http.StatusBadRequest, ErrValidation, "Validation failed for one or more fields", details)
}

// formatValidationError converts a validator.FieldError to a human-readable message.
func formatValidationError(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "This field is required"
	case "min":
		return "Value is too short or small (minimum: " + err.Param() + ")"
	case "max":
		return "Value is too long or large (maximum: " + err.Param() + ")"
	case "gt":
		return "Must be greater than " + err.Param()
	case "gte":
		return "Must be greater than or equal to " + err.Param()
	case "lt":
		return "Must be less than " + err.Param()
	case "lte":
		return "Must be less than or equal to " + err.Param()
	case "oneof":
		return "Must be one of: " + err.Param()
	case "datetime":
		return "Must be a date formatted as " + err.Param()
	}

	if msg := err.Translate(Translator()); msg != "" && msg != err.Error() {
		return msg
	}
	return "Validation failed for tag: " + err.Tag()
}
