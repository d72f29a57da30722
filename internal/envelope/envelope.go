// Package envelope defines the JSON body of every API error. It has no
// dependencies so that both the middleware and the handler error helpers can
// build responses from the same definition.
package envelope

// Error codes carried in ErrorDetail.Code.
const (
	CodeNotFound           = "NOT_FOUND"
	CodeBadRequest         = "BAD_REQUEST"
	CodeConflict           = "CONFLICT"
	CodeInternalServer     = "INTERNAL_SERVER_ERROR"
	CodeValidation         = "VALIDATION_ERROR"
	CodeDatabaseConnection = "DATABASE_CONNECTION_ERROR"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// ErrorResponse is the top-level error response structure.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains the error information.
type ErrorDetail struct {
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
}

// New builds an error body. Empty details are left out of the JSON.
func New(code, message string, details map[string]interface{}, requestID string) ErrorResponse {
	if len(details) == 0 {
		details = nil
	}
	return ErrorResponse{
		Error: ErrorDetail{
			Code:      code,
			Message:   message,
			Details:   details,
			RequestID: requestID,
		},
	}
}
