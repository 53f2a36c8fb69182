package response

// Response represents a standard API response format
type Response struct {
	Status     string            `json:"status"`         // "success" or "error"
	StatusCode int               `json:"status_code"`    // HTTP status code
	Code       string            `json:"code,omitempty"` // machine-readable error code
	Data       interface{}       `json:"data,omitempty"`
	Error      string            `json:"error,omitempty"`
	Details    map[string]string `json:"details,omitempty"` // per-field messages
}

// Success returns a standard success response wrapping the data
func Success(statusCode int, data interface{}) Response {
	return Response{
		Status:     "success",
		StatusCode: statusCode,
		Data:       data,
	}
}

// Error returns a standard error response wrapping the error message
func Error(statusCode int, err string) Response {
	return Response{
		Status:     "error",
		StatusCode: statusCode,
		Error:      err,
	}
}

// Coded is Error with a machine-readable code.
func Coded(statusCode int, code, err string) Response {
	r := Error(statusCode, err)
	r.Code = code
	return r
}

// Invalid is a validation failure carrying one message per field.
func Invalid(statusCode int, err string, details map[string]string) Response {
	r := Coded(statusCode, "validation_failed", err)
	r.Details = details
	return r
}
