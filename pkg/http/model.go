package http

// APIResponse is the envelope used by catalogue and health endpoints.
type APIResponse struct {
	Status  int         `json:"status" example:"200"`
	Message string      `json:"message" example:"OK"`
	Data    interface{} `json:"data,omitempty"`
}

// DetailResponse is the error body of prediction endpoints: a string for
// request-level failures, a []ValidationError for invalid input.
type DetailResponse struct {
	Detail interface{} `json:"detail"`
}

// ValidationError represents validation error detail.
type ValidationError struct {
	Code    string                 `json:"code,omitempty" example:"ERR_REQUIRED"`
	Field   string                 `json:"field,omitempty" example:"crypto"`
	Message string                 `json:"message,omitempty" example:"crypto is required"`
	Params  map[string]interface{} `json:"params,omitempty"`
}

// ListDataResponse represents a list payload with its size.
type ListDataResponse struct {
	Rows  interface{} `json:"rows"`
	Total int64       `json:"total"`
}
