package common

// ErrorResponse is the error body of every endpoint
type ErrorResponse struct {
	Success        bool     `json:"success"`
	Error          string   `json:"error"`
	Details        string   `json:"details,omitempty"`
	Retryable      bool     `json:"retryable,omitempty"`
	AllowedMethods []string `json:"allowedMethods,omitempty"`
	Timestamp      string   `json:"timestamp,omitempty"`
}

// SuccessResponse is a minimal success body
type SuccessResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// HealthResponse is returned by /health
type HealthResponse struct {
	Status      string `json:"status"`
	Environment string `json:"environment"`
}
