package models

// APIResponse is the envelope used by the job manager REST gateway
type APIResponse[T any] struct {
	Result  T      `json:"result"`
	Message string `json:"message,omitempty"`
}
