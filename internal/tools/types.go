package tools

// Status reports whether a tool call achieved its purpose.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Error codes surfaced to the model. Coarse on purpose: the model only
// needs enough taxonomy to decide whether retrying or correcting the
// arguments could help.
const (
	ErrCodeValidation = "VALIDATION"
	ErrCodeSizeLimit  = "SIZE_LIMIT"
	ErrCodeNetwork    = "NETWORK"
	ErrCodeIO         = "IO"
)

// Error is a structured failure description for model consumption.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Result is the envelope every tool handler returns. Data carries the
// operation-specific payload on success; Error is set with StatusError.
type Result struct {
	Status  Status `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Error   *Error `json:"error,omitempty"`
}
