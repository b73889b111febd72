package types

type SuccessEnvelope struct {
	Data any `json:"data"`
	Meta *PageMeta `json:"meta,omitempty"`
}

// PageMeta carries offset-pagination metadata for list responses.
type PageMeta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
