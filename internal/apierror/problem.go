// Package apierror renders RFC 9457 problem details for the HTTP API.
package apierror

// ProblemDetails is an RFC 9457 problem response.
// See https://www.rfc-editor.org/rfc/rfc9457.html
type ProblemDetails struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`

	// Extensions
	RequestID   string       `json:"request_id,omitempty"`
	UserMessage string       `json:"user_message,omitempty"` // safe to show in the app
	RetryAfter  *int         `json:"retry_after,omitempty"`  // seconds, for 429 and 503
	Action      string       `json:"action,omitempty"`       // client hint, e.g. "authenticate"
	Errors      []FieldError `json:"errors,omitempty"`
}

// FieldError describes one invalid request field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Error implements the error interface.
func (p *ProblemDetails) Error() string {
	if p.Detail != "" {
		return p.Detail
	}
	return p.Title
}
