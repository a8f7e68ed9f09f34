// Package types holds the JSON envelopes every API response is wrapped in.
package types

// SuccessEnvelope wraps a successful response. Meta carries aggregates
// describing Data, such as list counts or the day's totals.
type SuccessEnvelope struct {
	Data any `json:"data"`
	Meta any `json:"meta,omitempty"`
}

// ErrorEnvelope wraps a failed response.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// APIError is the client-facing error. RequestID repeats the X-Request-Id
// header so a cashier can read it off the screen when reporting a problem.
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Details   any    `json:"details,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}
