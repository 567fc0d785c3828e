package types

type SuccessEnvelope struct {
	Data any `json:"data"`
	// Notice carries a human-readable confirmation, including the affected
	// count when one applies ("2 ligne(s) ajoutée(s)").
	Notice string `json:"notice,omitempty"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
