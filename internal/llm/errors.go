package llm

import "errors"

// Brief authors treat every one of these as "fall back to the template".
var (
	ErrUnavailable    = errors.New("llm provider unavailable")
	ErrTimeout        = errors.New("llm request timed out")
	ErrRateLimited    = errors.New("llm provider rate limited")
	ErrInvalidOutput  = errors.New("invalid llm output format")
	ErrRetryExhausted = errors.New("llm retry attempts exhausted")
)

// errorCode is the short label logged with each call event.
func errorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTimeout):
		return "TIMEOUT"
	case errors.Is(err, ErrUnavailable):
		return "UNAVAILABLE"
	case errors.Is(err, ErrRateLimited):
		return "RATE_LIMITED"
	case errors.Is(err, ErrInvalidOutput):
		return "INVALID_OUTPUT"
	case errors.Is(err, ErrRetryExhausted):
		return "RETRY_EXHAUSTED"
	default:
		return "UNKNOWN"
	}
}
