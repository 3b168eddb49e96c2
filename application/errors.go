package application

import "errors"

type RequestErrorKind string

const (
	// KindTimeout means the request exceeded the gateway's wait ceiling.
	KindTimeout RequestErrorKind = "timeout"
	// KindUnreachable means no response arrived at the network level.
	KindUnreachable RequestErrorKind = "unreachable"
	// KindServiceRejected means the service answered with a non-2xx status.
	KindServiceRejected RequestErrorKind = "service_rejected"
	// KindMalformed means the response body could not be parsed.
	KindMalformed RequestErrorKind = "malformed"
)

// RequestError is the uniform failure shape every gateway call maps into.
// Message is always populated so it can be shown to the user as-is.
type RequestError struct {
	Kind    RequestErrorKind
	Message string
}

func (e *RequestError) Error() string {
	return e.Message
}

// NewRequestError builds a RequestError, substituting a kind-specific
// fallback message when none is given.
func NewRequestError(kind RequestErrorKind, message string) *RequestError {
	if message == "" {
		switch kind {
		case KindTimeout:
			message = "request timed out"
		case KindUnreachable:
			message = "control service unreachable"
		default:
			message = "request failed"
		}
	}
	return &RequestError{Kind: kind, Message: message}
}

// AsRequestError unwraps err into a *RequestError if possible.
func AsRequestError(err error) (*RequestError, bool) {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr, true
	}
	return nil, false
}
