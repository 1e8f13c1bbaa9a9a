package zoho

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// Sentinel kinds. Match them with errors.Is.
var (
	// ErrUpstreamUnavailable: transport failure, timeout or cancelled context.
	ErrUpstreamUnavailable = errors.New("zoho: upstream unavailable")

	// ErrUpstreamRejected: the API answered with a non-2xx status.
	ErrUpstreamRejected = errors.New("zoho: upstream rejected request")

	// ErrUpstreamMalformed: the response body is not the expected JSON shape.
	ErrUpstreamMalformed = errors.New("zoho: malformed upstream response")
)

// bodyExcerptLimit caps how much of a rejected response body is kept.
const bodyExcerptLimit = 512

// Error describes a failed call to the Zoho CRM API.
type Error struct {
	// Kind is one of the sentinel errors above.
	Kind       error
	Method     string
	URL        string
	StatusCode int

	// Body is an excerpt of the upstream response, set for rejected calls.
	Body string

	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s %s", e.Kind, e.Method, e.URL)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Body != "" {
		msg += ": " + e.Body
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

// Malformed builds an ErrUpstreamMalformed error for a response that could not be interpreted.
func Malformed(method, url string, cause error) *Error {
	return &Error{Kind: ErrUpstreamMalformed, Method: method, URL: url, Err: cause}
}

func excerpt(body []byte) string {
	if len(body) <= bodyExcerptLimit {
		return string(body)
	}
	cut := bodyExcerptLimit
	for cut > 0 && !utf8.RuneStart(body[cut]) {
		cut--
	}
	return string(body[:cut]) + "..."
}
