package errs

import (
	"sort"
	"strings"
)

// FieldErrors maps a request field name to the rules it violated.
//
// Example:
//
//	{ "Email": ["must be a valid email address"] }
type FieldErrors map[string][]string

// Add appends a message for field.
func (f FieldErrors) Add(field, message string) {
	f[field] = append(f[field], message)
}

// Fields returns the names of the offending fields in sorted order.
func (f FieldErrors) Fields() []string {
	fields := make([]string, 0, len(f))
	for field := range f {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}

// HTTPError is the main custom error type for API responses.
//
// It implements the `error` interface and is serialized directly to JSON.
// Fields:
//   - Code: machine-friendly error code (e.g. "VALIDATION_FAILED").
//   - Message: human-friendly message.
//   - Status: HTTP status code.
//   - Override: lets the client show Message verbatim.
//   - Errors: per-field validation errors.
type HTTPError struct {
	Code     string      `json:"code"`
	Message  string      `json:"message"`
	Status   int         `json:"status"`
	Override bool        `json:"override"`
	Errors   FieldErrors `json:"errors,omitempty"`
}

func (e *HTTPError) Error() string {
	return e.Message
}

// Is reports whether target is also an *HTTPError.
//
// It does NOT compare Code/Status; it only matches the type.
func (e *HTTPError) Is(target error) bool {
	_, ok := target.(*HTTPError)

	return ok
}

// MakeUpperCaseWithUnderscores converts a string into an UPPER_CASE_WITH_UNDERSCORES format.
//
//	"Bad Request" -> "BAD_REQUEST"
func MakeUpperCaseWithUnderscores(str string) string {
	return strings.ToUpper(strings.ReplaceAll(str, " ", "_"))
}
