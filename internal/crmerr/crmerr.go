// Package crmerr translates upstream CRM failures into application HTTP errors.
//
// Low-level client errors never reach the response writer directly. They are
// classified here and turned into errs.HTTPError values with stable codes.
package crmerr

import (
	"errors"
	"strings"

	"github.com/gurri8686/zohoprospects/internal/errs"
	"github.com/gurri8686/zohoprospects/internal/zoho"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Code is the machine-readable category of an error.
type Code string

const (
	Unavailable Code = errs.CodeUpstreamUnavailable
	Rejected    Code = errs.CodeUpstreamRejected
	Malformed   Code = errs.CodeUpstreamMalformed
	Other       Code = "INTERNAL_SERVER_ERROR"
)

// ErrCode reports the category of err.
//
// An *errs.HTTPError reports its own code; upstream errors report their kind.
func ErrCode(err error) Code {
	var httpErr *errs.HTTPError
	if errors.As(err, &httpErr) {
		return Code(httpErr.Code)
	}

	switch {
	case errors.Is(err, zoho.ErrUpstreamUnavailable):
		return Unavailable
	case errors.Is(err, zoho.ErrUpstreamRejected):
		return Rejected
	case errors.Is(err, zoho.ErrUpstreamMalformed):
		return Malformed
	}
	return Other
}

// HandleError converts an error into an application-level error.
//
// Output:
//   - If already *errs.HTTPError: returned unchanged
//   - ErrUpstreamUnavailable: 503 UPSTREAM_UNAVAILABLE
//   - ErrUpstreamRejected: 502 UPSTREAM_REJECTED
//   - ErrUpstreamMalformed: 502 UPSTREAM_MALFORMED
//   - Otherwise: 500
//
// Upstream bodies and URLs stay in the logs; clients only get a generic message.
func HandleError(err error) error {
	var httpErr *errs.HTTPError
	if errors.As(err, &httpErr) {
		return err
	}

	switch ErrCode(err) {
	case Unavailable:
		return errs.NewServiceUnavailableError(userMessage(Unavailable), errs.CodeUpstreamUnavailable)
	case Rejected:
		return errs.NewBadGatewayError(rejectedMessage(err), errs.CodeUpstreamRejected)
	case Malformed:
		return errs.NewBadGatewayError(userMessage(Malformed), errs.CodeUpstreamMalformed)
	}

	return errs.NewInternalServerError()
}

func userMessage(code Code) string {
	switch code {
	case Unavailable:
		return "Zoho CRM is unavailable, please try again later"
	case Rejected:
		return "Zoho CRM rejected the request"
	case Malformed:
		return "Zoho CRM returned an unexpected response"
	}
	return "An error occurred while processing your request"
}

// rejectedMessage adds the upstream status class to the generic message,
// e.g. "Zoho CRM rejected the request (Unauthorized)".
func rejectedMessage(err error) string {
	msg := userMessage(Rejected)

	var zerr *zoho.Error
	if errors.As(err, &zerr) && zerr.StatusCode != 0 {
		if reason := statusReason(zerr.StatusCode); reason != "" {
			msg += " (" + reason + ")"
		}
	}
	return msg
}

func statusReason(status int) string {
	switch status {
	case 400:
		return humanizeText("bad_request")
	case 401:
		return humanizeText("unauthorized")
	case 403:
		return humanizeText("forbidden")
	case 404:
		return humanizeText("not_found")
	case 429:
		return humanizeText("too_many_requests")
	}
	if status >= 500 {
		return humanizeText("upstream_server_error")
	}
	return ""
}

// humanizeText converts snake_case into Title Case.
//
//	"too_many_requests" -> "Too Many Requests"
func humanizeText(text string) string {
	if text == "" {
		return ""
	}
	return cases.Title(language.English).String(strings.ReplaceAll(text, "_", " "))
}
