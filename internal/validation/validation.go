// Package validation contains the logic for validating
// request data.
//
// It uses the `validator` library to enforce rules (like
// required fields or email formats) defined in struct tags
// and extracts validation errors into a format the client can
// understand
package validation

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gurri8686/zohoprospects/internal/errs"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// Validatable is implemented by request payload types that know how to validate themselves.
//
// Typical pattern:
// - Define a request struct with validator tags (`validate:"required,email"`)
// - Implement Validate(v) that normalizes fields and runs v.Struct(req)
type Validatable interface {
	Validate(v *Validator) error
}

// Options configures rules whose strictness is a deployment decision.
type Options struct {
	// EnforceMobileFormat turns the `mobile` rule on. When off, `mobile`
	// accepts any value (presence is still checked by `required`).
	EnforceMobileFormat bool
	MobilePattern       string
}

// Validator wraps a configured go-playground validator. Safe for concurrent use.
type Validator struct {
	validate *validator.Validate
}

// New builds a Validator with the custom rules registered:
//   - digits=N: exactly N ASCII digits
//   - mobile:   matches Options.MobilePattern when enforcement is on
func New(opts Options) (*Validator, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON name so clients see the keys they sent.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	if err := validate.RegisterValidation("digits", validateDigits); err != nil {
		return nil, errors.Wrap(err, "failed to register digits rule")
	}

	mobile := func(validator.FieldLevel) bool { return true }
	if opts.EnforceMobileFormat {
		re, err := regexp.Compile(opts.MobilePattern)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid mobile pattern %q", opts.MobilePattern)
		}
		mobile = func(fl validator.FieldLevel) bool {
			return re.MatchString(fl.Field().String())
		}
	}
	if err := validate.RegisterValidation("mobile", mobile); err != nil {
		return nil, errors.Wrap(err, "failed to register mobile rule")
	}

	return &Validator{validate: validate}, nil
}

// Struct validates s against its `validate` tags.
func (v *Validator) Struct(s any) error {
	return v.validate.Struct(s)
}

// BindAndValidate binds request data into payload and validates it.
//
// Flow:
// 1) c.Bind(payload) populates request struct from the incoming request body/params.
// 2) payload.Validate(v) applies validation rules.
// 3) Returns *errs.HTTPError (400) with field-level errors if binding or
//    validation fails.
//
// NOTE: c.Bind expects a pointer to a struct.
func (v *Validator) BindAndValidate(c echo.Context, payload Validatable) error {
	if err := c.Bind(payload); err != nil {
		// Payload decoders may report field-level errors themselves.
		var httpErr *errs.HTTPError
		if errors.As(err, &httpErr) {
			return httpErr
		}
		return errs.NewBadRequestError(bindErrorMessage(err), false, nil, nil)
	}

	if err := payload.Validate(v); err != nil {
		if fieldErrors, ok := ExtractFieldErrors(err); ok {
			return errs.ValidationError(fieldErrors)
		}
		return err
	}

	return nil
}

// bindErrorMessage pulls a client-safe message out of an echo bind error.
func bindErrorMessage(err error) string {
	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		if msg, ok := echoErr.Message.(string); ok && msg != "" {
			return msg
		}
	}
	return "Invalid request body"
}

// ExtractFieldErrors converts validator errors into errs.FieldErrors.
// It reports false when err is not a validation failure.
func ExtractFieldErrors(err error) (errs.FieldErrors, bool) {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil, false
	}

	fieldErrors := errs.FieldErrors{}
	for _, fe := range validationErrors {
		fieldErrors.Add(fe.Field(), messageFor(fe))
	}
	return fieldErrors, true
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"

	case "email":
		return "must be a valid email address"

	case "datetime":
		return fmt.Sprintf("must be a valid date in %s format", layoutLabel(fe.Param()))

	case "digits":
		return fmt.Sprintf("must be exactly %s digits", fe.Param())

	case "mobile":
		return "must be a valid mobile number"

	case "oneof":
		return fmt.Sprintf("must be one of: %s", strings.Join(oneOfValues(fe.Param()), ", "))

	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())

	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must not exceed %s characters", fe.Param())
		}
		return fmt.Sprintf("must not exceed %s", fe.Param())
	}

	if fe.Param() != "" {
		return fmt.Sprintf("failed %s:%s", fe.Tag(), fe.Param())
	}
	return fmt.Sprintf("failed %s", fe.Tag())
}

// validateDigits implements `digits=N`.
func validateDigits(fl validator.FieldLevel) bool {
	n, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}

	value := fl.Field().String()
	if len(value) != n {
		return false
	}
	for i := 0; i < len(value); i++ {
		if value[i] < '0' || value[i] > '9' {
			return false
		}
	}
	return true
}

var oneOfParamRegex = regexp.MustCompile(`'[^']*'|\S+`)

// oneOfValues splits a oneof parameter the way the validator does:
// single quotes group values containing spaces.
func oneOfValues(param string) []string {
	values := oneOfParamRegex.FindAllString(param, -1)
	for i, v := range values {
		values[i] = strings.Trim(v, "'")
	}
	return values
}

// layoutLabel renders a Go time layout as the familiar pattern.
func layoutLabel(layout string) string {
	return strings.NewReplacer("2006", "YYYY", "01", "MM", "02", "DD").Replace(layout)
}
