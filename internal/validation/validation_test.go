package validation

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gurri8686/zohoprospects/internal/errs"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Mobile string `json:"Mobile" validate:"required,mobile"`
	DOB    string `json:"DOB" validate:"required,datetime=2006-01-02"`
	TFN    string `json:"Tax_File_Number" validate:"required,digits=9"`
	Status string `json:"Status" validate:"required,oneof='Ready For Search' 'New Prospect'"`
}

func (s *sample) Validate(v *Validator) error {
	TrimFields(&s.Mobile, &s.DOB, &s.TFN, &s.Status)
	return v.Struct(s)
}

func validSample() *sample {
	return &sample{Mobile: "0412345678", DOB: "1990-05-17", TFN: "123456789", Status: "New Prospect"}
}

func newValidator(t *testing.T, opts Options) *Validator {
	t.Helper()
	v, err := New(opts)
	require.NoError(t, err)
	return v
}

func fieldErrors(t *testing.T, v *Validator, s *sample) errs.FieldErrors {
	t.Helper()
	err := s.Validate(v)
	if err == nil {
		return nil
	}
	fe, ok := ExtractFieldErrors(err)
	require.True(t, ok)
	return fe
}

func TestValidator_Valid(t *testing.T) {
	v := newValidator(t, Options{})
	assert.Nil(t, fieldErrors(t, v, validSample()))
}

func TestValidator_Digits(t *testing.T) {
	v := newValidator(t, Options{})

	for _, tfn := range []string{"12345", "abcdefghi", "1234567890", "12345678-"} {
		t.Run(tfn, func(t *testing.T) {
			s := validSample()
			s.TFN = tfn

			fe := fieldErrors(t, v, s)
			assert.Equal(t, []string{"Tax_File_Number"}, fe.Fields())
			assert.Equal(t, []string{"must be exactly 9 digits"}, fe["Tax_File_Number"])
		})
	}
}

func TestValidator_Date(t *testing.T) {
	v := newValidator(t, Options{})

	for _, dob := range []string{"1990-13-40", "2001-02-30", "17/05/1990", "1990-5-17"} {
		t.Run(dob, func(t *testing.T) {
			s := validSample()
			s.DOB = dob

			fe := fieldErrors(t, v, s)
			assert.Equal(t, []string{"must be a valid date in YYYY-MM-DD format"}, fe["DOB"])
		})
	}
}

func TestValidator_OneOfMessage(t *testing.T) {
	v := newValidator(t, Options{})
	s := validSample()
	s.Status = "Closed"

	fe := fieldErrors(t, v, s)
	assert.Equal(t, []string{"must be one of: Ready For Search, New Prospect"}, fe["Status"])
}

func TestValidator_WhitespaceIsMissing(t *testing.T) {
	v := newValidator(t, Options{})
	s := validSample()
	s.Mobile = "   "

	fe := fieldErrors(t, v, s)
	assert.Equal(t, []string{"is required"}, fe["Mobile"])
}

func TestValidator_MobileToggle(t *testing.T) {
	s := validSample()
	s.Mobile = "+61 412 345 678"

	lenient := newValidator(t, Options{MobilePattern: `^04\d{8}$`})
	assert.Nil(t, fieldErrors(t, lenient, s))

	strict := newValidator(t, Options{EnforceMobileFormat: true, MobilePattern: `^04\d{8}$`})
	fe := fieldErrors(t, strict, s)
	assert.Equal(t, []string{"must be a valid mobile number"}, fe["Mobile"])

	s.Mobile = "0412345678"
	assert.Nil(t, fieldErrors(t, strict, s))
}

func TestNew_InvalidMobilePattern(t *testing.T) {
	_, err := New(Options{EnforceMobileFormat: true, MobilePattern: "("})
	require.Error(t, err)
}

func TestBindAndValidate(t *testing.T) {
	v := newValidator(t, Options{})
	e := echo.New()

	t.Run("malformed json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"Mobile":`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		c := e.NewContext(req, httptest.NewRecorder())

		err := v.BindAndValidate(c, &sample{})

		var httpErr *errs.HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusBadRequest, httpErr.Status)
		assert.Equal(t, "BAD_REQUEST", httpErr.Code)
		assert.NotEmpty(t, httpErr.Message)
	})

	t.Run("validation failure", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"Mobile":"0412345678"}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		c := e.NewContext(req, httptest.NewRecorder())

		err := v.BindAndValidate(c, &sample{})

		var httpErr *errs.HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, errs.CodeValidationFailed, httpErr.Code)
		assert.Equal(t, []string{"DOB", "Status", "Tax_File_Number"}, httpErr.Errors.Fields())
	})
}
