// Package prospect defines the request and response shapes of the prospect endpoints.
package prospect

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/gurri8686/zohoprospects/internal/errs"
	"github.com/gurri8686/zohoprospects/internal/validation"
)

// Allowed enumerations.
const (
	AgreedTermsYes = "Yes"
	AgreedTermsNo  = "No"

	StatusReadyForSearch = "Ready For Search"
	StatusNewProspect    = "New Prospect"
)

// CreateProspectPayload is the body of POST /prospects.
//
// Field names match the Zoho CRM API names so clients can send the same
// keys they see in list responses.
type CreateProspectPayload struct {
	FirstName     string `json:"First_Name" validate:"required"`
	Name          string `json:"Name" validate:"required"`
	Mobile        string `json:"Mobile" validate:"required,mobile"`
	Email         string `json:"Email" validate:"required,email"`
	DOB           string `json:"DOB" validate:"required,datetime=2006-01-02"`
	TaxFileNumber string `json:"Tax_File_Number" validate:"required,digits=9"`
	AgreedTerms   string `json:"Agreed_Terms" validate:"required,oneof=Yes No"`
	Status        string `json:"Status" validate:"required,oneof='Ready For Search' 'New Prospect'"`
}

// UnmarshalJSON accepts each field as a JSON string or number, so
// "Tax_File_Number": 123456789 reads as "123456789". null leaves the field
// empty. Any other JSON type is reported as a field error.
func (p *CreateProspectPayload) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	fieldErrors := errs.FieldErrors{}
	for name, dst := range p.fieldsByName() {
		value, ok := raw[name]
		if !ok {
			continue
		}
		s, err := scalarString(value)
		if err != nil {
			fieldErrors.Add(name, "must be a string or number")
			continue
		}
		*dst = s
	}

	if len(fieldErrors) > 0 {
		return errs.ValidationError(fieldErrors)
	}
	return nil
}

func (p *CreateProspectPayload) fieldsByName() map[string]*string {
	return map[string]*string{
		"First_Name":      &p.FirstName,
		"Name":            &p.Name,
		"Mobile":          &p.Mobile,
		"Email":           &p.Email,
		"DOB":             &p.DOB,
		"Tax_File_Number": &p.TaxFileNumber,
		"Agreed_Terms":    &p.AgreedTerms,
		"Status":          &p.Status,
	}
}

var errNotScalar = errors.New("value is not a string or number")

// scalarString returns a JSON string's contents or a number's literal text.
func scalarString(value json.RawMessage) (string, error) {
	value = bytes.TrimSpace(value)
	switch {
	case len(value) == 0:
		return "", errNotScalar
	case bytes.Equal(value, []byte("null")):
		return "", nil
	case value[0] == '"':
		var s string
		if err := json.Unmarshal(value, &s); err != nil {
			return "", err
		}
		return s, nil
	case value[0] == '-' || (value[0] >= '0' && value[0] <= '9'):
		var n json.Number
		if err := json.Unmarshal(value, &n); err != nil {
			return "", err
		}
		return n.String(), nil
	}
	return "", errNotScalar
}

// Validate trims every field, then checks the struct tags.
func (p *CreateProspectPayload) Validate(v *validation.Validator) error {
	validation.TrimFields(
		&p.FirstName,
		&p.Name,
		&p.Mobile,
		&p.Email,
		&p.DOB,
		&p.TaxFileNumber,
		&p.AgreedTerms,
		&p.Status,
	)
	return v.Struct(p)
}

// FullName is the display name used in notifications.
func (p *CreateProspectPayload) FullName() string {
	return p.FirstName + " " + p.Name
}

// ListRecentRequest is the (empty) input of GET /prospects/recent.
type ListRecentRequest struct{}

func (r *ListRecentRequest) Validate(*validation.Validator) error {
	return nil
}

// RecentProspectsResponse wraps the upstream list payload.
type RecentProspectsResponse struct {
	Prospects any `json:"prospects"`
}

// CreateProspectResponse wraps the upstream create payload.
type CreateProspectResponse struct {
	Prospect any `json:"prospect"`

	// ID is the created record id, extracted from the upstream payload.
	ID string `json:"-"`

	// Notification is only present when the notification could not be delivered.
	Notification *NotificationStatus `json:"notification,omitempty"`
}

// NotificationStatus reports a failed "new prospect" email.
type NotificationStatus struct {
	Delivered bool   `json:"delivered"`
	Error     string `json:"error,omitempty"`
}
