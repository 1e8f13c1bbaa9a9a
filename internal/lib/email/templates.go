package email

import (
	"bytes"
	"embed"
	"strings"
	"text/template"

	"github.com/pkg/errors"
)

// Template is a string-based enum naming email templates.
type Template string

const (
	// TemplateProspectCreated corresponds to templates/emails/prospect_created.txt
	TemplateProspectCreated Template = "prospect_created"
)

//go:embed templates/emails/*.txt
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/emails/*.txt"))

// Render executes the named template with data and returns a plain-text
// body with CRLF line endings.
func Render(name Template, data any) (string, error) {
	var body bytes.Buffer
	if err := templates.ExecuteTemplate(&body, string(name)+".txt", data); err != nil {
		return "", errors.Wrapf(err, "failed to execute email template %s", name)
	}

	text := strings.ReplaceAll(body.String(), "\r\n", "\n")
	return strings.ReplaceAll(text, "\n", "\r\n"), nil
}
