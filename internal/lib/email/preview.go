package email

import "fmt"

// PreviewData contains sample template data for local preview/testing.
var PreviewData = map[Template]any{
	TemplateProspectCreated: ProspectCreated{
		ID:    "4876876000000624001",
		Name:  "Jane Citizen",
		Email: "jane@example.com",
		Link:  "https://crmsandbox.zoho.com.au/crm/newff/tab/CustomModule1/4876876000000624001",
	},
}

// Preview renders templateName with its PreviewData.
func Preview(templateName Template) (string, error) {
	data, ok := PreviewData[templateName]
	if !ok {
		return "", fmt.Errorf("no preview data for template %q", templateName)
	}
	return Render(templateName, data)
}
