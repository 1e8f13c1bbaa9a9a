// Package service contains the business logic.
//
// It sits between the handler layer and the upstream CRM client.
// It receives validated data from the handler, calls Zoho CRM,
// shapes the result and dispatches the notification email.
package service
