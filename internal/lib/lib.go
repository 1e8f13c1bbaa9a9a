// Package lib holds supporting modules that do not fit strictly into
// other layers.
//
// It contains the notification email client (Resend, SendGrid, SES),
// the background job queue (Redis/Asynq) and small shared utilities.
package lib
