// Package handler is the HTTP layer that sits right after the router.
//
// It binds and validates requests using the validation package, calls the
// service layer and writes JSON responses. Errors are returned to the
// global error handler rather than written here.
package handler
