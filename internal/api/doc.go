// Package api implements the HTTP handlers of the roadmap service. Handlers
// decode requests, call the service layer and translate errors into status
// codes and safe messages with MapErrorToStatusCode and GetSafeErrorMessage.
package api
