// Package api exposes the progress engine over HTTP. Handlers translate
// requests into service calls and map service errors onto status codes with
// client-safe messages; the authenticated learner id is read from the
// request context set by the middleware package.
package api
