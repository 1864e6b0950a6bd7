// Package middleware contains HTTP middleware for the Fiber application.
//
// # Components
//
//   - auth: API key validation protecting every route.
//   - rayid: a unique request id (RayID) per request, stored in the context
//     and echoed in the X-Ray-ID response header for tracing.
//
// RayID must be registered first so that auth failures are traceable too.
package middleware
