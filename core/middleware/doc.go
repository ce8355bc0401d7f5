// Package middleware groups the HTTP middleware for the Fiber application.
//
//   - auth: API key check on every route except the configured public paths.
//   - rayid: tags every request with a ray id, stored in locals and echoed
//     in the X-Ray-ID response header, so logs can be correlated per request.
package middleware
