// Package auth holds the web-facing guards around the shelf frontend.
//
// Accounts live in the remote catalog API, so nothing here checks
// passwords. The package provides:
//
//   - CSRF protection for the HTML forms (gorilla/csrf)
//   - security headers for every response
//   - a login rate limiter keyed by client IP and identifier
//   - bearer pass-through so JSON clients can call /api routes with the
//     token issued by the catalog instead of a cookie session
//
// # Configuration
//
//	SESSION_SECRET=<any string>  # CSRF key material; random per process if empty
//	SECURE_COOKIES=true          # HTTPS-only cookies
package auth
