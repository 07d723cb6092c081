// Package auth guards the diagnostic status endpoint.
//
// Authenticators validate credentials carried in request headers (a bearer
// JWT or a static API key) and produce an Identity. Require turns an
// Authenticator into HTTP middleware that rejects unauthenticated requests
// with 401 and stores the Identity in the request context.
//
// Readiness and liveness endpoints are never guarded; orchestrators must be
// able to reach them without credentials.
package auth
