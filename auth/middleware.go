package auth

import (
	"net/http"

	"github.com/jonwraymond/healthops/observe"
)

// Require returns HTTP middleware that admits only requests authn accepts.
//
// Rejected requests get 401 with a WWW-Authenticate challenge; an internal
// authenticator error yields 500. Accepted requests carry the Identity in
// their context (see IdentityFromContext).
func Require(authn Authenticator, logger observe.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = observe.NopLogger()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			result, err := authn.Authenticate(ctx, NewAuthRequest(r))
			if err != nil {
				logger.Error(ctx, "authentication error",
					observe.F("path", r.URL.Path),
					observe.F("authenticator", authn.Name()),
					observe.F("error", err),
				)
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}

			if !result.Authenticated || result.Identity.IsExpired() {
				reason := ErrTokenExpired
				if !result.Authenticated {
					reason = result.Error
				}
				logger.Debug(ctx, "request rejected",
					observe.F("path", r.URL.Path),
					observe.F("method", result.Method),
					observe.F("reason", reason),
				)
				w.Header().Set("WWW-Authenticate", `Bearer realm="healthops"`)
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(ctx, result.Identity)))
		})
	}
}
