package auth

import (
	"errors"
	"fmt"
	"net/http"
)

// MiddlewareOptions configures Middleware.
type MiddlewareOptions struct {
	// Realm is reported in the WWW-Authenticate challenge.
	// Default: "healthops"
	Realm string

	// RequiredRoles, when set, requires the identity to hold at least one.
	RequiredRoles []string

	// ErrorHandler handles internal authenticator errors.
	// Default: 500 with a plain text body.
	ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)
}

// Middleware returns net/http middleware that authenticates each request
// with authn. Failed authentication yields 401, a missing role yields 403.
// The authenticated identity is attached to the request context.
func Middleware(authn Authenticator, opts MiddlewareOptions) func(http.Handler) http.Handler {
	if opts.Realm == "" {
		opts.Realm = "healthops"
	}
	if opts.ErrorHandler == nil {
		opts.ErrorHandler = func(w http.ResponseWriter, _ *http.Request, _ error) {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
	}
	challenge := fmt.Sprintf("Bearer realm=%q", opts.Realm)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			req := NewAuthRequest(r)

			if !authn.Supports(ctx, req) {
				unauthorized(w, challenge, ErrMissingCredentials)
				return
			}
			result, err := authn.Authenticate(ctx, req)
			if err != nil {
				opts.ErrorHandler(w, r, err)
				return
			}
			if !result.Authenticated {
				unauthorized(w, challenge, result.Error)
				return
			}
			if !result.Identity.HasAnyRole(opts.RequiredRoles...) {
				http.Error(w, ErrForbidden.Error(), http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(ctx, result.Identity)))
		})
	}
}

func unauthorized(w http.ResponseWriter, challenge string, err error) {
	if err == nil {
		err = ErrInvalidCredentials
	}
	// Only the sentinel text reaches the client.
	msg := ErrInvalidCredentials.Error()
	for _, sentinel := range []error{ErrMissingCredentials, ErrTokenExpired, ErrTokenMalformed} {
		if errors.Is(err, sentinel) {
			msg = sentinel.Error()
			break
		}
	}
	w.Header().Set("WWW-Authenticate", challenge)
	http.Error(w, msg, http.StatusUnauthorized)
}
