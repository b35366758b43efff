package auth_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"

	"github.com/jonwraymond/healthops/auth"
)

func ExampleNewAPIKeyAuthenticator() {
	store := auth.NewMemoryKeyStore()
	_ = store.Put(&auth.APIKey{
		ID:        "monitor",
		Hash:      auth.HashAPIKey("s3cret"),
		Principal: "svc-monitor",
		Roles:     []string{"ops"},
	})
	authn := auth.NewAPIKeyAuthenticator(auth.APIKeyConfig{}, store)

	h := http.Header{}
	h.Set("X-API-Key", "s3cret")
	result, _ := authn.Authenticate(context.Background(), &auth.AuthRequest{Headers: h})

	fmt.Println(result.Authenticated, result.Identity.Principal)
	// Output: true svc-monitor
}

func ExampleMiddleware() {
	store := auth.NewMemoryKeyStore()
	_ = store.Put(&auth.APIKey{ID: "monitor", Hash: auth.HashAPIKey("s3cret"), Principal: "svc-monitor"})
	authn := auth.NewAPIKeyAuthenticator(auth.APIKeyConfig{}, store)

	report := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "report for %s", auth.IdentityFromContext(r.Context()).Principal)
	})
	handler := auth.Middleware(authn, auth.MiddlewareOptions{})(report)

	anonymous := httptest.NewRecorder()
	handler.ServeHTTP(anonymous, httptest.NewRequest(http.MethodGet, "/health", nil))
	fmt.Println(anonymous.Code)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-API-Key", "s3cret")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	fmt.Println(rec.Code, rec.Body.String())
	// Output:
	// 401
	// 200 report for svc-monitor
}

func ExampleChain() {
	authn := auth.Chain(
		auth.NewAPIKeyAuthenticator(auth.APIKeyConfig{}, auth.NewMemoryKeyStore()),
		auth.NewJWTAuthenticator(auth.JWTConfig{}, auth.NewStaticKeyProvider([]byte("secret"))),
	)

	h := http.Header{}
	h.Set("Authorization", "Bearer not-a-token")
	result, _ := authn.Authenticate(context.Background(), &auth.AuthRequest{Headers: h})

	fmt.Println(result.Authenticated, result.Error)
	// Output: false auth: token malformed
}
