package healthecho

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/jonwraymond/healthops/health"
)

func newRegistry(t *testing.T, status health.Status) *health.Registry {
	t.Helper()
	reg := health.NewRegistry()
	if err := reg.AddSimpleFunc("db", func() health.Result {
		return health.Result{Status: status, Message: status.Name()}
	}); err != nil {
		t.Fatalf("AddSimpleFunc() error = %v", err)
	}
	return reg
}

func do(e *echo.Echo, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHandler(t *testing.T) {
	tests := []struct {
		status   health.Status
		wantCode int
	}{
		{health.StatusHealthy, http.StatusOK},
		{health.StatusDegraded, http.StatusOK},
		{health.StatusUnhealthy, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.status.Name(), func(t *testing.T) {
			mw, err := health.NewMiddleware(newRegistry(t, tt.status), health.NewService(), health.Options{
				ResponseWriter: health.TextResponseWriter,
			})
			if err != nil {
				t.Fatalf("NewMiddleware() error = %v", err)
			}
			e := echo.New()
			e.GET("/ready", Handler(mw))

			rec := do(e, "/ready")
			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if rec.Body.String() != tt.status.Name() {
				t.Errorf("body = %q, want %q", rec.Body.String(), tt.status.Name())
			}
		})
	}
}

func TestHandler_ErrorsReachEcho(t *testing.T) {
	mw, _ := health.NewMiddleware(newRegistry(t, health.StatusDegraded), health.NewService(), health.Options{
		ResultStatusCodes: map[health.Status]int{health.StatusHealthy: http.StatusOK},
	})

	var got error
	e := echo.New()
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		got = err
		_ = c.String(http.StatusTeapot, "handled")
	}
	e.GET("/ready", Handler(mw))

	rec := do(e, "/ready")
	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d, want 418 from the echo error handler", rec.Code)
	}
	if !errors.Is(got, health.ErrConfiguration) {
		t.Errorf("error = %v, want ErrConfiguration", got)
	}
}

func TestMiddleware(t *testing.T) {
	mw, _ := health.NewMiddleware(newRegistry(t, health.StatusUnhealthy), health.NewService(), health.Options{
		Path: "/health",
	})

	e := echo.New()
	e.Use(Middleware(mw))
	e.GET("/orders", func(c echo.Context) error {
		return c.String(http.StatusOK, "orders")
	})

	if rec := do(e, "/health"); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("/health status = %d, want 503", rec.Code)
	}
	if rec := do(e, "/orders"); rec.Code != http.StatusOK || rec.Body.String() != "orders" {
		t.Errorf("/orders = %d %q, want 200 from the route", rec.Code, rec.Body.String())
	}
}

func TestRegister(t *testing.T) {
	e := echo.New()
	if err := Register(e, newRegistry(t, health.StatusDegraded), health.NewService()); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if rec := do(e, "/healthz"); rec.Code != http.StatusOK || rec.Body.String() != "OK" {
		t.Errorf("/healthz = %d %q", rec.Code, rec.Body.String())
	}
	if rec := do(e, "/readyz"); rec.Body.String() != "Degraded" {
		t.Errorf("/readyz body = %q, want Degraded", rec.Body.String())
	}

	rec := do(e, "/health")
	var body health.HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode /health: %v", err)
	}
	if body.Checks["db"].Status != health.StatusDegraded.String() {
		t.Errorf("db check = %+v", body.Checks["db"])
	}
}

func TestRegister_NilRegistry(t *testing.T) {
	if err := Register(echo.New(), nil, health.NewService()); !errors.Is(err, health.ErrInvalidArgument) {
		t.Errorf("Register() error = %v, want ErrInvalidArgument", err)
	}
}
