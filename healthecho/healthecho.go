// Package healthecho serves health middleware from an echo server.
//
// Errors from a health request (an unmapped status, a failing response
// writer) are returned to echo so that the server's HTTPErrorHandler
// renders and logs them.
package healthecho

import (
	"github.com/labstack/echo/v4"

	"github.com/jonwraymond/healthops/health"
)

// Handler adapts m to an echo route handler.
func Handler(m *health.Middleware) echo.HandlerFunc {
	return func(c echo.Context) error {
		return m.Invoke(c.Response(), c.Request())
	}
}

// Middleware answers requests for m's path before routing and passes every
// other request on. A middleware without a path answers every request.
func Middleware(m *health.Middleware) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if path := m.Path(); path != "" && c.Request().URL.Path != path {
				return next(c)
			}
			return m.Invoke(c.Response(), c.Request())
		}
	}
}

// Register adds the conventional probe routes to e: /healthz (liveness),
// /readyz (plain text) and /health (JSON), running every registered check.
func Register(e *echo.Echo, registry *health.Registry, executor health.Executor) error {
	ready, err := health.NewMiddleware(registry, executor, health.Options{
		ResponseWriter: health.TextResponseWriter,
	})
	if err != nil {
		return err
	}
	detailed, err := health.NewMiddleware(registry, executor, health.Options{
		ResponseWriter: health.JSONResponseWriter,
	})
	if err != nil {
		return err
	}

	e.GET("/healthz", echo.WrapHandler(health.LivenessHandler()))
	e.GET("/readyz", Handler(ready))
	e.GET("/health", Handler(detailed))
	return nil
}
