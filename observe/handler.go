package observe

import (
	"net/http"

	"github.com/jonwraymond/healthops/health"
)

// ErrorHandler returns a health.ErrorHandler that logs the failure and
// answers 500. Configuration errors are logged at error level; a client
// that went away is logged at debug level.
func ErrorHandler(logger Logger) health.ErrorHandler {
	if logger == nil {
		logger = noopLogger{}
	}
	return func(w http.ResponseWriter, r *http.Request, err error) {
		ctx := r.Context()
		fields := []Field{
			{Key: "method", Value: r.Method},
			{Key: "path", Value: r.URL.Path},
			{Key: "error", Value: err.Error()},
		}

		if ctx.Err() != nil {
			logger.Debug(ctx, "health request abandoned", fields...)
		} else {
			logger.Error(ctx, "health request failed", fields...)
		}

		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
