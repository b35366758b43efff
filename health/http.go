package health

import (
	"encoding/json"
	"net/http"
	"time"
)

// LivenessHandler returns an HTTP handler for liveness probes.
// This is a simple check that the service is running.
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}
}

// TextResponseWriter writes the overall status name as a plain-text body.
func TextResponseWriter(w http.ResponseWriter, _ *http.Request, report Report) error {
	w.Header().Set("Content-Type", "text/plain")
	_, err := w.Write([]byte(report.Status.Name()))
	return err
}

// HealthResponse is the JSON response for the detailed health endpoint.
type HealthResponse struct {
	Status        string                   `json:"status"`
	Timestamp     string                   `json:"timestamp"`
	TotalDuration string                   `json:"total_duration"`
	Checks        map[string]CheckResponse `json:"checks,omitempty"`
}

// CheckResponse is the JSON response for a single health check.
type CheckResponse struct {
	Status   string         `json:"status"`
	Message  string         `json:"message,omitempty"`
	Duration string         `json:"duration,omitempty"`
	Tags     []string       `json:"tags,omitempty"`
	Details  map[string]any `json:"details,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// NewHealthResponse converts a report to its JSON shape.
func NewHealthResponse(report Report) HealthResponse {
	response := HealthResponse{
		Status:        report.Status.String(),
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		TotalDuration: report.TotalDuration.String(),
		Checks:        make(map[string]CheckResponse, len(report.Entries)),
	}

	for _, entry := range report.Entries {
		result := entry.Result
		check := CheckResponse{
			Status:   result.Status.String(),
			Message:  result.Message,
			Duration: result.Duration.String(),
			Tags:     entry.Tags,
			Details:  result.Details,
		}
		if result.Error != nil {
			check.Error = result.Error.Error()
		}
		response.Checks[entry.Name] = check
	}
	return response
}

// JSONResponseWriter writes the report as a HealthResponse document.
func JSONResponseWriter(w http.ResponseWriter, _ *http.Request, report Report) error {
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(NewHealthResponse(report))
}

// RegisterHandlers registers the conventional probe endpoints on mux:
// /healthz (liveness), /readyz (plain text) and /health (JSON). Every
// registered check runs for /readyz and /health.
func RegisterHandlers(mux *http.ServeMux, registry *Registry, executor Executor) error {
	ready, err := NewMiddleware(registry, executor, Options{
		ResponseWriter: TextResponseWriter,
	})
	if err != nil {
		return err
	}
	detailed, err := NewMiddleware(registry, executor, Options{
		ResponseWriter: JSONResponseWriter,
	})
	if err != nil {
		return err
	}

	mux.HandleFunc("/healthz", LivenessHandler())
	mux.Handle("/readyz", ready)
	mux.Handle("/health", detailed)
	return nil
}
