package health

import (
	"fmt"
	"maps"
	"net/http"
)

// ResponseWriter renders a report onto the response. The status code has
// already been chosen when it runs; headers set before the first Write are
// still sent. A returned error aborts the response.
type ResponseWriter func(w http.ResponseWriter, r *http.Request, report Report) error

// ErrorHandler handles an error returned while serving a health request.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// Options configures a health endpoint. It is read-only once passed to
// NewMiddleware.
type Options struct {
	// Names selects the checks to run. Empty runs every registered check.
	Names []string

	// ResultStatusCodes maps each status to an HTTP code.
	// Default: DefaultResultStatusCodes()
	ResultStatusCodes map[Status]int

	// ResponseWriter writes the body. Nil leaves the body empty.
	ResponseWriter ResponseWriter

	// Path is the request path served by Wrap. Empty matches every path.
	Path string

	// AllowCachingResponses disables the no-cache response headers.
	AllowCachingResponses bool

	// ErrorHandler receives errors from ServeHTTP.
	// Default: a plain 500 response.
	ErrorHandler ErrorHandler
}

// Middleware runs a fixed set of checks per request and maps the outcome
// to a status code.
//
// Contract:
// - Concurrency: safe for concurrent requests; the check set is immutable.
// - Context: the request context is passed to the executor unchanged.
// - Errors: configuration and writer errors are returned, never downgraded.
type Middleware struct {
	executor Executor
	checks   []Registration
	codes    map[Status]int
	opts     Options
}

// NewMiddleware validates opts against registry and fixes the check set.
func NewMiddleware(registry *Registry, executor Executor, opts Options) (*Middleware, error) {
	if registry == nil {
		return nil, fmt.Errorf("%w: registry is nil", ErrInvalidArgument)
	}
	if executor == nil {
		return nil, fmt.Errorf("%w: executor is nil", ErrInvalidArgument)
	}

	checks, err := registry.Filter(opts.Names)
	if err != nil {
		return nil, err
	}

	codes := opts.ResultStatusCodes
	if codes == nil {
		codes = DefaultResultStatusCodes()
	} else {
		codes = maps.Clone(codes)
	}
	if opts.ErrorHandler == nil {
		opts.ErrorHandler = defaultErrorHandler
	}

	return &Middleware{
		executor: executor,
		checks:   checks,
		codes:    codes,
		opts:     opts,
	}, nil
}

// Checks returns the names of the checks this middleware runs.
func (m *Middleware) Checks() []string {
	names := make([]string, len(m.checks))
	for i, reg := range m.checks {
		names[i] = reg.Name
	}
	return names
}

// Path returns the request path served by Wrap; empty matches every path.
func (m *Middleware) Path() string {
	return m.opts.Path
}

// Invoke runs the checks and writes exactly one response for r.
func (m *Middleware) Invoke(w http.ResponseWriter, r *http.Request) error {
	report := m.executor.CheckHealth(r.Context(), m.checks)

	code, err := ResolveStatusCode(report.Status, m.codes)
	if err != nil {
		return err
	}

	if !m.opts.AllowCachingResponses {
		h := w.Header()
		h.Set("Cache-Control", "no-store, no-cache")
		h.Set("Pragma", "no-cache")
		h.Set("Expires", "Thu, 01 Jan 1970 00:00:00 GMT")
	}

	if m.opts.ResponseWriter == nil {
		w.WriteHeader(code)
		return nil
	}

	sw := &statusWriter{ResponseWriter: w, code: code}
	if err := m.opts.ResponseWriter(sw, r, report); err != nil {
		return err
	}
	sw.flushHeader()
	return nil
}

// ServeHTTP serves every request as a health request.
func (m *Middleware) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := m.Invoke(w, r); err != nil {
		m.opts.ErrorHandler(w, r, err)
	}
}

// Wrap serves requests for Options.Path and passes the rest to next.
func (m *Middleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.opts.Path != "" && r.URL.Path != m.opts.Path {
			next.ServeHTTP(w, r)
			return
		}
		m.ServeHTTP(w, r)
	})
}

func defaultErrorHandler(w http.ResponseWriter, _ *http.Request, _ error) {
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// statusWriter delays WriteHeader so response writers can still set headers.
type statusWriter struct {
	http.ResponseWriter
	code        int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(code int) {
	if w.wroteHeader {
		return
	}
	w.wroteHeader = true
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	w.flushHeader()
	return w.ResponseWriter.Write(b)
}

func (w *statusWriter) flushHeader() {
	if !w.wroteHeader {
		w.WriteHeader(w.code)
	}
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
