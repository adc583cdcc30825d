// Package web provides the handler, middleware and response helpers used
// by the local OAuth callback listener.
package web

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// App routes requests through a shared middleware stack.
type App struct {
	mux    *http.ServeMux
	mw     []Middleware
	logger *slog.Logger
	tracer trace.Tracer
}

// Handler is a http.Handler that returns an error.
type Handler func(ctx context.Context, w http.ResponseWriter, r *http.Request) error

// Middleware defines a signature to chain Handler together.
type Middleware func(handler Handler) Handler

// New creates an App. A nil logger falls back to slog.Default and a nil
// tracer provider to a no-op one.
func New(logger *slog.Logger, tp trace.TracerProvider, mw ...Middleware) *App {
	if logger == nil {
		logger = slog.Default()
	}
	if tp == nil {
		tp = noop.NewTracerProvider()
	}

	return &App{
		mux:    http.NewServeMux(),
		mw:     mw,
		logger: logger,
		tracer: tp.Tracer("github.com/adamwoolhether/genius/internal/web"),
	}
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mux.ServeHTTP(w, r)
}

// Get registers a handler for GET requests at the given path.
func (a *App) Get(path string, fn Handler, mw ...Middleware) {
	a.Handle(http.MethodGet, path, fn, mw...)
}

// Handle registers handler for method and path, wrapped by route
// middleware first and then the App's middleware.
func (a *App) Handle(method, path string, handler Handler, mw ...Middleware) {
	handler = wrap(mw, handler)
	handler = wrap(a.mw, handler)

	h := func(w http.ResponseWriter, r *http.Request) {
		ctx, span := a.tracer.Start(r.Context(), "web.handler")
		span.SetAttributes(attribute.String("path", r.URL.Path))
		defer span.End()

		traceID := span.SpanContext().TraceID().String()
		if !span.SpanContext().TraceID().IsValid() {
			traceID = uuid.New().String()
		}

		v := Values{
			TraceID: traceID,
			Now:     time.Now().UTC(),
		}

		r = r.WithContext(setValues(ctx, &v))

		if err := handler(r.Context(), w, r); err != nil {
			a.logger.Error("web", "handle", err)
		}
	}

	a.mux.HandleFunc(fmt.Sprintf("%s %s", method, path), h)
}

// wrap middleware around the handler and execute in order given.
func wrap(mw []Middleware, handler Handler) Handler {
	for _, mwFn := range slices.Backward(mw) {
		if mwFn != nil {
			handler = mwFn(handler)
		}
	}

	return handler
}

type ctxKey int

const valuesKey ctxKey = 1

// Values are the per-request values shared with middleware.
type Values struct {
	TraceID    string
	Now        time.Time
	StatusCode int
}

// GetValues retrieves the Values from the given context.
func GetValues(ctx context.Context) *Values {
	v, ok := ctx.Value(valuesKey).(*Values)
	if !ok {
		return &Values{
			TraceID: uuid.Nil.String(),
			Now:     time.Now(),
		}
	}

	return v
}

// SetStatusCode records the response status for the logger middleware.
func SetStatusCode(ctx context.Context, statusCode int) {
	v, ok := ctx.Value(valuesKey).(*Values)
	if !ok {
		return
	}

	v.StatusCode = statusCode
}

func setValues(ctx context.Context, v *Values) context.Context {
	return context.WithValue(ctx, valuesKey, v)
}
