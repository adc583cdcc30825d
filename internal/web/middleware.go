package web

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"runtime/debug"
	"time"

	"github.com/adamwoolhether/genius/internal/validate"
)

// Logger logs the start and completion of each request. The query string
// is left out because it carries authorization codes.
func Logger(log *slog.Logger) Middleware {
	m := func(handler Handler) Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			v := GetValues(ctx)

			log.Info("request started", "method", r.Method, "path", r.URL.Path, "remoteaddr", r.RemoteAddr, "trace_id", v.TraceID)

			err := handler(ctx, w, r)

			log.Info("request completed", "method", r.Method, "path", r.URL.Path, "statusCode", v.StatusCode, "since", time.Since(v.Now).String(), "trace_id", v.TraceID)

			return err
		}

		return h
	}

	return m
}

// Errors handles errors coming out of the call chain.
func Errors(log *slog.Logger) Middleware {
	m := func(handler Handler) Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			err := handler(ctx, w, r)
			if err == nil {
				return nil
			}

			if fieldErr, ok := errors.AsType[validate.FieldErrors](err); ok {
				return RespondJSON(ctx, w, http.StatusBadRequest, fieldErr)
			}

			appErr, ok := errors.AsType[*Error](err)
			if !ok { // to catch errs that may have escaped, obscure them from public view.
				appErr = NewInternal(err)
			}

			reqLog := log.With("trace_id", GetValues(ctx).TraceID)
			reqLog.Error(err.Error(), "source_err_file", path.Base(appErr.FileName), "source_err_func", path.Base(appErr.FuncName))

			if appErr.InnerErr { // after logging, obscure the internal error from public view.
				appErr.Message = http.StatusText(appErr.Code)
			}

			return RespondJSON(ctx, w, appErr.Code, appErr)
		}

		return h
	}

	return m
}

// Panics recovers from panics if they occur.
func Panics() Middleware {
	m := func(handler Handler) Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) (err error) {
			defer func() {
				if rec := recover(); rec != nil {
					trace := debug.Stack()
					err = fmt.Errorf("PANIC [%v] TRACE[%s]", rec, string(trace))
				}
			}()

			return handler(ctx, w, r)
		}
		return h
	}
	return m
}
