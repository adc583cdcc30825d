package server

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"testing"
	"time"
)

func TestNew_Defaults(t *testing.T) {
	srv := New(http.NewServeMux())

	if srv.srv.Addr != "localhost:3000" {
		t.Errorf("addr = %q, want %q", srv.srv.Addr, "localhost:3000")
	}
	if srv.shutdownTimeout != 5*time.Second {
		t.Errorf("shutdown timeout = %v, want %v", srv.shutdownTimeout, 5*time.Second)
	}
	if srv.logger == nil {
		t.Error("logger is nil, want slog.Default()")
	}
}

func TestNew_WithOptions(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	srv := New(http.NewServeMux(),
		WithHost("127.0.0.1:9090"),
		WithShutdownTimeout(time.Second),
		WithLogger(logger),
	)

	if srv.srv.Addr != "127.0.0.1:9090" {
		t.Errorf("addr = %q, want %q", srv.srv.Addr, "127.0.0.1:9090")
	}
	if srv.shutdownTimeout != time.Second {
		t.Errorf("shutdown timeout = %v, want %v", srv.shutdownTimeout, time.Second)
	}
	if srv.logger != logger {
		t.Error("logger not applied")
	}
}

func TestServe_StopsWhenContextEnds(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /ping", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "pong")
	})

	srv := New(mux, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))

	ctx, cancel := context.WithCancel(t.Context())
	errs := make(chan error, 1)
	go func() { errs <- srv.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/ping")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(body) != "pong" {
		t.Errorf("body = %q, want %q", body, "pong")
	}

	cancel()

	select {
	case err := <-errs:
		if err != nil {
			t.Fatalf("expected clean shutdown, got: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
