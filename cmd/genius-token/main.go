// Command genius-token obtains a Genius API access token through the OAuth
// authorization code flow.
//
// It serves a local page that redirects to the Genius authorize page, waits
// for the callback on the configured redirect URL, exchanges the code and
// prints the token to stdout. GENIUS_CLIENT_ID and GENIUS_CLIENT_SECRET are
// required; see the internal/config package for the remaining settings.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"os"

	"github.com/adamwoolhether/genius/internal/config"
	"github.com/adamwoolhether/genius/internal/logger"
	"github.com/adamwoolhether/genius/internal/oauth"
	"github.com/adamwoolhether/genius/internal/web"
	"github.com/adamwoolhether/genius/internal/web/server"
)

func main() {
	if err := run(context.Background(), nil, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "genius-token:", err)
		os.Exit(1)
	}
}

// run serves the flow on ln, or on the configured address when ln is nil,
// until a token is printed or ctx ends.
func run(ctx context.Context, ln net.Listener, stdout, stderr io.Writer) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(stderr, "genius-token", cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}

	redirect, err := url.Parse(cfg.OAuth.RedirectURL)
	if err != nil {
		return fmt.Errorf("parse redirect url: %w", err)
	}
	callbackPath := redirect.Path
	if callbackPath == "" || callbackPath == "/" {
		return errors.New("redirect url needs a callback path, e.g. /callback")
	}

	helper, err := oauth.New(cfg.OAuth, oauth.WithLogger(log), oauth.WithTimeout(cfg.Timeout))
	if err != nil {
		return err
	}

	app := web.New(log, nil, web.Logger(log), web.Errors(log), web.Panics())
	helper.Routes(app, callbackPath)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	srv := server.New(app, server.WithHost(cfg.OAuth.Addr), server.WithLogger(log))

	serveErrs := make(chan error, 1)
	go func() {
		if ln != nil {
			serveErrs <- srv.Serve(ctx, ln)
			return
		}
		serveErrs <- srv.Run(ctx)
	}()

	start := "http://" + cfg.OAuth.Addr + "/"
	if ln != nil {
		start = "http://" + ln.Addr().String() + "/"
	}
	log.Info("open the start page in a browser to authorize", "url", start)

	select {
	case tok := <-helper.Tokens():
		fmt.Fprintln(stdout, tok.AccessToken)
		cancel()
		return <-serveErrs

	case err := <-serveErrs:
		if err == nil {
			return errors.New("server stopped before a token was obtained")
		}
		return err
	}
}
