// Command genius calls the Genius API and prints the raw JSON responses.
//
// Configuration is read from GENIUS_* environment variables, an optional
// .env file and an optional YAML file named by GENIUS_CONFIG.
//
//	genius search "Kendrick Lamar"
//	genius -text-format plain song 378195
//	genius -per-page 5 -sort popularity artist-songs 16775
//	genius lyrics 378195
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/adamwoolhether/genius"
	"github.com/adamwoolhether/genius/client"
	"github.com/adamwoolhether/genius/internal/config"
	"github.com/adamwoolhether/genius/internal/logger"
	"github.com/adamwoolhether/genius/internal/lyrics"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "genius:", err)
		os.Exit(1)
	}
}

const usage = `usage: genius [flags] <command> [args]

commands:
  search <query>
  artist <id>
  artist-songs <id>
  song <id>
  album <id>
  lyrics <song id>
  annotation <id>
  create-annotation            (JSON body on stdin)
  update-annotation <id>       (JSON body on stdin)
  delete-annotation <id>
  upvote <annotation id>
  unvote <annotation id>
  downvote <annotation id>
  referents                    (use -param song_id=... or web_page_id=...)
  web-page                     (use -param raw_annotatable_url=...)
  account

flags:
`

type command struct {
	args int
	run  func(ctx context.Context, env *env, args []string) ([]byte, error)
}

type env struct {
	api    *genius.Client
	cfg    *config.Config
	log    *slog.Logger
	stdin  io.Reader
	stdout io.Writer
	query  []genius.QueryOption
}

var commands = map[string]command{
	"search": {1, func(ctx context.Context, e *env, a []string) ([]byte, error) {
		return e.api.Search(ctx, a[0], e.query...)
	}},
	"artist": {1, func(ctx context.Context, e *env, a []string) ([]byte, error) {
		return e.api.GetArtist(ctx, a[0], e.query...)
	}},
	"artist-songs": {1, func(ctx context.Context, e *env, a []string) ([]byte, error) {
		return e.api.GetArtistSongs(ctx, a[0], e.query...)
	}},
	"song": {1, func(ctx context.Context, e *env, a []string) ([]byte, error) {
		return e.api.GetSong(ctx, a[0], e.query...)
	}},
	"album": {1, func(ctx context.Context, e *env, a []string) ([]byte, error) {
		return e.api.GetAlbum(ctx, a[0], e.query...)
	}},
	"annotation": {1, func(ctx context.Context, e *env, a []string) ([]byte, error) {
		return e.api.GetAnnotation(ctx, a[0], e.query...)
	}},
	"create-annotation": {0, func(ctx context.Context, e *env, _ []string) ([]byte, error) {
		body, err := readBody(e.stdin)
		if err != nil {
			return nil, err
		}
		return e.api.CreateAnnotation(ctx, body)
	}},
	"update-annotation": {1, func(ctx context.Context, e *env, a []string) ([]byte, error) {
		body, err := readBody(e.stdin)
		if err != nil {
			return nil, err
		}
		return e.api.UpdateAnnotation(ctx, a[0], body)
	}},
	"delete-annotation": {1, func(ctx context.Context, e *env, a []string) ([]byte, error) {
		return e.api.DeleteAnnotation(ctx, a[0])
	}},
	"upvote": {1, func(ctx context.Context, e *env, a []string) ([]byte, error) {
		return e.api.UpvoteAnnotation(ctx, a[0])
	}},
	"unvote": {1, func(ctx context.Context, e *env, a []string) ([]byte, error) {
		return e.api.UnvoteAnnotation(ctx, a[0])
	}},
	"downvote": {1, func(ctx context.Context, e *env, a []string) ([]byte, error) {
		return e.api.DownvoteAnnotation(ctx, a[0])
	}},
	"referents": {0, func(ctx context.Context, e *env, _ []string) ([]byte, error) {
		return e.api.GetReferents(ctx, e.query...)
	}},
	"web-page": {0, func(ctx context.Context, e *env, _ []string) ([]byte, error) {
		return e.api.LookupWebPage(ctx, e.query...)
	}},
	"account": {0, func(ctx context.Context, e *env, _ []string) ([]byte, error) {
		return e.api.GetAccount(ctx, e.query...)
	}},
	"lyrics": {1, fetchLyrics},
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("genius", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}

	var (
		textFormat string
		page       int
		perPage    int
		sort       string
		params     paramFlag
	)
	fs.StringVar(&textFormat, "text-format", "", "comma separated text_format (dom, plain, html)")
	fs.IntVar(&page, "page", 0, "page number")
	fs.IntVar(&perPage, "per-page", 0, "results per page")
	fs.StringVar(&sort, "sort", "", "sort order (title, popularity)")
	fs.Var(&params, "param", "extra query parameter as key=value, may be repeated")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() == 0 {
		fs.Usage()
		return flag.ErrHelp
	}

	name, rest := fs.Arg(0), fs.Args()[1:]
	cmd, ok := commands[name]
	if !ok {
		fs.Usage()
		return fmt.Errorf("unknown command %q", name)
	}
	if len(rest) != cmd.args {
		return fmt.Errorf("%s: expected %d argument(s), got %d", name, cmd.args, len(rest))
	}

	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	log, err := logger.New(stderr, "genius", cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}

	opts := []client.Option{
		client.WithBaseURL(cfg.BaseURL),
		client.WithTimeout(cfg.Timeout),
		client.WithLogger(log),
	}
	if cfg.UserAgent != "" {
		opts = append(opts, client.WithUserAgent(cfg.UserAgent))
	}

	api, err := genius.New(cfg.AccessToken, opts...)
	if err != nil {
		return fmt.Errorf("build client: %w", err)
	}

	e := env{
		api:    api,
		cfg:    cfg,
		log:    log,
		stdin:  stdin,
		stdout: stdout,
	}

	if textFormat != "" {
		var formats []genius.TextFormat
		for f := range strings.SplitSeq(textFormat, ",") {
			formats = append(formats, genius.TextFormat(strings.TrimSpace(f)))
		}
		e.query = append(e.query, genius.WithTextFormat(formats...))
	}
	if page > 0 {
		e.query = append(e.query, genius.WithPage(page))
	}
	if perPage > 0 {
		e.query = append(e.query, genius.WithPerPage(perPage))
	}
	if sort != "" {
		e.query = append(e.query, genius.WithSort(sort))
	}
	if len(params) > 0 {
		e.query = append(e.query, genius.WithParams(params))
	}

	out, err := cmd.run(ctx, &e, rest)
	if err != nil {
		if se, ok := errors.AsType[*client.StatusError](err); ok {
			log.Error("request failed", "status", se.StatusCode)
		}
		return err
	}

	if _, err := stdout.Write(out); err != nil {
		return err
	}
	if len(out) > 0 && out[len(out)-1] != '\n' {
		fmt.Fprintln(stdout)
	}

	return nil
}

// fetchLyrics looks up the song's page URL and scrapes the lyrics from it.
func fetchLyrics(ctx context.Context, e *env, args []string) ([]byte, error) {
	body, err := e.api.GetSong(ctx, args[0])
	if err != nil {
		return nil, err
	}

	resp, err := genius.Decode[struct {
		Song genius.Song `json:"song"`
	}](body)
	if err != nil {
		return nil, err
	}
	if resp.Response.Song.URL == "" {
		return nil, fmt.Errorf("song %s has no page url", args[0])
	}

	e.log.Debug("fetching lyrics", "title", resp.Response.Song.Title, "url", resp.Response.Song.URL)

	text, err := lyrics.NewScraper(e.cfg.Timeout, e.cfg.UserAgent).Fetch(ctx, resp.Response.Song.URL)
	if err != nil {
		return nil, err
	}

	return []byte(text), nil
}

// readBody reads a JSON annotation payload, passed through to the API as is.
func readBody(r io.Reader) (json.RawMessage, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if !json.Valid(b) {
		return nil, errors.New("annotation body on stdin is not valid JSON")
	}

	return json.RawMessage(b), nil
}
