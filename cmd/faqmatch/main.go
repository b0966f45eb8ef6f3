// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/poiesic/faqmatch"
	"github.com/poiesic/faqmatch/api"
	"github.com/poiesic/faqmatch/config"
	"github.com/poiesic/faqmatch/core"
	"github.com/poiesic/faqmatch/storage"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "faqmatch",
		Usage: "Answer questions from an FAQ corpus by TF-IDF similarity",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
				EnvVars: []string{config.EnvPrefix + "LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML configuration file",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Start the HTTP server",
				Action: serveCommand,
				Flags: append(corpusFlags(),
					&cli.StringFlag{
						Name:  "host",
						Usage: "Address to listen on",
					},
					&cli.IntFlag{
						Name:    "port",
						Aliases: []string{"p"},
						Usage:   "Port to listen on",
					},
				),
			},
			{
				Name:      "ask",
				Usage:     "Answer one question",
				ArgsUsage: "<question>",
				Action:    askCommand,
				Flags:     corpusFlags(),
			},
			{
				Name:      "search",
				Usage:     "List the best matching entries with their scores",
				ArgsUsage: "<question>",
				Action:    searchCommand,
				Flags: append(corpusFlags(),
					&cli.IntFlag{
						Name:    "top",
						Aliases: []string{"k"},
						Usage:   "Number of matches to show",
						Value:   5,
					},
				),
			},
			{
				Name:   "import",
				Usage:  "Validate a JSON or YAML corpus and store it",
				Action: importCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "Corpus file to import",
						Required: true,
					},
					storeFlag(),
				},
			},
			{
				Name:   "history",
				Usage:  "Show recently answered questions",
				Action: historyCommand,
				Flags: []cli.Flag{
					storeFlag(),
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Number of interactions to show",
						Value:   20,
					},
					&cli.StringFlag{
						Name:  "since",
						Usage: "Show interactions at or after this date (YYYY-MM-DD or RFC 3339), oldest first",
					},
					&cli.StringFlag{
						Name:  "until",
						Usage: "With --since, show interactions before this date (default now)",
					},
					&cli.Uint64Flag{
						Name:  "id",
						Usage: "Show a single interaction",
					},
				},
			},
			{
				Name:   "stats",
				Usage:  "Print corpus and model statistics as JSON",
				Action: statsCommand,
				Flags:  corpusFlags(),
			},
		},
	}
}

func storeFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "store",
		Aliases: []string{"d"},
		Usage:   "Path to BadgerDB database directory",
	}
}

// corpusFlags are shared by every command that answers questions.
func corpusFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "faq-file",
			Aliases: []string{"f"},
			Usage:   "FAQ corpus file (JSON or YAML)",
		},
		&cli.StringFlag{
			Name:  "source",
			Usage: "Corpus source: file or store",
		},
		storeFlag(),
		&cli.Float64Flag{
			Name:    "threshold",
			Aliases: []string{"t"},
			Usage:   "Similarity threshold in [0, 1]",
		},
		&cli.BoolFlag{
			Name:  "record",
			Usage: "Record answered questions in the store",
		},
	}
}

// loadConfig reads the configuration file and environment, then applies
// the flags that were set on the command line.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	var opts []config.Option
	if c.IsSet("faq-file") {
		opts = append(opts, config.WithFAQFile(c.String("faq-file")))
	}
	if c.IsSet("source") {
		opts = append(opts, config.WithCorpusSource(c.String("source")))
	}
	if c.IsSet("store") {
		opts = append(opts, config.WithStoreDir(c.String("store")))
	}
	if c.IsSet("threshold") {
		opts = append(opts, config.WithThreshold(c.Float64("threshold")))
	}
	if c.IsSet("record") {
		opts = append(opts, config.WithRecordInteractions(c.Bool("record")))
	}
	if c.IsSet("host") {
		opts = append(opts, config.WithHost(c.String("host")))
	}
	if c.IsSet("port") {
		opts = append(opts, config.WithPort(c.Int("port")))
	}
	cfg.Apply(opts...)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// An explicit --log-level wins over the configuration file
	if !c.IsSet("log-level") || cfg.Debug {
		installLogger(cfg.SlogLevel())
	}
	return cfg, nil
}

func openEngine(c *cli.Context) (*faqmatch.Engine, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	eng, err := faqmatch.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open engine: %w", err)
	}
	return eng, nil
}

// openReadyEngine opens an engine and initializes its service.
func openReadyEngine(c *cli.Context) (*faqmatch.Engine, error) {
	eng, err := openEngine(c)
	if err != nil {
		return nil, err
	}
	if err := eng.Service().Initialize(c.Context); err != nil {
		eng.Close()
		return nil, fmt.Errorf("failed to initialize FAQ service: %w", err)
	}
	return eng, nil
}

func question(c *cli.Context) (string, error) {
	q := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if q == "" {
		return "", fmt.Errorf("a question is required")
	}
	return q, nil
}

func serveCommand(c *cli.Context) error {
	eng, err := openEngine(c)
	if err != nil {
		return err
	}
	defer eng.Close()
	cfg := eng.Config()

	// The server retries on the first request if this fails
	if err := eng.Service().Initialize(c.Context); err != nil {
		slog.Error("FAQ service initialization failed", "err", err)
	} else {
		slog.Info("FAQ service initialized", "entries", eng.Service().Stats().TotalEntries)
	}

	var opts []api.Option
	if cfg.RecordInteractions {
		recorder, err := api.NewRecorder(eng.Interactions())
		if err != nil {
			return fmt.Errorf("failed to create interaction recorder: %w", err)
		}
		defer recorder.Close()
		opts = append(opts, api.WithRecorder(recorder))
	}

	server := api.NewServer(eng.Service(), cfg, opts...).HTTPServer()

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("starting server", "addr", server.Addr, "version", cfg.ServiceVersion)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func askCommand(c *cli.Context) error {
	q, err := question(c)
	if err != nil {
		return err
	}
	eng, err := openReadyEngine(c)
	if err != nil {
		return err
	}
	defer eng.Close()

	resp, err := eng.Service().ProcessQuery(q)
	if err != nil {
		return err
	}

	if eng.Config().RecordInteractions {
		_, err := eng.Interactions().AddInteractions(c.Context, &core.Interaction{
			Query:   q,
			Sources: resp.Sources,
			Score:   resp.SimilarityScore,
			Matched: resp.Matched,
		})
		if err != nil {
			slog.Error("error recording interaction", "err", err)
		}
	}

	w := c.App.Writer
	fmt.Fprintln(w, resp.Answer)
	if resp.Matched {
		fmt.Fprintf(w, "\nSources: %s (score %.3f)\n", strings.Join(resp.Sources, ", "), resp.SimilarityScore)
	}
	return nil
}

func searchCommand(c *cli.Context) error {
	q, err := question(c)
	if err != nil {
		return err
	}
	eng, err := openReadyEngine(c)
	if err != nil {
		return err
	}
	defer eng.Close()

	matches, err := eng.Service().TopMatches(q, c.Int("top"))
	if err != nil {
		return err
	}

	w := c.App.Writer
	if len(matches) == 0 {
		fmt.Fprintln(w, "No matches above the threshold.")
		return nil
	}
	for i, m := range matches {
		fmt.Fprintf(w, "%d. [%.3f] %s  %s\n", i+1, m.Score, m.Entry.ID, m.Entry.Question)
	}
	return nil
}

func importCommand(c *cli.Context) error {
	eng, err := openEngine(c)
	if err != nil {
		return err
	}
	defer eng.Close()
	if eng.Config().StoreDir == "" {
		return fmt.Errorf("a store directory is required to import")
	}

	n, err := eng.ImportFile(c.Context, c.String("file"))
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Imported %d entries into %s\n", n, eng.Config().StoreDir)
	return nil
}

func historyCommand(c *cli.Context) error {
	eng, err := openEngine(c)
	if err != nil {
		return err
	}
	defer eng.Close()
	if eng.Config().StoreDir == "" {
		return fmt.Errorf("a store directory is required to read history")
	}

	interactions, err := readHistory(c, eng.Interactions())
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}

	w := c.App.Writer
	for _, in := range interactions {
		outcome := "fallback"
		if in.Matched {
			outcome = fmt.Sprintf("%s (%.3f)", strings.Join(in.Sources, ", "), in.Score)
		}
		fmt.Fprintf(w, "#%d  %s  %s  -> %s\n", in.Id, in.Timestamp.Local().Format(time.DateTime), in.Query, outcome)
	}
	return nil
}

func readHistory(c *cli.Context, repo storage.InteractionRepository) ([]*core.Interaction, error) {
	if c.IsSet("id") {
		in, err := repo.GetInteraction(c.Context, core.ID(c.Uint64("id")))
		if err != nil {
			return nil, err
		}
		return []*core.Interaction{in}, nil
	}

	if !c.IsSet("since") {
		if c.IsSet("until") {
			return nil, fmt.Errorf("--until requires --since")
		}
		return repo.GetRecentInteractions(c.Context, c.Int("limit"))
	}

	start, err := parseDate(c.String("since"))
	if err != nil {
		return nil, err
	}
	end := time.Now()
	if c.IsSet("until") {
		if end, err = parseDate(c.String("until")); err != nil {
			return nil, err
		}
	}
	return repo.GetInteractionsByDateRange(c.Context, start, end)
}

// parseDate accepts a local calendar date or an RFC 3339 timestamp.
func parseDate(value string) (time.Time, error) {
	if t, err := time.ParseInLocation(time.DateOnly, value, time.Local); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: use YYYY-MM-DD or RFC 3339", value)
	}
	return t, nil
}

func statsCommand(c *cli.Context) error {
	eng, err := openEngine(c)
	if err != nil {
		return err
	}
	defer eng.Close()

	if err := eng.Service().Initialize(c.Context); err != nil {
		slog.Warn("FAQ service not initialized", "err", err)
	}

	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(eng.Service().Stats())
}

func setupLogger(c *cli.Context) error {
	levelStr := c.String("log-level")
	level, ok := config.LookupLevel(levelStr)
	if !ok {
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}
	installLogger(level)
	return nil
}

func installLogger(level slog.Level) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
}
