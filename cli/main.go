package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/DeafMist/comment-radar/internal/collector"
	"github.com/DeafMist/comment-radar/internal/config"
	"github.com/DeafMist/comment-radar/internal/events"
	"github.com/DeafMist/comment-radar/internal/logger"
	"github.com/DeafMist/comment-radar/internal/models"
	"github.com/DeafMist/comment-radar/internal/processing"
	"github.com/DeafMist/comment-radar/internal/reddit"
	"github.com/DeafMist/comment-radar/internal/report"
	"github.com/DeafMist/comment-radar/internal/sentiment"
)

type fetcher interface {
	Collect(ctx context.Context, q models.Query) ([]models.CommentRecord, []models.Warning)
}

type eventPublisher interface {
	Publish(ctx context.Context, set models.ResultSet) error
}

type options struct {
	keyword   string
	timeframe string
	days      int
	sources   string
	sentiment bool
	sort      string
	out       string
}

func main() {
	log := logger.New("cli")

	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		log.Error("parse flags", slog.Any("err", err))
		os.Exit(2)
	}
	if strings.TrimSpace(opts.keyword) == "" {
		fmt.Fprintln(os.Stderr, "usage: cli -keyword <word> [-timeframe \"1 Month\"|-days 30] [-sources a,b] [-sentiment] [-sort score|created] [-out dir]")
		return
	}

	cfg, err := config.LoadCLI()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}
	if opts.out == "" {
		opts.out = cfg.OutputDir
	}

	client, err := reddit.New(reddit.Options{
		APIBase:      cfg.Reddit.APIBase,
		TokenURL:     cfg.Reddit.TokenURL,
		ClientID:     cfg.Reddit.ClientID,
		ClientSecret: cfg.Reddit.ClientSecret,
		UserAgent:    cfg.Reddit.UserAgent,
		SearchLimit:  cfg.Reddit.SearchLimit,
		SearchSort:   cfg.Reddit.SearchSort,
		TimeFilter:   cfg.Reddit.TimeFilter,
		HTTPTimeout:  cfg.Reddit.HTTPTimeout,
	}, log)
	if err != nil {
		log.Error("init reddit client", slog.Any("err", err))
		os.Exit(1)
	}

	coll := collector.New(client, sentiment.NewTagger(nil), collector.Options{
		MaxRecords:       cfg.Collect.MaxRecords,
		RequireBodyMatch: cfg.Collect.RequireBodyMatch,
	}, log)

	publisher := events.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	_, runErr := run(ctx, log, coll, publisher, opts)
	if err := publisher.Close(); err != nil {
		log.Error("close publisher", slog.Any("err", err))
	}
	if runErr != nil {
		log.Error("fetch comments", slog.Any("err", runErr))
		os.Exit(1)
	}
}

func parseFlags(args []string, output io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("cli", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&opts.keyword, "keyword", "", "keyword searched in submission titles and comment bodies")
	fs.StringVar(&opts.timeframe, "timeframe", "", `lookback label: "1 Month", "3 Months", "6 Months" or "12 Months"`)
	fs.IntVar(&opts.days, "days", 0, "lookback in days (30, 90, 180 or 365); ignored when -timeframe is set")
	fs.StringVar(&opts.sources, "sources", "", "comma-separated subreddits, at most 5; empty searches everywhere")
	fs.BoolVar(&opts.sentiment, "sentiment", false, "tag every comment with a sentiment label")
	fs.StringVar(&opts.sort, "sort", "", "order the export by score or created")
	fs.StringVar(&opts.out, "out", "", "output directory for the csv export")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	return opts, nil
}

// run performs one cold fetch and writes the export. It returns the path of
// the written file, or "" when nothing was found.
func run(ctx context.Context, log *slog.Logger, f fetcher, pub eventPublisher, opts options) (string, error) {
	keyword := strings.TrimSpace(opts.keyword)
	if keyword == "" {
		return "", nil
	}

	days, err := models.ResolveDays(opts.timeframe, opts.days)
	if err != nil {
		return "", err
	}
	if _, err := report.Sort(nil, opts.sort); err != nil {
		return "", err
	}
	filename, err := exportFilename(keyword)
	if err != nil {
		return "", err
	}

	q := models.Query{
		Keyword:   keyword,
		Days:      days,
		Sources:   processing.ParseSources(opts.sources),
		Sentiment: opts.sentiment,
	}
	records, warnings := f.Collect(ctx, q)

	set := models.ResultSet{
		ID:        uuid.NewString(),
		Query:     q,
		Records:   records,
		Warnings:  warnings,
		FetchedAt: time.Now().UTC(),
	}
	log = log.With(slog.String("query_id", set.ID))
	for _, warn := range warnings {
		log.Warn("source skipped", slog.String("source", warn.Source), slog.String("message", warn.Message))
	}
	if err := pub.Publish(ctx, set); err != nil {
		log.Warn("publish query event", slog.Any("err", err))
	}

	if len(records) == 0 {
		log.Info("No comments found. Try another keyword, subreddit, or time frame.")
		return "", nil
	}

	sorted, err := report.Sort(records, opts.sort)
	if err != nil {
		return "", err
	}

	path, err := writeExport(opts.out, filename, sorted)
	if err != nil {
		return "", err
	}
	log.Info(fmt.Sprintf("Found %d Reddit comments.", len(records)), slog.String("file", path))
	return path, nil
}

// exportFilename turns the keyword into a single file name inside the output
// directory. Path separators become underscores.
func exportFilename(keyword string) (string, error) {
	safe := strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == filepath.Separator {
			return '_'
		}
		return r
	}, keyword)
	if safe == "." || safe == ".." {
		return "", fmt.Errorf("keyword %q cannot name an export file", keyword)
	}
	return report.CSVFilename(safe), nil
}

func writeExport(dir, filename string, records []models.CommentRecord) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	path := filepath.Join(dir, filename)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create export: %w", err)
	}
	if err := report.WriteCSV(f, records); err != nil {
		_ = f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close export: %w", err)
	}
	return path, nil
}
