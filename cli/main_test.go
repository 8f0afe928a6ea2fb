package main

import (
	"bytes"
	"context"
	"flag"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/DeafMist/comment-radar/internal/logger"
	"github.com/DeafMist/comment-radar/internal/models"
	"github.com/DeafMist/comment-radar/internal/report"
)

type stubFetcher struct {
	queries  []models.Query
	records  []models.CommentRecord
	warnings []models.Warning
}

func (s *stubFetcher) Collect(_ context.Context, q models.Query) ([]models.CommentRecord, []models.Warning) {
	s.queries = append(s.queries, q)
	return s.records, s.warnings
}

type stubPublisher struct {
	sets []models.ResultSet
}

func (s *stubPublisher) Publish(_ context.Context, set models.ResultSet) error {
	s.sets = append(s.sets, set)
	return nil
}

func discard() *slog.Logger {
	return logger.Discard()
}

func records() []models.CommentRecord {
	at := func(d int) models.Date {
		return models.Date{Time: time.Date(2026, 10, d, 12, 0, 0, 0, time.UTC)}
	}
	return []models.CommentRecord{
		{Body: "low", Score: 1, Source: "rust", Created: at(2)},
		{Body: "high", Score: 40, Source: "rust", Created: at(1)},
	}
}

func TestRunWritesSortedExport(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	f := &stubFetcher{
		records:  records(),
		warnings: []models.Warning{{Source: "golang", Message: "Error fetching comments from r/golang: boom"}},
	}
	pub := &stubPublisher{}

	path, err := run(context.Background(), discard(), f, pub, options{
		keyword:   " rust ",
		timeframe: "6 Months",
		sources:   "rust, golang, ,a,b,c,d",
		sort:      report.SortScore,
		out:       dir,
	})
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "rust_reddit_comments.csv"), path)

	require.Len(t, f.queries, 1)
	require.Equal(t, "rust", f.queries[0].Keyword)
	require.Equal(t, 180, f.queries[0].Days)
	require.Equal(t, []string{"rust", "golang", "a", "b", "c"}, f.queries[0].Sources)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	got, err := report.ReadCSV(bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "high", got[0].Body)
	require.Equal(t, "low", got[1].Body)

	require.Len(t, pub.sets, 1)
	require.Len(t, pub.sets[0].Warnings, 1)
}

func TestRunEmptyResultWritesNothing(t *testing.T) {
	dir := t.TempDir()
	f := &stubFetcher{}

	path, err := run(context.Background(), discard(), f, &stubPublisher{}, options{keyword: "rust", out: dir})
	require.NoError(t, err)
	require.Empty(t, path)
	require.Equal(t, 30, f.queries[0].Days)
	require.Equal(t, []string{models.AllSources}, f.queries[0].Sources)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestRunBlankKeywordIsNoop(t *testing.T) {
	f := &stubFetcher{}
	pub := &stubPublisher{}

	path, err := run(context.Background(), discard(), f, pub, options{keyword: "  "})
	require.NoError(t, err)
	require.Empty(t, path)
	require.Empty(t, f.queries)
	require.Empty(t, pub.sets)
}

func TestRunKeepsExportInsideOutputDir(t *testing.T) {
	cases := []struct {
		keyword string
		want    string
	}{
		{keyword: "c/c++", want: "c_c++_reddit_comments.csv"},
		{keyword: "../escaped", want: ".._escaped_reddit_comments.csv"},
		{keyword: `a\b`, want: "a_b_reddit_comments.csv"},
	}
	for _, tc := range cases {
		dir := t.TempDir()
		f := &stubFetcher{records: records()}

		path, err := run(context.Background(), discard(), f, &stubPublisher{}, options{keyword: tc.keyword, out: dir})
		require.NoError(t, err, tc.keyword)
		require.Equal(t, filepath.Join(dir, tc.want), path)
		require.FileExists(t, path)
		require.Equal(t, tc.keyword, f.queries[0].Keyword)
	}
}

func TestRunRejectsBadOptions(t *testing.T) {
	cases := []options{
		{keyword: "rust", timeframe: "2 Weeks"},
		{keyword: "rust", days: 7},
		{keyword: "rust", sort: "author"},
		{keyword: ".."},
	}
	for _, opts := range cases {
		f := &stubFetcher{}
		_, err := run(context.Background(), discard(), f, &stubPublisher{}, opts)
		require.Error(t, err)
		require.Empty(t, f.queries)
	}
}

func TestParseFlags(t *testing.T) {
	opts, err := parseFlags([]string{
		"-keyword", "rust",
		"-timeframe", "12 Months",
		"-sources", "rust,golang",
		"-sentiment",
		"-sort", "created",
		"-out", "/tmp/out",
	}, io.Discard)
	require.NoError(t, err)
	require.Equal(t, options{
		keyword:   "rust",
		timeframe: "12 Months",
		sources:   "rust,golang",
		sentiment: true,
		sort:      "created",
		out:       "/tmp/out",
	}, opts)

	_, err = parseFlags([]string{"-h"}, io.Discard)
	require.ErrorIs(t, err, flag.ErrHelp)

	_, err = parseFlags([]string{"-days", "many"}, io.Discard)
	require.Error(t, err)
}
