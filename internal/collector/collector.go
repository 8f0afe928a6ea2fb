// Package collector gathers comment records for a keyword across a list of
// sources, bounded by a global record cap.
package collector

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/DeafMist/comment-radar/internal/models"
	"github.com/DeafMist/comment-radar/internal/processing"
)

// DefaultMaxRecords is the global cap applied when Options leaves it unset.
const DefaultMaxRecords = 100

// PermalinkHost prefixes the relative permalinks the upstream returns.
const PermalinkHost = "https://reddit.com"

// ContentAPI is the upstream the collector reads from.
type ContentAPI interface {
	SearchSubmissions(ctx context.Context, source, keyword string) ([]models.Submission, error)
	ExpandComments(ctx context.Context, sub models.Submission) ([]models.Comment, error)
}

// Classifier labels comment text.
type Classifier interface {
	Classify(text string) models.Sentiment
}

// Options tunes a Collector.
type Options struct {
	// MaxRecords caps the whole query, not each source.
	MaxRecords int
	// RequireBodyMatch additionally demands the keyword in the comment body.
	// When false every in-window comment of a title-matched submission is kept.
	RequireBodyMatch bool
	// Now is the clock; tests pin it.
	Now func() time.Time
}

// Collector runs the bounded multi-source fetch.
type Collector struct {
	api        ContentAPI
	classifier Classifier
	opts       Options
	log        *slog.Logger
}

// New builds a Collector. classifier may be nil when sentiment is never requested.
func New(api ContentAPI, classifier Classifier, opts Options, logger *slog.Logger) *Collector {
	if opts.MaxRecords <= 0 {
		opts.MaxRecords = DefaultMaxRecords
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Collector{api: api, classifier: classifier, opts: opts, log: logger}
}

// Window is the inclusive time range a record must fall into.
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t lies in [Start, End].
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// WindowFor returns [now-days, now].
func WindowFor(now time.Time, days int) Window {
	end := now.UTC()
	return Window{Start: end.AddDate(0, 0, -days), End: end}
}

// Collect walks sources in order, then submissions, then comments, and keeps
// the first MaxRecords matches. A failing source becomes a warning and
// contributes nothing; it never aborts the query.
func (c *Collector) Collect(ctx context.Context, q models.Query) ([]models.CommentRecord, []models.Warning) {
	window := WindowFor(c.opts.Now(), q.Days)
	sources := q.Sources
	if len(sources) == 0 {
		sources = []string{models.AllSources}
	}

	records := make([]models.CommentRecord, 0, c.opts.MaxRecords)
	var warnings []models.Warning

	for _, source := range sources {
		if len(records) >= c.opts.MaxRecords {
			break
		}

		before := len(records)
		var err error
		records, err = c.collectSource(ctx, q, source, window, records)
		if err != nil {
			records = records[:before]
			warnings = append(warnings, models.Warning{
				Source:  source,
				Message: "Error fetching comments from r/" + source + ": " + err.Error(),
			})
			c.log.Warn("source fetch failed",
				slog.String("source", source),
				slog.Any("err", err),
			)
			continue
		}

		c.log.Debug("source collected",
			slog.String("source", source),
			slog.Int("records", len(records)-before),
		)
	}

	return records, warnings
}

func (c *Collector) collectSource(ctx context.Context, q models.Query, source string, window Window, records []models.CommentRecord) ([]models.CommentRecord, error) {
	subs, err := c.api.SearchSubmissions(ctx, source, q.Keyword)
	if err != nil {
		return records, err
	}

	for _, sub := range subs {
		if !window.Contains(sub.Created) {
			continue
		}

		comments, err := c.api.ExpandComments(ctx, sub)
		if err != nil {
			return records, err
		}

		for _, cm := range comments {
			if c.accept(q, window, cm) {
				records = append(records, c.record(q, source, sub, cm))
			}
			if len(records) >= c.opts.MaxRecords {
				return records, nil
			}
		}
	}

	return records, nil
}

func (c *Collector) accept(q models.Query, window Window, cm models.Comment) bool {
	if !window.Contains(cm.Created) {
		return false
	}
	if c.opts.RequireBodyMatch && !processing.ContainsFold(cm.Body, q.Keyword) {
		return false
	}
	return true
}

func (c *Collector) record(q models.Query, source string, sub models.Submission, cm models.Comment) models.CommentRecord {
	if sub.Source != "" {
		source = sub.Source
	}
	rec := models.CommentRecord{
		Body:            cm.Body,
		Author:          cm.Author,
		Score:           cm.Score,
		SubmissionTitle: sub.Title,
		Source:          source,
		Permalink:       PermalinkHost + cm.Permalink,
		Created:         models.Date{Time: cm.Created.UTC()},
	}
	if q.Sentiment && c.classifier != nil {
		rec.Sentiment = c.classifier.Classify(cm.Body)
	}
	return rec
}
