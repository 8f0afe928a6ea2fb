// Package report shapes an already-bounded result set for display: source
// filtering, sorting, CSV export and chart buckets.
package report

import (
	"fmt"
	"slices"
	"sort"

	"github.com/DeafMist/comment-radar/internal/models"
)

// Sort keys accepted by Sort.
const (
	SortScore   = "score"
	SortCreated = "created"
)

// Bucket dimensions accepted by Buckets.
const (
	ByDate      = "date"
	BySentiment = "sentiment"
)

// Sources lists the distinct sources of records in first-seen order.
func Sources(records []models.CommentRecord) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range records {
		if _, ok := seen[r.Source]; ok {
			continue
		}
		seen[r.Source] = struct{}{}
		out = append(out, r.Source)
	}
	return out
}

// FilterSources keeps records whose source is selected. An empty selection
// keeps everything. The input slice is not modified.
func FilterSources(records []models.CommentRecord, selected []string) []models.CommentRecord {
	if len(selected) == 0 {
		return slices.Clone(records)
	}
	out := make([]models.CommentRecord, 0, len(records))
	for _, r := range records {
		if slices.Contains(selected, r.Source) {
			out = append(out, r)
		}
	}
	return out
}

// Sort returns a copy ordered by the given key, highest first. Equal keys keep
// their traversal order. An empty key leaves the order untouched.
func Sort(records []models.CommentRecord, by string) ([]models.CommentRecord, error) {
	out := slices.Clone(records)
	switch by {
	case "":
	case SortScore:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	case SortCreated:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Created.After(out[j].Created.Time) })
	default:
		return nil, fmt.Errorf("unknown sort key %q", by)
	}
	return out, nil
}

// Bucket is one bar of an activity chart.
type Bucket struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

var sentimentOrder = []models.Sentiment{models.Positive, models.Neutral, models.Negative}

// Buckets counts records per created date (ascending) or per sentiment label.
func Buckets(records []models.CommentRecord, by string) ([]Bucket, error) {
	switch by {
	case ByDate, "":
		counts := make(map[string]int)
		for _, r := range records {
			counts[r.Created.String()]++
		}
		labels := make([]string, 0, len(counts))
		for label := range counts {
			labels = append(labels, label)
		}
		sort.Strings(labels)

		out := make([]Bucket, 0, len(labels))
		for _, label := range labels {
			out = append(out, Bucket{Label: label, Count: counts[label]})
		}
		return out, nil
	case BySentiment:
		counts := make(map[models.Sentiment]int)
		for _, r := range records {
			if r.Sentiment != "" {
				counts[r.Sentiment]++
			}
		}
		out := make([]Bucket, 0, len(sentimentOrder))
		for _, s := range sentimentOrder {
			out = append(out, Bucket{Label: string(s), Count: counts[s]})
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unknown bucket dimension %q", by)
	}
}
