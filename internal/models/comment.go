package models

import (
	"encoding/json"
	"time"
)

// AllSources is the sentinel source meaning "search everywhere".
const AllSources = "all"

// DateLayout is the date-only format used when records leave the process.
const DateLayout = "2006-01-02"

// Query describes one fetch action.
type Query struct {
	Keyword   string   `json:"keyword" validate:"required"`
	Days      int      `json:"days" validate:"oneof=30 90 180 365"`
	Sources   []string `json:"sources" validate:"min=1,max=5,dive,required"`
	Sentiment bool     `json:"sentiment"`
}

// Submission is a top-level post returned by a title search.
type Submission struct {
	ID        string
	Title     string
	Source    string
	Permalink string
	Created   time.Time
}

// Comment is a single node of an expanded comment tree.
type Comment struct {
	ID        string
	Body      string
	Author    string
	Score     int
	Permalink string
	Created   time.Time
}

// Sentiment is the coarse polarity label attached to a record.
type Sentiment string

const (
	Positive Sentiment = "Positive"
	Neutral  Sentiment = "Neutral"
	Negative Sentiment = "Negative"
)

// Date keeps the full timestamp but renders with day granularity.
type Date struct {
	time.Time
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.UTC().Format(DateLayout)
}

// MarshalJSON renders the date-only form.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts either a date-only value or RFC 3339.
func (d *Date) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	t, err := ParseDate(raw)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// ParseDate parses YYYY-MM-DD or RFC 3339 into UTC.
func ParseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(DateLayout, raw); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// CommentRecord is one row of a result set. Records are never mutated after
// the collector produces them.
type CommentRecord struct {
	Body            string    `json:"comment"`
	Author          string    `json:"author,omitempty"`
	Score           int       `json:"score"`
	SubmissionTitle string    `json:"submission_title"`
	Source          string    `json:"subreddit"`
	Permalink       string    `json:"permalink"`
	Created         Date      `json:"created"`
	Sentiment       Sentiment `json:"sentiment,omitempty"`
}

// Warning is a non-fatal, per-source problem surfaced next to the results.
type Warning struct {
	Source  string `json:"source"`
	Message string `json:"message"`
}

// ResultSet is everything a single fetch produced.
type ResultSet struct {
	ID        string          `json:"id"`
	Query     Query           `json:"query"`
	Records   []CommentRecord `json:"records"`
	Warnings  []Warning       `json:"warnings,omitempty"`
	FetchedAt time.Time       `json:"fetched_at"`
}
