package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/DeafMist/comment-radar/internal/config"
	"github.com/DeafMist/comment-radar/internal/models"
	"github.com/DeafMist/comment-radar/internal/processing"
	"github.com/DeafMist/comment-radar/internal/report"
	"github.com/DeafMist/comment-radar/internal/session"
)

const (
	emptyResultMessage = "No comments found. Try another keyword, subreddit, or time frame."
	maxBodyBytes       = 1 << 20
)

type fetcher interface {
	Collect(ctx context.Context, q models.Query) ([]models.CommentRecord, []models.Warning)
}

type eventPublisher interface {
	Publish(ctx context.Context, set models.ResultSet) error
}

type server struct {
	log       *slog.Logger
	cfg       *config.API
	fetch     fetcher
	store     *session.Store
	publisher eventPublisher
	validate  *queryValidator
	newID     func() string
	now       func() time.Time
}

func newServer(log *slog.Logger, cfg *config.API, f fetcher, store *session.Store, pub eventPublisher) *server {
	return &server{
		log:       log,
		cfg:       cfg,
		fetch:     f,
		store:     store,
		publisher: pub,
		validate:  newQueryValidator(),
		newID:     uuid.NewString,
		now:       time.Now,
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

type queryResponse struct {
	ID       string                 `json:"id"`
	Query    models.Query           `json:"query"`
	Records  []models.CommentRecord `json:"records"`
	Warnings []models.Warning       `json:"warnings,omitempty"`
	Sources  []string               `json:"sources"`
	Count    int                    `json:"count"`
	Message  string                 `json:"message,omitempty"`
}

type chartResponse struct {
	By      string          `json:"by"`
	Buckets []report.Bucket `json:"buckets"`
}

type wordCloudResponse struct {
	Words []processing.WordCount `json:"words"`
}

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handleTimeframes(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, models.Timeframes())
}

func (s *server) handleCreateQuery(w http.ResponseWriter, r *http.Request) {
	req, err := decodeQueryRequest(w, r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	keyword := strings.TrimSpace(req.Keyword)
	if keyword == "" {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	days, err := models.ResolveDays(req.Timeframe, req.Days)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	q := models.Query{
		Keyword:   keyword,
		Days:      days,
		Sources:   processing.LimitSources(req.Sources),
		Sentiment: req.Sentiment,
	}
	if err := s.validate.Check(q); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	records, warnings := s.fetch.Collect(r.Context(), q)
	if records == nil {
		records = []models.CommentRecord{}
	}
	set := models.ResultSet{
		ID:        s.newID(),
		Query:     q,
		Records:   records,
		Warnings:  warnings,
		FetchedAt: s.now().UTC(),
	}
	s.store.Put(set)

	log := s.log.With(slog.String("query_id", set.ID))
	for _, warn := range warnings {
		log.Warn("source skipped", slog.String("source", warn.Source), slog.String("message", warn.Message))
	}
	log.Info("query completed",
		slog.String("keyword", q.Keyword),
		slog.Int("days", q.Days),
		slog.Int("records", len(records)),
	)

	if err := s.publisher.Publish(r.Context(), set); err != nil {
		log.Warn("publish query event", slog.Any("err", err))
	}

	resp := queryResponse{
		ID:       set.ID,
		Query:    q,
		Records:  records,
		Warnings: warnings,
		Sources:  nonNil(report.Sources(records)),
		Count:    len(records),
		Message:  fmt.Sprintf("Found %d Reddit comments.", len(records)),
	}
	if len(records) == 0 {
		resp.Message = emptyResultMessage
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *server) handleRecords(w http.ResponseWriter, r *http.Request) {
	set, ok := s.lookup(w, r)
	if !ok {
		return
	}
	records, err := view(set, r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, queryResponse{
		ID:       set.ID,
		Query:    set.Query,
		Records:  records,
		Warnings: set.Warnings,
		Sources:  nonNil(report.Sources(set.Records)),
		Count:    len(records),
	})
}

func (s *server) handleCSV(w http.ResponseWriter, r *http.Request) {
	set, ok := s.lookup(w, r)
	if !ok {
		return
	}
	records, err := view(set, r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	var buf bytes.Buffer
	if err := report.WriteCSV(&buf, records); err != nil {
		s.log.Error("encode csv", slog.String("query_id", set.ID), slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	disposition := mime.FormatMediaType("attachment", map[string]string{
		"filename": report.CSVFilename(set.Query.Keyword),
	})
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", disposition)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *server) handleChart(w http.ResponseWriter, r *http.Request) {
	set, ok := s.lookup(w, r)
	if !ok {
		return
	}
	by, buckets, err := chartBuckets(set, r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, chartResponse{By: by, Buckets: buckets})
}

func (s *server) handleChartHTML(w http.ResponseWriter, r *http.Request) {
	set, ok := s.lookup(w, r)
	if !ok {
		return
	}
	by, buckets, err := chartBuckets(set, r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	title, xName := "Comment Activity Over Time", "Date"
	if by == report.BySentiment {
		title, xName = "Sentiment Distribution", "Sentiment"
	}

	var buf bytes.Buffer
	if err := report.RenderChart(&buf, title, xName, buckets); err != nil {
		s.log.Error("render chart", slog.String("query_id", set.ID), slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *server) handleWordCloud(w http.ResponseWriter, r *http.Request) {
	set, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, wordCloudResponse{Words: s.wordCounts(set, r)})
}

func (s *server) handleWordCloudHTML(w http.ResponseWriter, r *http.Request) {
	set, ok := s.lookup(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := report.RenderWordCloud(&buf, "Word Cloud", s.wordCounts(set, r)); err != nil {
		s.log.Error("render word cloud", slog.String("query_id", set.ID), slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// wordCounts ranks the words of the comments selected by ?sources=.
func (s *server) wordCounts(set models.ResultSet, r *http.Request) []processing.WordCount {
	records := report.FilterSources(set.Records, parseCSV(r.URL.Query().Get("sources")))

	texts := make([]string, 0, len(records))
	for _, rec := range records {
		texts = append(texts, rec.Body)
	}
	words := processing.WordFrequencies(processing.CleanCloudText(texts), s.cfg.WordCloudLimit, s.cfg.WordCloudMinLen)
	if words == nil {
		words = []processing.WordCount{}
	}
	return words
}

func (s *server) lookup(w http.ResponseWriter, r *http.Request) (models.ResultSet, bool) {
	id := chi.URLParam(r, "id")
	set, ok := s.store.Get(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "query not found"})
		return models.ResultSet{}, false
	}
	return set, true
}

// view applies the ?sources= filter and ?sort= order shared by the table and CSV.
func view(set models.ResultSet, r *http.Request) ([]models.CommentRecord, error) {
	records := report.FilterSources(set.Records, parseCSV(r.URL.Query().Get("sources")))
	return report.Sort(records, strings.TrimSpace(r.URL.Query().Get("sort")))
}

func chartBuckets(set models.ResultSet, r *http.Request) (string, []report.Bucket, error) {
	by := strings.TrimSpace(r.URL.Query().Get("by"))
	if by == "" {
		by = report.ByDate
	}
	records := report.FilterSources(set.Records, parseCSV(r.URL.Query().Get("sources")))
	buckets, err := report.Buckets(records, by)
	if err != nil {
		return "", nil, err
	}
	return by, buckets, nil
}

// queryRequest accepts either a JSON body or a urlencoded form.
type queryRequest struct {
	Keyword   string     `json:"keyword"`
	Timeframe string     `json:"timeframe"`
	Days      int        `json:"days"`
	Sources   sourceList `json:"sources"`
	Sentiment bool       `json:"sentiment"`
}

// sourceList decodes from a JSON array or a comma-separated string.
type sourceList []string

func (l *sourceList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*l = list
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("sources must be a string or a list of strings")
	}
	*l = strings.Split(raw, ",")
	return nil
}

func decodeQueryRequest(w http.ResponseWriter, r *http.Request) (queryRequest, error) {
	var req queryRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			return req, fmt.Errorf("decode query: %w", err)
		}
		return req, nil
	}

	if err := r.ParseForm(); err != nil {
		return req, fmt.Errorf("parse form: %w", err)
	}
	req.Keyword = r.PostForm.Get("keyword")
	req.Timeframe = strings.TrimSpace(r.PostForm.Get("timeframe"))
	req.Sources = strings.Split(r.PostForm.Get("sources"), ",")

	if raw := strings.TrimSpace(r.PostForm.Get("days")); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil {
			return req, fmt.Errorf("parse days %q: %w", raw, err)
		}
		req.Days = days
	}
	if raw := strings.TrimSpace(r.PostForm.Get("sentiment")); raw != "" {
		on, err := strconv.ParseBool(raw)
		if err != nil {
			return req, fmt.Errorf("parse sentiment %q: %w", raw, err)
		}
		req.Sentiment = on
	}
	return req, nil
}

func parseCSV(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// headers are already sent, an encode error has nowhere to go
	_ = json.NewEncoder(w).Encode(payload)
}
