// Package events announces completed queries on a Kafka topic.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/DeafMist/comment-radar/internal/models"
)

// QueryCompleted is the message value published once per fetch.
type QueryCompleted struct {
	ID        string           `json:"id"`
	Keyword   string           `json:"keyword"`
	Days      int              `json:"days"`
	Sources   []string         `json:"sources"`
	Sentiment bool             `json:"sentiment"`
	Count     int              `json:"count"`
	Warnings  []models.Warning `json:"warnings,omitempty"`
	FetchedAt time.Time        `json:"fetched_at"`
}

// FromResultSet summarises a result set without its records.
func FromResultSet(set models.ResultSet) QueryCompleted {
	return QueryCompleted{
		ID:        set.ID,
		Keyword:   set.Query.Keyword,
		Days:      set.Query.Days,
		Sources:   set.Query.Sources,
		Sentiment: set.Query.Sentiment,
		Count:     len(set.Records),
		Warnings:  set.Warnings,
		FetchedAt: set.FetchedAt,
	}
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher writes QueryCompleted events. A nil *Publisher is valid and
// publishes nothing, which is what callers get when no brokers are configured.
type Publisher struct {
	w   messageWriter
	log *slog.Logger
}

// NewPublisher connects a writer to topic. It returns nil when brokers is empty.
func NewPublisher(brokers []string, topic string, logger *slog.Logger) *Publisher {
	if len(brokers) == 0 {
		return nil
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		MaxAttempts:  3,
		RequiredAcks: kafka.RequireOne,
	}
	return newPublisher(w, logger)
}

func newPublisher(w messageWriter, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Publisher{w: w, log: logger}
}

// Publish sends one event keyed by the query id.
func (p *Publisher) Publish(ctx context.Context, set models.ResultSet) error {
	if p == nil {
		return nil
	}

	payload, err := json.Marshal(FromResultSet(set))
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(set.ID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte("query_completed")},
		},
	}
	if err := p.w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write event: %w", err)
	}

	p.log.Debug("query event published", slog.String("query_id", set.ID))
	return nil
}

// Close flushes and closes the writer.
func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	return p.w.Close()
}
