package sentiment_test

import (
	"testing"

	"github.com/DeafMist/comment-radar/internal/models"
	"github.com/DeafMist/comment-radar/internal/sentiment"
	"github.com/stretchr/testify/require"
)

func TestLabelBoundaries(t *testing.T) {
	tests := []struct {
		name     string
		polarity float64
		want     models.Sentiment
	}{
		{name: "strongly positive", polarity: 0.8, want: models.Positive},
		{name: "just above threshold", polarity: 0.1000001, want: models.Positive},
		{name: "upper boundary", polarity: 0.1, want: models.Neutral},
		{name: "zero", polarity: 0, want: models.Neutral},
		{name: "lower boundary", polarity: -0.1, want: models.Neutral},
		{name: "just below threshold", polarity: -0.1000001, want: models.Negative},
		{name: "strongly negative", polarity: -0.9, want: models.Negative},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, sentiment.Label(tt.polarity))
		})
	}
}

func TestTaggerUsesScorer(t *testing.T) {
	calls := 0
	tagger := sentiment.NewTagger(sentiment.PolarityFunc(func(text string) float64 {
		calls++
		if text == "great" {
			return 0.5
		}
		return -0.5
	}))

	require.Equal(t, models.Positive, tagger.Classify("great"))
	require.Equal(t, models.Negative, tagger.Classify("awful"))
	require.Equal(t, 2, calls)
}

func TestVaderIsDeterministic(t *testing.T) {
	tagger := sentiment.NewTagger(nil)

	text := "This library is absolutely wonderful, I love it!"
	first := tagger.Classify(text)
	for range 5 {
		require.Equal(t, first, tagger.Classify(text))
	}
	require.Equal(t, models.Positive, first)

	require.Equal(t, models.Negative, tagger.Classify("This is terrible and I hate it."))
	require.Equal(t, models.Neutral, tagger.Classify("The meeting is on Tuesday."))
}
