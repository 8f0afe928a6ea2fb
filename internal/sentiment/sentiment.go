// Package sentiment labels comment text with a coarse polarity class.
package sentiment

import (
	"github.com/jonreiter/govader"

	"github.com/DeafMist/comment-radar/internal/models"
)

// Threshold is the polarity magnitude a text must exceed to leave Neutral.
const Threshold = 0.1

// PolarityScorer returns a polarity in roughly [-1, 1] for a piece of text.
type PolarityScorer interface {
	Polarity(text string) float64
}

// PolarityFunc adapts a plain function to PolarityScorer.
type PolarityFunc func(text string) float64

// Polarity calls f(text).
func (f PolarityFunc) Polarity(text string) float64 { return f(text) }

// Vader scores text with the VADER compound score.
type Vader struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

// NewVader builds a VADER scorer with the bundled lexicon.
func NewVader() *Vader {
	return &Vader{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

// Polarity returns the compound score.
func (v *Vader) Polarity(text string) float64 {
	return v.analyzer.PolarityScores(text).Compound
}

// Tagger maps text to a label. It holds no per-call state.
type Tagger struct {
	scorer PolarityScorer
}

// NewTagger returns a Tagger backed by scorer, or by VADER when scorer is nil.
func NewTagger(scorer PolarityScorer) *Tagger {
	if scorer == nil {
		scorer = NewVader()
	}
	return &Tagger{scorer: scorer}
}

// Classify labels text.
func (t *Tagger) Classify(text string) models.Sentiment {
	return Label(t.scorer.Polarity(text))
}

// Label turns a polarity into a label. Exactly ±Threshold is Neutral.
func Label(polarity float64) models.Sentiment {
	switch {
	case polarity > Threshold:
		return models.Positive
	case polarity < -Threshold:
		return models.Negative
	default:
		return models.Neutral
	}
}
