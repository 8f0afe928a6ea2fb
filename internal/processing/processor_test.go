package processing_test

import (
	"testing"

	"github.com/DeafMist/comment-radar/internal/processing"
	"github.com/stretchr/testify/require"
)

func TestParseSources(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "empty", input: "", want: []string{"all"}},
		{name: "only blanks", input: " , ,, ", want: []string{"all"}},
		{name: "single", input: "programming", want: []string{"programming"}},
		{name: "trimmed", input: " golang ,  rust ", want: []string{"golang", "rust"}},
		{name: "blank entries skipped", input: "a,,b, ,c", want: []string{"a", "b", "c"}},
		{name: "truncated to five", input: "a,b,c,d,e,f,g", want: []string{"a", "b", "c", "d", "e"}},
		{name: "blanks do not count toward the limit", input: ",a,,b,c,,d,e,f", want: []string{"a", "b", "c", "d", "e"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, processing.ParseSources(tt.input))
		})
	}
}

func TestContainsFold(t *testing.T) {
	require.True(t, processing.ContainsFold("I love Rust and Go", "rust"))
	require.True(t, processing.ContainsFold("RUSTACEANS unite", "Rust"))
	require.True(t, processing.ContainsFold("Straße", "STRASSE"))
	require.False(t, processing.ContainsFold("Python only", "rust"))
	require.True(t, processing.ContainsFold("anything", ""))
}

func TestRemoveURLs(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "", want: ""},
		{name: "no urls", input: "Hello world", want: "Hello world"},
		{name: "single url", input: "Check https://example.com for more", want: "Check  for more"},
		{name: "multiple urls", input: "Go https://example.com and http://test.org now", want: "Go  and  now"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, processing.RemoveURLs(tt.input))
		})
	}
}

func TestCleanCloudText(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  string
	}{
		{name: "empty", input: nil, want: ""},
		{name: "punctuation removed", input: []string{"Hello!!!   world"}, want: "Hello world"},
		{name: "apostrophes collapse", input: []string{"don't panic"}, want: "dont panic"},
		{name: "urls and digits", input: []string{"see https://x.io/a?b=1 in 2024"}, want: "see in"},
		{name: "joins bodies", input: []string{"first", "second\nthird"}, want: "first second third"},
		{name: "non ascii letters dropped", input: []string{"café au lait"}, want: "caf au lait"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, processing.CleanCloudText(tt.input))
		})
	}
}

func TestWordFrequencies(t *testing.T) {
	text := "Rust rust borrow borrow borrow checker and the compiler"
	got := processing.WordFrequencies(text, 3, 3)
	want := []processing.WordCount{
		{Word: "borrow", Count: 3},
		{Word: "rust", Count: 2},
		{Word: "checker", Count: 1},
	}
	require.Equal(t, want, got)

	require.Nil(t, processing.WordFrequencies("", 5, 3))
	require.Nil(t, processing.WordFrequencies("the and of", 5, 1))
}

func TestWordFrequenciesUnlimited(t *testing.T) {
	got := processing.WordFrequencies("alpha beta gamma", 0, 0)
	require.Len(t, got, 3)
	require.Equal(t, "alpha", got[0].Word)
}
