package report

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/DeafMist/comment-radar/internal/processing"
)

// RenderChart writes a standalone HTML bar chart of the buckets.
func RenderChart(w io.Writer, title, xName string, buckets []Bucket) error {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title}),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithXAxisOpts(opts.XAxis{Name: xName}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Number of Comments"}),
	)

	labels := make([]string, 0, len(buckets))
	values := make([]opts.BarData, 0, len(buckets))
	for _, b := range buckets {
		labels = append(labels, b.Label)
		values = append(values, opts.BarData{Value: b.Count})
	}
	bar.SetXAxis(labels).AddSeries("Comments", values)

	if err := bar.Render(w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}

// RenderWordCloud writes a standalone HTML word cloud, one entry per word
// sized by its count.
func RenderWordCloud(w io.Writer, title string, words []processing.WordCount) error {
	wc := charts.NewWordCloud()
	wc.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title}),
		charts.WithTitleOpts(opts.Title{Title: title}),
	)

	data := make([]opts.WordCloudData, 0, len(words))
	for _, word := range words {
		data = append(data, opts.WordCloudData{Name: word.Word, Value: word.Count})
	}
	wc.AddSeries("words", data)

	if err := wc.Render(w); err != nil {
		return fmt.Errorf("render word cloud: %w", err)
	}
	return nil
}
