package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/DeafMist/comment-radar/internal/models"
)

// Columns is the CSV header, in order.
var Columns = []string{
	"Comment",
	"Author",
	"Score",
	"Submission Title",
	"Subreddit",
	"Permalink",
	"Created",
	"Sentiment",
}

// CSVFilename is the download name for a keyword's export.
func CSVFilename(keyword string) string {
	return keyword + "_reddit_comments.csv"
}

// WriteCSV encodes records as UTF-8 CSV with a header row.
func WriteCSV(w io.Writer, records []models.CommentRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range records {
		row := []string{
			r.Body,
			r.Author,
			strconv.Itoa(r.Score),
			r.SubmissionTitle,
			r.Source,
			r.Permalink,
			r.Created.String(),
			string(r.Sentiment),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// ReadCSV parses an export produced by WriteCSV.
func ReadCSV(r io.Reader) ([]models.CommentRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Columns)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	for i, col := range Columns {
		if header[i] != col {
			return nil, fmt.Errorf("unexpected csv column %d: %q", i, header[i])
		}
	}

	var out []models.CommentRecord
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}

		score, err := strconv.Atoi(row[2])
		if err != nil {
			return nil, fmt.Errorf("parse score %q: %w", row[2], err)
		}
		created, err := models.ParseDate(row[6])
		if err != nil {
			return nil, fmt.Errorf("parse created %q: %w", row[6], err)
		}

		out = append(out, models.CommentRecord{
			Body:            row[0],
			Author:          row[1],
			Score:           score,
			SubmissionTitle: row[3],
			Source:          row[4],
			Permalink:       row[5],
			Created:         models.Date{Time: created},
			Sentiment:       models.Sentiment(row[7]),
		})
	}
	return out, nil
}
