package reddit

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/DeafMist/comment-radar/internal/models"
)

const (
	kindComment = "t1"
	kindLink    = "t3"
)

type listing struct {
	Kind string `json:"kind"`
	Data struct {
		After    string  `json:"after"`
		Children []thing `json:"children"`
	} `json:"data"`
}

type thing struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

type linkData struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Subreddit  string  `json:"subreddit"`
	Permalink  string  `json:"permalink"`
	CreatedUTC float64 `json:"created_utc"`
}

func (l linkData) submission() models.Submission {
	return models.Submission{
		ID:        l.ID,
		Title:     l.Title,
		Source:    l.Subreddit,
		Permalink: l.Permalink,
		Created:   fromEpoch(l.CreatedUTC),
	}
}

type commentData struct {
	ID         string          `json:"id"`
	Body       string          `json:"body"`
	Author     string          `json:"author"`
	Score      int             `json:"score"`
	Permalink  string          `json:"permalink"`
	CreatedUTC float64         `json:"created_utc"`
	Replies    json.RawMessage `json:"replies"`
}

func (d commentData) comment() models.Comment {
	author := d.Author
	if author == deletedAuthor {
		author = ""
	}
	return models.Comment{
		ID:        d.ID,
		Body:      d.Body,
		Author:    author,
		Score:     d.Score,
		Permalink: d.Permalink,
		Created:   fromEpoch(d.CreatedUTC),
	}
}

// replies decodes the nested listing. The upstream sends "" for leaf comments.
func (d commentData) replies() ([]thing, error) {
	raw := bytes.TrimSpace(d.Replies)
	if len(raw) == 0 || raw[0] != '{' {
		return nil, nil
	}
	var l listing
	if err := json.Unmarshal(raw, &l); err != nil {
		return nil, err
	}
	return l.Data.Children, nil
}

// flatten walks the tree level by level: all top-level comments first, then
// their replies in order, and so on.
func flatten(roots []thing) ([]models.Comment, error) {
	queue := append([]thing(nil), roots...)
	var out []models.Comment

	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]

		if node.Kind != kindComment {
			continue
		}

		var data commentData
		if err := json.Unmarshal(node.Data, &data); err != nil {
			return nil, err
		}
		out = append(out, data.comment())

		children, err := data.replies()
		if err != nil {
			return nil, err
		}
		queue = append(queue, children...)
	}

	return out, nil
}

func fromEpoch(sec float64) time.Time {
	whole := int64(sec)
	frac := int64((sec - float64(whole)) * float64(time.Second))
	return time.Unix(whole, frac).UTC()
}
