package reddit_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/DeafMist/comment-radar/internal/models"
	"github.com/DeafMist/comment-radar/internal/reddit"
)

const searchBody = `{
  "kind": "Listing",
  "data": {
    "after": null,
    "children": [
      {"kind": "t3", "data": {"id": "abc", "title": "Why Rust?", "subreddit": "programming",
        "permalink": "/r/programming/comments/abc/why_rust/", "created_utc": 1717200000.0}},
      {"kind": "t3", "data": {"id": "def", "title": "Rust 2.0", "subreddit": "programming",
        "permalink": "/r/programming/comments/def/rust_20/", "created_utc": 1717286400.5}}
    ]
  }
}`

const commentsBody = `[
  {"kind": "Listing", "data": {"children": [{"kind": "t3", "data": {"id": "abc", "title": "Why Rust?"}}]}},
  {"kind": "Listing", "data": {"children": [
    {"kind": "t1", "data": {"id": "c1", "body": "top one", "author": "alice", "score": 10,
      "permalink": "/r/programming/comments/abc/why_rust/c1/", "created_utc": 1717200100,
      "replies": {"kind": "Listing", "data": {"children": [
        {"kind": "t1", "data": {"id": "c1a", "body": "reply to one", "author": "[deleted]", "score": 2,
          "permalink": "/r/programming/comments/abc/why_rust/c1a/", "created_utc": 1717200200, "replies": ""}},
        {"kind": "more", "data": {"count": 12, "children": ["x", "y"]}}
      ]}}}},
    {"kind": "t1", "data": {"id": "c2", "body": "top two", "author": "bob", "score": -3,
      "permalink": "/r/programming/comments/abc/why_rust/c2/", "created_utc": 1717200300, "replies": ""}},
    {"kind": "more", "data": {"count": 40, "children": ["z"]}}
  ]}}
]`

type fakeUpstream struct {
	srv        *httptest.Server
	tokenCalls atomic.Int32
	lastQuery  atomic.Value
	lastAgent  atomic.Value
	searchCode int
}

func newFakeUpstream(t *testing.T) *fakeUpstream {
	t.Helper()
	f := &fakeUpstream{searchCode: http.StatusOK}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/access_token", func(w http.ResponseWriter, r *http.Request) {
		f.tokenCalls.Add(1)
		user, pass, ok := r.BasicAuth()
		if !ok || user != "id" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok","token_type":"bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/r/programming/search", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		f.lastQuery.Store(r.URL.Query())
		f.lastAgent.Store(r.Header.Get("User-Agent"))
		if f.searchCode != http.StatusOK {
			w.WriteHeader(f.searchCode)
			_, _ = w.Write([]byte(`{"message": "Forbidden", "error": 403}`))
			return
		}
		_, _ = w.Write([]byte(searchBody))
	})
	mux.HandleFunc("/comments/abc", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(commentsBody))
	})

	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeUpstream) client(t *testing.T, limit int) *reddit.Client {
	t.Helper()
	c, err := reddit.New(reddit.Options{
		APIBase:      f.srv.URL,
		TokenURL:     f.srv.URL + "/api/v1/access_token",
		ClientID:     "id",
		ClientSecret: "secret",
		UserAgent:    "comment-radar/test",
		SearchLimit:  limit,
		SearchSort:   "top",
		TimeFilter:   "year",
		HTTPTimeout:  5 * time.Second,
	}, nil)
	require.NoError(t, err)
	return c
}

func TestSearchSubmissions(t *testing.T) {
	up := newFakeUpstream(t)
	c := up.client(t, 100)

	subs, err := c.SearchSubmissions(context.Background(), "programming", "rust")
	require.NoError(t, err)
	require.Len(t, subs, 2)

	require.Equal(t, "abc", subs[0].ID)
	require.Equal(t, "Why Rust?", subs[0].Title)
	require.Equal(t, "programming", subs[0].Source)
	require.Equal(t, time.Unix(1717200000, 0).UTC(), subs[0].Created)

	q := up.lastQuery.Load().(url.Values)
	require.Equal(t, []string{`title:"rust"`}, q["q"])
	require.Equal(t, []string{"top"}, q["sort"])
	require.Equal(t, []string{"year"}, q["t"])
	require.Equal(t, []string{"100"}, q["limit"])
	require.Equal(t, []string{"1"}, q["restrict_sr"])
	require.Equal(t, "comment-radar/test", up.lastAgent.Load())

	_, err = c.SearchSubmissions(context.Background(), "programming", "rust")
	require.NoError(t, err)
	require.Equal(t, int32(1), up.tokenCalls.Load())
}

func TestSearchSubmissionsDropsQuotesFromKeyword(t *testing.T) {
	up := newFakeUpstream(t)
	c := up.client(t, 100)

	_, err := c.SearchSubmissions(context.Background(), "programming", `say "hello" rust`)
	require.NoError(t, err)

	q := up.lastQuery.Load().(url.Values)
	require.Equal(t, []string{`title:"say hello rust"`}, q["q"])
}

func TestSearchSubmissionsHonoursLimit(t *testing.T) {
	up := newFakeUpstream(t)
	c := up.client(t, 1)

	subs, err := c.SearchSubmissions(context.Background(), "programming", "rust")
	require.NoError(t, err)
	require.Len(t, subs, 1)

	q := up.lastQuery.Load().(url.Values)
	require.Equal(t, []string{"1"}, q["limit"])
}

func TestSearchSubmissionsAPIError(t *testing.T) {
	up := newFakeUpstream(t)
	up.searchCode = http.StatusForbidden
	c := up.client(t, 100)

	_, err := c.SearchSubmissions(context.Background(), "programming", "rust")
	require.Error(t, err)

	var apiErr *reddit.APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	require.Contains(t, apiErr.Body, "Forbidden")
}

func TestSearchUnknownSourceFails(t *testing.T) {
	up := newFakeUpstream(t)
	c := up.client(t, 100)

	_, err := c.SearchSubmissions(context.Background(), "nope", "rust")
	require.Error(t, err)
}

func TestExpandCommentsBreadthFirst(t *testing.T) {
	up := newFakeUpstream(t)
	c := up.client(t, 100)

	comments, err := c.ExpandComments(context.Background(), models.Submission{ID: "abc"})
	require.NoError(t, err)

	ids := make([]string, 0, len(comments))
	for _, cm := range comments {
		ids = append(ids, cm.ID)
	}
	require.Equal(t, []string{"c1", "c2", "c1a"}, ids)

	require.Equal(t, "alice", comments[0].Author)
	require.Equal(t, 10, comments[0].Score)
	require.Equal(t, -3, comments[1].Score)
	require.Empty(t, comments[2].Author)
	require.Equal(t, "/r/programming/comments/abc/why_rust/c1a/", comments[2].Permalink)
	require.Equal(t, time.Unix(1717200200, 0).UTC(), comments[2].Created)
}

func TestNewValidatesOptions(t *testing.T) {
	_, err := reddit.New(reddit.Options{APIBase: "http://x"}, nil)
	require.Error(t, err)

	_, err = reddit.New(reddit.Options{
		APIBase:      "::bad",
		ClientID:     "id",
		ClientSecret: "secret",
		UserAgent:    "ua",
	}, nil)
	require.Error(t, err)
}
