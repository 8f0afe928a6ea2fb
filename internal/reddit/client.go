package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/DeafMist/comment-radar/internal/models"
)

const deletedAuthor = "[deleted]"

// Options carries credentials and the upstream search constraints. The limit,
// sort and time filter are imposed by the upstream and kept configurable.
type Options struct {
	APIBase      string
	TokenURL     string
	ClientID     string
	ClientSecret string
	UserAgent    string
	SearchLimit  int
	SearchSort   string
	TimeFilter   string
	HTTPTimeout  time.Duration
}

// Client talks to the content API with an app-only OAuth2 token.
type Client struct {
	http       *http.Client
	base       string
	limit      int
	sort       string
	timeFilter string
	log        *slog.Logger
}

// APIError is returned for any non-2xx upstream response.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("reddit api status %d: %s", e.StatusCode, e.Body)
}

// New instantiates the client. Tokens are fetched lazily on the first request.
func New(opts Options, logger *slog.Logger) (*Client, error) {
	if opts.ClientID == "" || opts.ClientSecret == "" || opts.UserAgent == "" {
		return nil, fmt.Errorf("create reddit client: client id, secret and user agent are required")
	}
	if _, err := url.ParseRequestURI(opts.APIBase); err != nil {
		return nil, fmt.Errorf("create reddit client: invalid api base %q: %w", opts.APIBase, err)
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	base := &http.Client{
		Timeout:   opts.HTTPTimeout,
		Transport: &userAgentTransport{agent: opts.UserAgent, next: http.DefaultTransport},
	}

	cc := &clientcredentials.Config{
		ClientID:     opts.ClientID,
		ClientSecret: opts.ClientSecret,
		TokenURL:     opts.TokenURL,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}
	authed := cc.Client(context.WithValue(context.Background(), oauth2.HTTPClient, base))
	authed.Timeout = opts.HTTPTimeout

	limit := opts.SearchLimit
	if limit <= 0 {
		limit = 100
	}

	return &Client{
		http:       authed,
		base:       strings.TrimRight(opts.APIBase, "/"),
		limit:      limit,
		sort:       opts.SearchSort,
		timeFilter: opts.TimeFilter,
		log:        logger,
	}, nil
}

// SearchSubmissions runs a title-exact-match search inside one source.
func (c *Client) SearchSubmissions(ctx context.Context, source, keyword string) ([]models.Submission, error) {
	params := url.Values{}
	params.Set("q", titleQuery(keyword))
	params.Set("restrict_sr", "1")
	params.Set("type", "link")
	params.Set("limit", fmt.Sprintf("%d", c.limit))
	params.Set("raw_json", "1")
	if c.sort != "" {
		params.Set("sort", c.sort)
	}
	if c.timeFilter != "" {
		params.Set("t", c.timeFilter)
	}

	endpoint := fmt.Sprintf("%s/r/%s/search?%s", c.base, url.PathEscape(source), params.Encode())

	var parsed listing
	if err := c.getJSON(ctx, endpoint, &parsed); err != nil {
		return nil, fmt.Errorf("search r/%s: %w", source, err)
	}

	subs := make([]models.Submission, 0, len(parsed.Data.Children))
	for _, child := range parsed.Data.Children {
		if child.Kind != kindLink {
			continue
		}
		var link linkData
		if err := json.Unmarshal(child.Data, &link); err != nil {
			return nil, fmt.Errorf("decode submission: %w", err)
		}
		subs = append(subs, link.submission())
		if len(subs) == c.limit {
			break
		}
	}

	c.log.Debug("search completed",
		slog.String("source", source),
		slog.Int("submissions", len(subs)),
	)
	return subs, nil
}

// titleQuery builds an exact-phrase title search. Embedded quotes would end
// the phrase early, so they are dropped.
func titleQuery(keyword string) string {
	return `title:"` + strings.ReplaceAll(keyword, `"`, "") + `"`
}

// ExpandComments loads the full comment tree of a submission and flattens it
// breadth-first. "Load more" placeholders are discarded.
func (c *Client) ExpandComments(ctx context.Context, sub models.Submission) ([]models.Comment, error) {
	endpoint := fmt.Sprintf("%s/comments/%s?raw_json=1", c.base, url.PathEscape(sub.ID))

	var parsed []listing
	if err := c.getJSON(ctx, endpoint, &parsed); err != nil {
		return nil, fmt.Errorf("load comments of %s: %w", sub.ID, err)
	}
	if len(parsed) < 2 {
		return nil, fmt.Errorf("load comments of %s: expected 2 listings, got %d", sub.ID, len(parsed))
	}

	comments, err := flatten(parsed[1].Data.Children)
	if err != nil {
		return nil, fmt.Errorf("expand comments of %s: %w", sub.ID, err)
	}
	return comments, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return &APIError{StatusCode: res.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if err := json.NewDecoder(res.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

type userAgentTransport struct {
	agent string
	next  http.RoundTripper
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	clone.Header.Set("User-Agent", t.agent)
	return t.next.RoundTrip(clone)
}
