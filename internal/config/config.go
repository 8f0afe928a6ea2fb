package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Reddit holds upstream credentials and the search constraints the upstream
// imposes on every title search.
type Reddit struct {
	ClientID     string
	ClientSecret string
	UserAgent    string
	APIBase      string
	TokenURL     string
	SearchLimit  int
	SearchSort   string
	TimeFilter   string
	HTTPTimeout  time.Duration
}

// Collect tunes the bounded comment collector.
type Collect struct {
	MaxRecords       int
	RequireBodyMatch bool
}

// Kafka is optional; an empty broker list disables publishing.
type Kafka struct {
	Brokers []string
	Topic   string
}

// Common contains parameters shared by every binary.
type Common struct {
	Reddit  Reddit
	Collect Collect
	Kafka   Kafka
}

// API describes HTTP-layer configuration.
type API struct {
	Common
	BindAddr        string
	CORSOrigins     []string
	SessionTTL      time.Duration
	SessionCapacity int
	WordCloudLimit  int
	WordCloudMinLen int
}

// CLI configures the one-shot command line fetch.
type CLI struct {
	Common
	OutputDir string
}

// LoadAPI builds an API config from environment variables.
func LoadAPI() (*API, error) {
	common, err := loadCommon()
	if err != nil {
		return nil, err
	}

	c := &API{
		Common:          *common,
		BindAddr:        getEnv("API_BIND_ADDR", "0.0.0.0:8080"),
		CORSOrigins:     splitAndTrim(getEnv("API_CORS_ORIGINS", "*")),
		SessionTTL:      getDuration("SESSION_TTL", "1h"),
		SessionCapacity: getInt("SESSION_CAPACITY", 256),
		WordCloudLimit:  getInt("WORDCLOUD_LIMIT", 100),
		WordCloudMinLen: getInt("WORDCLOUD_MIN_LEN", 3),
	}

	if c.SessionCapacity <= 0 {
		return nil, fmt.Errorf("SESSION_CAPACITY must be positive")
	}
	if c.SessionTTL <= 0 {
		return nil, fmt.Errorf("SESSION_TTL must be positive")
	}
	if c.WordCloudLimit <= 0 {
		return nil, fmt.Errorf("WORDCLOUD_LIMIT must be positive")
	}
	if c.WordCloudMinLen < 0 {
		return nil, fmt.Errorf("WORDCLOUD_MIN_LEN cannot be negative")
	}

	return c, nil
}

// LoadCLI builds a CLI config from environment variables.
func LoadCLI() (*CLI, error) {
	common, err := loadCommon()
	if err != nil {
		return nil, err
	}
	return &CLI{
		Common:    *common,
		OutputDir: getEnv("CLI_OUTPUT_DIR", "."),
	}, nil
}

func loadCommon() (*Common, error) {
	c := &Common{
		Reddit: Reddit{
			ClientID:     getEnv("REDDIT_CLIENT_ID", ""),
			ClientSecret: getEnv("REDDIT_CLIENT_SECRET", ""),
			UserAgent:    getEnv("REDDIT_USER_AGENT", ""),
			APIBase:      strings.TrimRight(getEnv("REDDIT_API_BASE", "https://oauth.reddit.com"), "/"),
			TokenURL:     getEnv("REDDIT_TOKEN_URL", "https://www.reddit.com/api/v1/access_token"),
			SearchLimit:  getInt("REDDIT_SEARCH_LIMIT", 100),
			SearchSort:   getEnv("REDDIT_SEARCH_SORT", "top"),
			TimeFilter:   getEnv("REDDIT_TIME_FILTER", "year"),
			HTTPTimeout:  getDuration("REDDIT_HTTP_TIMEOUT", "30s"),
		},
		Collect: Collect{
			MaxRecords:       getInt("COLLECT_MAX_RECORDS", 100),
			RequireBodyMatch: getBool("COLLECT_REQUIRE_BODY_MATCH", true),
		},
		Kafka: Kafka{
			Brokers: splitAndTrim(getEnv("KAFKA_BROKERS", "")),
			Topic:   getEnv("KAFKA_TOPIC", "comment_queries"),
		},
	}

	if c.Reddit.ClientID == "" {
		return nil, fmt.Errorf("REDDIT_CLIENT_ID is required")
	}
	if c.Reddit.ClientSecret == "" {
		return nil, fmt.Errorf("REDDIT_CLIENT_SECRET is required")
	}
	if c.Reddit.UserAgent == "" {
		return nil, fmt.Errorf("REDDIT_USER_AGENT is required")
	}
	if c.Reddit.SearchLimit <= 0 {
		return nil, fmt.Errorf("REDDIT_SEARCH_LIMIT must be positive")
	}
	if c.Reddit.HTTPTimeout <= 0 {
		return nil, fmt.Errorf("REDDIT_HTTP_TIMEOUT must be positive")
	}
	if c.Collect.MaxRecords <= 0 {
		return nil, fmt.Errorf("COLLECT_MAX_RECORDS must be positive")
	}

	return c, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key, fallback string) time.Duration {
	raw := getEnv(key, fallback)
	d, err := time.ParseDuration(raw)
	if err != nil {
		fd, ferr := time.ParseDuration(fallback)
		if ferr != nil {
			panic(fmt.Sprintf("invalid fallback duration %q: %v", fallback, ferr))
		}
		return fd
	}
	return d
}

func splitAndTrim(raw string) []string {
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
