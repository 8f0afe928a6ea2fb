package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/DeafMist/comment-radar/internal/collector"
	"github.com/DeafMist/comment-radar/internal/config"
	"github.com/DeafMist/comment-radar/internal/events"
	"github.com/DeafMist/comment-radar/internal/logger"
	"github.com/DeafMist/comment-radar/internal/reddit"
	"github.com/DeafMist/comment-radar/internal/sentiment"
	"github.com/DeafMist/comment-radar/internal/session"
)

func main() {
	log := logger.New("api")
	cfg, err := config.LoadAPI()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	client, err := reddit.New(reddit.Options{
		APIBase:      cfg.Reddit.APIBase,
		TokenURL:     cfg.Reddit.TokenURL,
		ClientID:     cfg.Reddit.ClientID,
		ClientSecret: cfg.Reddit.ClientSecret,
		UserAgent:    cfg.Reddit.UserAgent,
		SearchLimit:  cfg.Reddit.SearchLimit,
		SearchSort:   cfg.Reddit.SearchSort,
		TimeFilter:   cfg.Reddit.TimeFilter,
		HTTPTimeout:  cfg.Reddit.HTTPTimeout,
	}, log)
	if err != nil {
		log.Error("init reddit client", slog.Any("err", err))
		os.Exit(1)
	}

	coll := collector.New(client, sentiment.NewTagger(nil), collector.Options{
		MaxRecords:       cfg.Collect.MaxRecords,
		RequireBodyMatch: cfg.Collect.RequireBodyMatch,
	}, log)

	publisher := events.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Error("close publisher", slog.Any("err", err))
		}
	}()

	srv := newServer(log, cfg, coll, session.NewStore(cfg.SessionCapacity, cfg.SessionTTL), publisher)

	httpServer := newHTTPServer(cfg.BindAddr, srv.routes())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	go func() {
		log.Info("api server starting", slog.String("addr", cfg.BindAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", slog.Any("err", err))
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", slog.Any("err", err))
	}
}

// newHTTPServer leaves WriteTimeout unset: a cold fetch over five sources is
// bounded only by the upstream client's per-request timeout.
func newHTTPServer(addr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
	}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Get("/timeframes", s.handleTimeframes)
	r.Post("/queries", s.handleCreateQuery)
	r.Route("/queries/{id}", func(r chi.Router) {
		r.Get("/", s.handleRecords)
		r.Get("/csv", s.handleCSV)
		r.Get("/chart", s.handleChart)
		r.Get("/chart.html", s.handleChartHTML)
		r.Get("/wordcloud", s.handleWordCloud)
		r.Get("/wordcloud.html", s.handleWordCloudHTML)
	})
	return r
}
