// Package server exposes the dashboard HTTP API: upload, analysis and
// summary triggers plus the read endpoints the presentation layer polls.
package server

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/ablackman/reviewpulse/internal/analyze"
	"github.com/ablackman/reviewpulse/internal/config"
	"github.com/ablackman/reviewpulse/internal/ingest"
	"github.com/ablackman/reviewpulse/internal/llm"
	"github.com/ablackman/reviewpulse/internal/review"
	"github.com/ablackman/reviewpulse/internal/store"
)

const defaultListLimit = 100

type Server struct {
	echo       *echo.Echo
	store      *store.Store
	cfg        config.Config
	log        *zap.SugaredLogger
	runner     *analyze.Runner
	summarizer *analyze.Summarizer
}

// New wires routes and middleware. client may be a fake in tests.
func New(cfg config.Config, s *store.Store, client llm.Client, log *zap.SugaredLogger) *Server {
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	srv := &Server{
		echo:  echo.New(),
		store: s,
		cfg:   cfg,
		log:   log,
		runner: &analyze.Runner{
			Store:      s,
			Classifier: &analyze.Classifier{Client: client, Model: cfg.AIModel},
			Log:        log,
			BatchLimit: cfg.AnalyzeBatchLimit,
		},
		summarizer: &analyze.Summarizer{Store: s, Client: client, Model: cfg.AIModel},
	}

	e := srv.echo
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(requestLogger(log))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderAuthorization, echo.HeaderContentType, echo.HeaderAccept},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
	}))

	e.POST("/api/reviews/upload", srv.handleUpload)
	e.POST("/api/analyze", srv.handleAnalyze)
	e.POST("/api/summary", srv.handleSummary)
	e.GET("/api/reviews", srv.handleListReviews)
	e.GET("/api/stats", srv.handleStats)
	e.GET("/api/trends", srv.handleTrends)

	return srv
}

// Handler returns the root http.Handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start blocks serving HTTP on addr.
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

func (s *Server) handleUpload(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "missing file field")
	}
	src, err := fileHeader.Open()
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "open upload: "+err.Error())
	}
	defer src.Close()

	reviews, err := ingest.Load(fileHeader.Filename, src)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, err.Error())
	}

	inserted, err := s.store.InsertBatch(c.Request().Context(), reviews)
	if err != nil {
		s.log.Errorw("insert reviews failed", "error", err)
		return errorJSON(c, http.StatusInternalServerError, err.Error())
	}

	s.log.Infow("reviews uploaded", "file", fileHeader.Filename, "inserted", inserted)
	return c.JSON(http.StatusOK, map[string]any{
		"message":  "Upload successful",
		"inserted": inserted,
	})
}

func (s *Server) handleAnalyze(c echo.Context) error {
	if s.cfg.AIAPIKey == "" {
		return errorJSON(c, http.StatusInternalServerError, "AI_API_KEY is not configured")
	}

	report, err := s.runner.Run(c.Request().Context())
	if err != nil {
		s.log.Errorw("analysis run failed", "error", err)
		return errorJSON(c, http.StatusInternalServerError, err.Error())
	}
	if report.Processed == 0 {
		return c.JSON(http.StatusOK, map[string]any{
			"message":  "No reviews to analyze",
			"analyzed": 0,
		})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"message":  "Analysis complete",
		"analyzed": report.Processed,
	})
}

func (s *Server) handleSummary(c echo.Context) error {
	if s.cfg.AIAPIKey == "" {
		return errorJSON(c, http.StatusInternalServerError, "AI_API_KEY is not configured")
	}

	summary, err := s.summarizer.Summarize(c.Request().Context())
	if err != nil {
		s.log.Errorw("summary failed", "error", err)
		return errorJSON(c, http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]any{"summary": summary})
}

func (s *Server) handleListReviews(c echo.Context) error {
	limit := defaultListLimit
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return errorJSON(c, http.StatusBadRequest, "invalid limit")
		}
		if parsed == 0 {
			// limit=0 means zero rows, not "no limit".
			return c.JSON(http.StatusOK, map[string]any{"reviews": []review.Review{}})
		}
		limit = parsed
	}

	reviews, err := s.store.List(c.Request().Context(), store.ListOptions{
		Descending: true,
		Limit:      limit,
	})
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, err.Error())
	}
	if reviews == nil {
		reviews = []review.Review{}
	}
	return c.JSON(http.StatusOK, map[string]any{"reviews": reviews})
}

func (s *Server) handleStats(c echo.Context) error {
	counts, err := s.store.Counts(c.Request().Context())
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, counts)
}

func (s *Server) handleTrends(c echo.Context) error {
	days, err := s.store.DailyCounts(c.Request().Context())
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, err.Error())
	}
	if days == nil {
		days = []store.DailyCount{}
	}
	return c.JSON(http.StatusOK, map[string]any{"trends": days})
}

func errorJSON(c echo.Context, status int, message string) error {
	return c.JSON(status, map[string]string{"error": message})
}
