package server

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BillionaireEagleDev/ps-webservice/internal/domain"
	"github.com/BillionaireEagleDev/ps-webservice/internal/scheduler"
)

// Server exposes the HTTP trigger surface for the ingestion pipeline.
type Server struct {
	ingestor scheduler.Runner
	apiKey   string
	logger   *slog.Logger
}

func New(ingestor scheduler.Runner, apiKey string, logger *slog.Logger) *Server {
	return &Server{
		ingestor: ingestor,
		apiKey:   apiKey,
		logger:   logger,
	}
}

// Router constructs a Gin engine with registered routes.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", s.handleHealth)
	r.GET("/api/ingest", s.handleIngest)
	r.GET("/api/ingest/test", s.handleIngestTest)

	return r
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleIngest triggers a run, guarded by the shared key. The request blocks
// until the run finishes; concurrent triggers queue on the service mutex.
func (s *Server) handleIngest(c *gin.Context) {
	if c.Query("key") != s.apiKey {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid key"})
		return
	}

	stats, err := s.ingestor.Run(c.Request.Context())
	if err != nil {
		s.logger.Error("ingestion run failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, runResponse(stats))
}

// handleIngestTest is the unauthenticated variant used to exercise the
// pipeline from a browser. It reports the same run in plain text.
func (s *Server) handleIngestTest(c *gin.Context) {
	stats, err := s.ingestor.Run(c.Request.Context())
	if err != nil {
		s.logger.Error("ingestion run failed", "error", err)
		c.String(http.StatusInternalServerError, "ingestion failed: %s", err.Error())
		return
	}

	c.String(http.StatusOK,
		"ingestion finished: %d fetched, %d rejected, %d processed, %d errors in %s",
		stats.Fetched, stats.Rejected, stats.Processed, stats.Errors, stats.Duration,
	)
}

func runResponse(stats *domain.RunStats) gin.H {
	return gin.H{
		"sources":   stats.Sources,
		"fetched":   stats.Fetched,
		"rejected":  stats.Rejected,
		"attempted": stats.Attempted,
		"processed": stats.Processed,
		"errors":    stats.Errors,
		"duration":  stats.Duration.String(),
	}
}
