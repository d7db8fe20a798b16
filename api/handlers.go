package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"wisdombot/types"
)

// renderBody is the optional POST /api/render payload. An empty body renders
// the next sequential quote without uploading.
type renderBody struct {
	Philosopher string `json:"philosopher"`
	Category    string `json:"category"`
	Upload      bool   `json:"upload"`
}

// handleRender submits a render job. Responds 202 with the job id, or 409
// when a render is already in flight.
func (s *Server) handleRender(c *gin.Context) {
	var body renderBody
	if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	req := &types.RenderRequest{
		JobID:       uuid.New().String(),
		Philosopher: body.Philosopher,
		Category:    body.Category,
		Upload:      body.Upload,
	}
	if err := s.submit(req); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"status": "started",
		"job_id": req.JobID,
	})
}

// handleStatus reports the daemon state, the activity log and the last
// result.
func (s *Server) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.manager.Snapshot())
}

// handleHistory returns recent render records, newest first.
func (s *Server) handleHistory(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
		return
	}

	records, err := s.history.History(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load history: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count":   len(records),
		"history": records,
	})
}

// handleStats returns generation totals and the sequential position.
func (s *Server) handleStats(c *gin.Context) {
	stats, err := s.history.Stats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load stats: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
