// Package api exposes the render daemon over HTTP: job submission, status
// polling and render history. One render runs at a time; submissions that
// arrive while a job is in flight are refused with 409.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"wisdombot/logx"
	"wisdombot/progress"
	"wisdombot/state"
	"wisdombot/types"
)

// Runner executes a render whose job id has already been claimed through the
// state manager. Implemented by workflow.Runner.
type Runner interface {
	Execute(ctx context.Context, req *types.RenderRequest) (*types.RenderResult, error)
}

// HistoryStore is the slice of the progress store the API serves.
type HistoryStore interface {
	History(ctx context.Context, limit int) ([]progress.Record, error)
	Stats(ctx context.Context) (*progress.Stats, error)
}

// Server is the daemon's HTTP front. It also owns the cron entry that
// triggers scheduled renders.
type Server struct {
	manager *state.Manager
	runner  Runner
	history HistoryStore
	engine  *gin.Engine
	http    *http.Server
	cron    *cron.Cron
	cronID  cron.EntryID
	log     zerolog.Logger
}

func NewServer(manager *state.Manager, runner Runner, history HistoryStore, addr string) *Server {
	s := &Server{
		manager: manager,
		runner:  runner,
		history: history,
		cron:    cron.New(),
		log:     logx.WithComponent("api"),
	}

	r := gin.New()
	r.Use(gin.Recovery())
	s.registerRoutes(r)

	s.engine = r
	s.http = &http.Server{Addr: addr, Handler: r}
	return s
}

func (s *Server) registerRoutes(r *gin.Engine) {
	r.GET("/health", s.handleHealth)

	api := r.Group("/api")
	{
		api.POST("/render", s.handleRender)
		api.GET("/status", s.handleStatus)
		api.GET("/history", s.handleHistory)
		api.GET("/stats", s.handleStats)
	}
}

// Handler returns the route table. Used by tests.
func (s *Server) Handler() http.Handler { return s.engine }

// Start begins serving in the background.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.http.Addr).Msg("http server listening")

	go func() {
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error().Err(err).Msg("http server stopped")
		}
	}()

	return nil
}

// StartCron schedules automatic renders. Each tick submits a sequential
// render unless a job is already in flight.
func (s *Server) StartCron(schedule string, upload bool) error {
	id, err := s.cron.AddFunc(schedule, func() {
		if s.manager.Busy() {
			s.log.Warn().Str("state", string(s.manager.State())).Msg("scheduled render skipped, daemon busy")
			return
		}

		req := &types.RenderRequest{JobID: uuid.New().String(), Upload: upload}
		if err := s.submit(req); err != nil {
			s.log.Error().Err(err).Msg("scheduled render refused")
		}
	})
	if err != nil {
		return fmt.Errorf("cron schedule %q: %w", schedule, err)
	}

	s.cronID = id
	s.cron.Start()
	s.log.Info().Str("schedule", schedule).Bool("upload", upload).Msg("render schedule active")
	return nil
}

// submit claims the job and launches it. The claim happens before the
// goroutine starts so a concurrent submission is refused immediately.
func (s *Server) submit(req *types.RenderRequest) error {
	if err := s.manager.Begin(req.JobID); err != nil {
		return err
	}

	go func() {
		// Execute settles the state claim and logs failures itself.
		_, _ = s.runner.Execute(context.Background(), req)
	}()
	return nil
}

// Shutdown stops the cron scheduler and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.cron != nil {
		s.cron.Stop()
	}
	return s.http.Shutdown(ctx)
}
