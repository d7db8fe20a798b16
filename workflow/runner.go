// Package workflow bridges render requests to the generation pipeline. The
// HTTP API, the Kafka consumer and the cron trigger all hand requests to the
// same Runner, which claims the state manager for the job and settles the
// claim when the run ends.
package workflow

import (
	"context"

	"github.com/rs/zerolog"

	"wisdombot/logx"
	"wisdombot/pipeline"
	"wisdombot/state"
	"wisdombot/types"
)

// Generator runs one quote through the render pipeline. Implemented by
// pipeline.Generator.
type Generator interface {
	Run(ctx context.Context, opts pipeline.RunOptions) (*pipeline.Result, error)
}

// Runner executes render requests one at a time against the shared state
// manager.
type Runner struct {
	manager *state.Manager
	gen     Generator
	log     zerolog.Logger
}

func NewRunner(manager *state.Manager, gen Generator) *Runner {
	return &Runner{
		manager: manager,
		gen:     gen,
		log:     logx.WithComponent("workflow"),
	}
}

// Render claims the daemon for req and executes it synchronously. It returns
// the manager's busy error when another job is in flight.
func (r *Runner) Render(ctx context.Context, req *types.RenderRequest) (*types.RenderResult, error) {
	if err := r.manager.Begin(req.JobID); err != nil {
		return nil, err
	}
	return r.Execute(ctx, req)
}

// Execute runs a request whose job has already been claimed via Begin. The
// claim is always settled: Finish on success or duplicate skip, Fail on
// error. Callers that launch Execute asynchronously must Begin first so a
// competing request can be refused before the goroutine starts.
func (r *Runner) Execute(ctx context.Context, req *types.RenderRequest) (*types.RenderResult, error) {
	r.log.Info().
		Str("job_id", req.JobID).
		Str("philosopher", req.Philosopher).
		Str("category", req.Category).
		Bool("upload", req.Upload).
		Msg("render job starting")

	res, err := r.gen.Run(ctx, pipeline.RunOptions{
		Philosopher: req.Philosopher,
		Category:    req.Category,
		Upload:      req.Upload,
	})
	if err != nil {
		if res != nil && res.VideoPath != "" {
			// Upload failed after the render itself succeeded; point at
			// the artifact so it can be published by hand.
			r.manager.Logf("video rendered at %s before failure", res.VideoPath)
		}
		r.manager.Fail(err)
		r.log.Error().Err(err).Str("job_id", req.JobID).Msg("render job failed")
		return nil, err
	}

	result := &types.RenderResult{
		JobID:      req.JobID,
		QuoteID:    res.QuoteID,
		AuthorName: res.AuthorName,
		Category:   res.Category,
		QuoteText:  res.QuoteText,
		VideoPath:  res.VideoPath,
		ThumbPath:  res.Thumbnail,
		Duration:   res.Duration,
		UploadID:   res.YouTubeID,
		ArchiveKey: res.ArchiveKey,
	}
	if res.Skipped {
		r.manager.Logf("quote #%d skipped as recent duplicate", res.QuoteID)
	}
	r.manager.Finish(result)

	r.log.Info().
		Str("job_id", req.JobID).
		Int("quote_id", res.QuoteID).
		Bool("skipped", res.Skipped).
		Msg("render job finished")
	return result, nil
}
