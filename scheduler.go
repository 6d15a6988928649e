package d2png

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
)

// DiagramRenderer renders one diagram. *Renderer is the production
// implementation; tests substitute fakes.
type DiagramRenderer interface {
	Render(ctx context.Context, rc RenderContext, source string) ([]Event, error)
}

var _ DiagramRenderer = (*Renderer)(nil)

// Scheduler fans jobs out to a fixed pool of workers and gathers the
// results back per document in index order.
type Scheduler struct {
	renderer DiagramRenderer
	workers  int
	logger   *log.Logger
}

// NewScheduler creates a Scheduler running at most workers renders at a
// time. workers <= 0 selects ResolvePoolSize's default.
func NewScheduler(renderer DiagramRenderer, workers int, logger *log.Logger) *Scheduler {
	if logger == nil {
		logger = log.Default()
	}
	return &Scheduler{
		renderer: renderer,
		workers:  ResolvePoolSize(workers),
		logger:   logger,
	}
}

// Workers returns the pool size.
func (s *Scheduler) Workers() int {
	return s.workers
}

// Run renders every job and returns, for each document in jobs, its
// results sorted by index. Failed jobs are logged and yield a result with
// Err set and no events; they never stop sibling jobs.
func (s *Scheduler) Run(ctx context.Context, jobs [][]RenderJob) [][]RenderResult {
	out := make([][]RenderResult, len(jobs))

	var flat []RenderJob
	for _, docJobs := range jobs {
		flat = append(flat, docJobs...)
	}
	if len(flat) == 0 {
		return out
	}

	results := make([]RenderResult, len(flat))
	g := new(errgroup.Group)
	g.SetLimit(s.workers)
	for i, job := range flat {
		g.Go(func() error {
			results[i] = s.render(ctx, job)
			return nil
		})
	}
	// Failures travel inside results; no job returns an error.
	_ = g.Wait()

	for _, res := range results {
		out[res.Doc] = append(out[res.Doc], res)
	}
	for _, docResults := range out {
		slices.SortFunc(docResults, func(a, b RenderResult) int {
			return a.Index - b.Index
		})
	}
	return out
}

func (s *Scheduler) render(ctx context.Context, job RenderJob) RenderResult {
	start := time.Now()
	events, err := s.renderer.Render(ctx, job.Context, job.Source)
	res := RenderResult{Doc: job.Doc, Index: job.Context.Index}

	if err != nil {
		res.Err = err
		s.logFailure(job, err)
		return res
	}
	res.Events = events
	s.logger.Debug("rendered diagram",
		"chapter", job.Context.Name,
		"index", job.Context.Index,
		"file", Filename(job.Context),
		"took", time.Since(start).Round(time.Millisecond),
	)
	return res
}

func (s *Scheduler) logFailure(job RenderJob, err error) {
	if errors.Is(err, ErrCanceled) {
		s.logger.Warn("diagram skipped",
			"chapter", job.Context.Name,
			"path", job.Context.Path,
			"index", job.Context.Index,
		)
		return
	}
	s.logger.Error(err.Error(),
		"chapter", job.Context.Name,
		"path", job.Context.Path,
		"index", job.Context.Index,
	)
}
