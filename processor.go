package d2png

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/alnah/mdbook-d2-png/internal/pipeline"
)

// Processor runs the whole pipeline over a collection of documents:
// tokenize, extract, render in parallel, stitch, write Markdown.
type Processor struct {
	cfg       Config
	renderer  DiagramRenderer
	tokenizer *pipeline.Tokenizer
	logger    *log.Logger
}

// Option configures a Processor.
type Option func(*Processor)

// WithLogger sets the logger used for diagram failures and the run summary.
func WithLogger(l *log.Logger) Option {
	return func(p *Processor) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithRenderer replaces the d2 compiler renderer.
func WithRenderer(r DiagramRenderer) Option {
	return func(p *Processor) {
		if r != nil {
			p.renderer = r
		}
	}
}

// NewProcessor validates cfg and creates a Processor.
func NewProcessor(cfg Config, opts ...Option) (*Processor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p := &Processor{
		cfg:       cfg,
		tokenizer: pipeline.NewTokenizer(),
		logger:    log.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.renderer == nil {
		p.renderer = NewRenderer(cfg)
	}
	return p, nil
}

// Summary reports what a Process call did.
type Summary struct {
	Documents int
	Diagrams  int
	Rendered  int
	Failed    int
	Duration  time.Duration
}

// Process returns the new content of every document, in input order.
// Documents without diagrams are returned unchanged. Diagram failures are
// logged and drop the diagram; the only error is ctx's, when the run was
// cancelled.
func (p *Processor) Process(ctx context.Context, docs []Document) ([]string, Summary, error) {
	start := time.Now()
	summary := Summary{Documents: len(docs)}

	events := make([][]Event, len(docs))
	jobs := make([][]RenderJob, len(docs))
	for i, doc := range docs {
		events[i] = p.tokenizer.Tokenize([]byte(doc.Content))
		jobs[i] = Extract(events[i], doc, i)
		summary.Diagrams += len(jobs[i])
	}

	scheduler := NewScheduler(p.renderer, p.cfg.Workers, p.logger)
	results := scheduler.Run(ctx, jobs)

	out := make([]string, len(docs))
	for i, doc := range docs {
		if len(jobs[i]) == 0 {
			out[i] = doc.Content
			continue
		}
		for _, res := range results[i] {
			if res.Err != nil {
				summary.Failed++
			} else {
				summary.Rendered++
			}
		}
		out[i] = string(pipeline.Render(Stitch(events[i], results[i])))
	}

	summary.Duration = time.Since(start)
	if summary.Diagrams > 0 {
		p.logger.Info("rendered diagrams",
			"documents", summary.Documents,
			"diagrams", summary.Diagrams,
			"failed", summary.Failed,
			"workers", min(scheduler.Workers(), summary.Diagrams),
			"took", summary.Duration.Round(time.Millisecond),
		)
	}
	return out, summary, ctx.Err()
}
