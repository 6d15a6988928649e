package d2png

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

// stubRenderer renders every diagram to an image named after its source,
// after an optional per-source delay. Sources starting with "fail" fail.
type stubRenderer struct {
	delay func(source string) time.Duration

	mu      sync.Mutex
	running int
	peak    int
	calls   atomic.Int32
}

func (s *stubRenderer) Render(ctx context.Context, rc RenderContext, source string) ([]Event, error) {
	s.calls.Add(1)
	s.mu.Lock()
	s.running++
	s.peak = max(s.peak, s.running)
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.running--
		s.mu.Unlock()
	}()

	if s.delay != nil {
		select {
		case <-time.After(s.delay(source)):
		case <-ctx.Done():
			return nil, &RenderError{Kind: ErrCanceled, Chapter: rc.Name, Index: rc.Index, Err: ctx.Err()}
		}
	}
	name := strings.TrimSpace(source)
	if strings.HasPrefix(name, "fail") {
		return nil, &RenderError{Kind: ErrCompile, Chapter: rc.Name, Path: rc.Path, Index: rc.Index, Detail: "\n  err: " + name}
	}
	return imageFragment(name + ".png"), nil
}

func jobsFor(doc int, name string, sources ...string) []RenderJob {
	jobs := make([]RenderJob, len(sources))
	for i, src := range sources {
		jobs[i] = RenderJob{
			Doc:     doc,
			Context: RenderContext{Path: name + ".md", Name: name, Index: i + 1},
			Source:  src,
		}
	}
	return jobs
}

func discardLogger() *log.Logger {
	return log.NewWithOptions(&bytes.Buffer{}, log.Options{Level: log.FatalLevel})
}

// ---------------------------------------------------------------------------
// TestScheduler_Run - Fan-out, fan-in and ordering
// ---------------------------------------------------------------------------

func TestScheduler_Run_OrderPreserved(t *testing.T) {
	t.Parallel()

	// Later jobs finish first.
	r := &stubRenderer{delay: func(source string) time.Duration {
		var n int
		fmt.Sscanf(source, "d%d", &n)
		return time.Duration(10-n) * 5 * time.Millisecond
	}}
	jobs := [][]RenderJob{
		jobsFor(0, "a", "d1", "d2", "d3", "d4", "d5"),
		jobsFor(1, "b", "d6", "d7", "d8", "d9"),
	}

	results := NewScheduler(r, 4, discardLogger()).Run(context.Background(), jobs)

	if len(results) != 2 {
		t.Fatalf("got %d documents, want 2", len(results))
	}
	for doc, docResults := range results {
		if len(docResults) != len(jobs[doc]) {
			t.Fatalf("doc %d: got %d results, want %d", doc, len(docResults), len(jobs[doc]))
		}
		for i, res := range docResults {
			if res.Index != i+1 || res.Doc != doc {
				t.Errorf("doc %d result %d = (doc %d, index %d)", doc, i, res.Doc, res.Index)
			}
			want := jobs[doc][i].Source + ".png"
			if got := res.Events[1].Dest; got != want {
				t.Errorf("doc %d result %d dest = %q, want %q", doc, i, got, want)
			}
		}
	}
}

func TestScheduler_Run_BoundedPool(t *testing.T) {
	t.Parallel()

	r := &stubRenderer{delay: func(string) time.Duration { return 20 * time.Millisecond }}
	jobs := [][]RenderJob{jobsFor(0, "a", "1", "2", "3", "4", "5", "6", "7", "8", "9", "10")}

	NewScheduler(r, 3, discardLogger()).Run(context.Background(), jobs)

	if got := r.calls.Load(); got != 10 {
		t.Errorf("renderer called %d times, want 10", got)
	}
	if r.peak > 3 {
		t.Errorf("peak concurrency = %d, want <= 3", r.peak)
	}
}

func TestScheduler_Run_FailureIsolation(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	logger := log.NewWithOptions(&logs, log.Options{Level: log.ErrorLevel})

	r := &stubRenderer{}
	jobs := [][]RenderJob{
		jobsFor(0, "a", "ok1", "fail-syntax", "ok3"),
		jobsFor(1, "b", "ok4"),
	}

	results := NewScheduler(r, 2, logger).Run(context.Background(), jobs)

	failed := results[0][1]
	if failed.Err == nil || failed.Events != nil {
		t.Errorf("failed result = %+v, want error and no events", failed)
	}
	if !errors.Is(failed.Err, ErrCompile) {
		t.Errorf("failed.Err = %v, want ErrCompile", failed.Err)
	}
	for _, res := range []RenderResult{results[0][0], results[0][2], results[1][0]} {
		if res.Err != nil || len(res.Events) != 4 {
			t.Errorf("sibling result %+v was affected", res)
		}
	}

	out := logs.String()
	for _, want := range []string{"failed to compile D2 diagram (a, #2)", "chapter=a", "path=a.md", "index=2"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestScheduler_Run_SlowJobDoesNotBlockSiblings(t *testing.T) {
	t.Parallel()

	r := &stubRenderer{delay: func(source string) time.Duration {
		if source == "slow" {
			return 2 * time.Second
		}
		return time.Millisecond
	}}
	jobs := [][]RenderJob{jobsFor(0, "a", "slow", "x1", "x2", "x3", "x4", "x5")}

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	start := time.Now()
	results := NewScheduler(r, 2, discardLogger()).Run(ctx, jobs)
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Run took %v", elapsed)
	}

	if !errors.Is(results[0][0].Err, ErrCanceled) {
		t.Errorf("slow job err = %v, want ErrCanceled", results[0][0].Err)
	}
	for _, res := range results[0][1:] {
		if res.Err != nil {
			t.Errorf("job %d failed: %v", res.Index, res.Err)
		}
	}
}

func TestScheduler_Run_Empty(t *testing.T) {
	t.Parallel()

	r := &stubRenderer{}
	results := NewScheduler(r, 0, nil).Run(context.Background(), [][]RenderJob{nil, {}, nil})

	if len(results) != 3 {
		t.Fatalf("got %d documents, want 3", len(results))
	}
	for i, res := range results {
		if len(res) != 0 {
			t.Errorf("doc %d: got %d results, want 0", i, len(res))
		}
	}
	if r.calls.Load() != 0 {
		t.Errorf("renderer called %d times, want 0", r.calls.Load())
	}
}

func TestNewScheduler_Workers(t *testing.T) {
	t.Parallel()

	if got := NewScheduler(&stubRenderer{}, 5, nil).Workers(); got != 5 {
		t.Errorf("Workers() = %d, want 5", got)
	}
	if got := NewScheduler(&stubRenderer{}, 0, nil).Workers(); got != ResolvePoolSize(0) {
		t.Errorf("Workers() = %d, want %d", got, ResolvePoolSize(0))
	}
}
