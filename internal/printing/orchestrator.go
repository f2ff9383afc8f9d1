package printing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-result-api/internal/observability"
	"github.com/noah-isme/gema-result-api/internal/result"
)

var (
	// ErrSurfaceUnavailable indicates the output surface could not be opened.
	ErrSurfaceUnavailable = errors.New("print surface unavailable")
	// ErrRenderTimeout indicates rendering did not settle before the deadline.
	ErrRenderTimeout = errors.New("print rendering did not complete in time")
	// ErrBatchInProgress indicates a print run for the same key is still running.
	ErrBatchInProgress = errors.New("print batch already in progress")
	// ErrEmptySelection indicates a batch was requested without any cards.
	ErrEmptySelection = errors.New("no students selected for printing")
)

const defaultSettleTimeout = 5 * time.Second

// Options tunes the orchestrator.
type Options struct {
	// SettleTimeout bounds how long emission waits for rendering.
	SettleTimeout time.Duration
	// AutoPrint embeds a script that opens the print dialog once loaded.
	AutoPrint bool
}

// Orchestrator renders cards into print documents and hands them to a
// surface. Renders for different keys run independently.
type Orchestrator struct {
	renderer CardRenderer
	opts     Options
	logger   zerolog.Logger

	mu   sync.Mutex
	busy map[string]struct{}
}

// NewOrchestrator constructs a print orchestrator.
func NewOrchestrator(renderer CardRenderer, opts Options, logger zerolog.Logger) *Orchestrator {
	if opts.SettleTimeout <= 0 {
		opts.SettleTimeout = defaultSettleTimeout
	}
	return &Orchestrator{
		renderer: renderer,
		opts:     opts,
		logger:   logger.With().Str("component", "print_orchestrator").Logger(),
		busy:     make(map[string]struct{}),
	}
}

// RenderJob is an in-flight render. Done is closed once the document is
// complete or rendering failed.
type RenderJob struct {
	done chan struct{}
	doc  Document
	err  error
}

// Done reports render completion.
func (j *RenderJob) Done() <-chan struct{} {
	return j.done
}

// Wait blocks until rendering completes, the timeout elapses or ctx ends.
func (j *RenderJob) Wait(ctx context.Context, timeout time.Duration) (Document, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-j.done:
		return j.doc, j.err
	case <-timer.C:
		return Document{}, ErrRenderTimeout
	case <-ctx.Done():
		return Document{}, ctx.Err()
	}
}

// Render starts rendering cards into a single document.
func (o *Orchestrator) Render(ctx context.Context, title string, cards []result.CardData) *RenderJob {
	job := &RenderJob{done: make(chan struct{})}
	go func() {
		defer close(job.done)
		start := time.Now()
		job.doc, job.err = buildDocument(ctx, o.renderer, title, cards, o.opts.AutoPrint)
		observability.PrintRenderDuration().Observe(time.Since(start).Seconds())
	}()
	return job
}

// Print renders one card and emits it.
func (o *Orchestrator) Print(ctx context.Context, surface Surface, card result.CardData) (Receipt, error) {
	key := fmt.Sprintf("student:%d:%s:%s", card.Student.ID, card.Term, card.AcademicYear)
	title := fmt.Sprintf("%s - %s %s", card.Student.Name, card.Term, card.AcademicYear)
	return o.run(ctx, "single", key, title, surface, []result.CardData{card})
}

// PrintBatch renders cards, in the given order, into one document with a
// page break between consecutive cards and emits it once.
func (o *Orchestrator) PrintBatch(ctx context.Context, key, title string, surface Surface, cards []result.CardData) (Receipt, error) {
	return o.run(ctx, "batch", "batch:"+key, title, surface, cards)
}

// Busy reports whether a run for key is in progress.
func (o *Orchestrator) Busy(key string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, ok := o.busy[key]
	return ok
}

func (o *Orchestrator) run(ctx context.Context, mode, key, title string, surface Surface, cards []result.CardData) (Receipt, error) {
	if len(cards) == 0 {
		return Receipt{}, ErrEmptySelection
	}
	if !o.acquire(key) {
		return Receipt{}, ErrBatchInProgress
	}
	defer o.release(key)

	renderCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	job := o.Render(renderCtx, title, cards)

	sink, err := surface.Open(ctx)
	if err != nil {
		o.logger.Warn().Err(err).Str("mode", mode).Msg("failed to open print surface")
		return Receipt{}, fmt.Errorf("%w: %v", ErrSurfaceUnavailable, err)
	}

	doc, err := job.Wait(ctx, o.opts.SettleTimeout)
	if err != nil {
		_ = sink.Close()
		return Receipt{}, err
	}

	receipt, err := sink.Emit(ctx, doc)
	if closeErr := sink.Close(); err == nil && closeErr != nil {
		err = closeErr
	}
	if err != nil {
		return Receipt{}, fmt.Errorf("emit print document: %w", err)
	}

	observability.PrintDocuments().WithLabelValues(mode).Add(float64(doc.Cards))
	o.logger.Info().Str("mode", mode).Int("cards", doc.Cards).Int("bytes", len(doc.HTML)).Msg("print document emitted")
	return receipt, nil
}

func (o *Orchestrator) acquire(key string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, ok := o.busy[key]; ok {
		return false
	}
	o.busy[key] = struct{}{}
	return true
}

func (o *Orchestrator) release(key string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.busy, key)
}
