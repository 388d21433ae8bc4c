package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/thermalytics/thermoinsights/backend/form"
	"github.com/thermalytics/thermoinsights/backend/model"
	"github.com/thermalytics/thermoinsights/backend/pkg/logger"
)

// Pipeline runs at most one analysis submission at a time and owns the
// SubmissionState. Failed submissions are never retried automatically.
type Pipeline struct {
	analyzer Analyzer
	timeout  time.Duration

	mu        sync.Mutex
	state     model.SubmissionState
	submitted model.PatientMetadata
	cancel    context.CancelFunc
}

// Ticket tracks one accepted submission
type Ticket struct {
	SubmissionID string
	Generation   uint64

	done     chan struct{}
	pipeline *Pipeline
}

// Done is closed once the submission has completed or been abandoned
func (t *Ticket) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the submission completes or ctx ends and returns the
// pipeline state at that point
func (t *Ticket) Wait(ctx context.Context) (model.SubmissionState, error) {
	select {
	case <-t.done:
		return t.pipeline.State(), nil
	case <-ctx.Done():
		return t.pipeline.State(), ctx.Err()
	}
}

func NewPipeline(analyzer Analyzer, timeout time.Duration) *Pipeline {
	return &Pipeline{
		analyzer: analyzer,
		timeout:  timeout,
		state:    model.SubmissionState{Phase: model.PhaseIdle},
	}
}

// State returns the current state
func (p *Pipeline) State() model.SubmissionState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Outcome returns the state together with the metadata submitted for it,
// read under one lock so a concurrent reset or resubmit cannot mix them
func (p *Pipeline) Outcome() (model.SubmissionState, model.PatientMetadata) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state, p.submitted.Clone()
}

// Submit validates the inputs and starts the request in the background. It
// returns ErrSubmissionInFlight while loading and the validation error when
// the form is incomplete; neither performs any I/O.
func (p *Pipeline) Submit(ctx context.Context, meta model.PatientMetadata, file *model.SelectedFile) (*Ticket, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state.Loading() {
		return nil, ErrSubmissionInFlight
	}

	if err := form.Validate(meta, file); err != nil {
		p.state = model.Reduce(p.state, model.SubmitRejected{Message: UserMessage(err)})
		logger.Info(ctx, "submission rejected", "reason", err.Error())
		return nil, err
	}

	meta = meta.Clone()
	file = file.Clone()

	id := uuid.New().String()
	p.state = model.Reduce(p.state, model.SubmitStarted{SubmissionID: id})
	p.submitted = meta

	runCtx, cancel := context.WithTimeout(logger.WithSubmission(context.WithoutCancel(ctx), id), p.timeout)
	p.cancel = cancel

	t := &Ticket{
		SubmissionID: id,
		Generation:   p.state.Generation,
		done:         make(chan struct{}),
		pipeline:     p,
	}

	logger.Info(runCtx, "submission started",
		"file", file.Filename,
		"content_type", file.ContentType,
		"size", file.Size(),
	)

	go p.run(runCtx, cancel, t, meta, file)
	return t, nil
}

func (p *Pipeline) run(ctx context.Context, cancel context.CancelFunc, t *Ticket, meta model.PatientMetadata, file *model.SelectedFile) {
	defer close(t.done)
	defer cancel()

	start := time.Now()
	result, err := p.analyzer.Analyze(ctx, meta, file)

	p.mu.Lock()
	if err != nil {
		p.state = model.Reduce(p.state, model.SubmitFailed{Generation: t.Generation, Message: UserMessage(err)})
	} else {
		p.state = model.Reduce(p.state, model.SubmitSucceeded{Generation: t.Generation, Result: result})
	}
	current := p.state.Generation == t.Generation
	if current {
		p.cancel = nil
	}
	p.mu.Unlock()

	elapsed := time.Since(start).Milliseconds()
	switch {
	case !current:
		logger.Info(ctx, "stale submission discarded", "latency_ms", elapsed)
	case err != nil:
		logger.Warn(ctx, "submission failed", "error", err, "latency_ms", elapsed)
	default:
		logger.Info(ctx, "submission succeeded", "shape", result.Shape.String(), "latency_ms", elapsed)
	}
}

// Reset returns to Idle, cancelling any in-flight request. Its completion
// will be discarded.
func (p *Pipeline) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.state = model.Reduce(p.state, model.ResetRequested{})
	p.submitted = nil
}
