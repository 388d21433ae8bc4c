package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/thermalytics/thermoinsights/backend/form"
	"github.com/thermalytics/thermoinsights/backend/model"
	"github.com/thermalytics/thermoinsights/backend/pkg/logger"
)

// Session binds one user's form to its own pipeline and report export
type Session struct {
	ID        string
	CreatedAt time.Time
	Form      *form.Controller

	pipeline *Pipeline
	exporter *Exporter
}

// NewSession creates an empty session. Selecting a new file discards any
// prior result and cancels an in-flight request.
func NewSession(analyzer Analyzer, timeout time.Duration, exporter *Exporter) *Session {
	s := &Session{
		ID:        uuid.New().String(),
		CreatedAt: time.Now(),
		Form:      form.NewController(),
		pipeline:  NewPipeline(analyzer, timeout),
		exporter:  exporter,
	}
	s.Form.OnFileSelected(s.pipeline.Reset)
	return s
}

// Submit sends a snapshot of the current form
func (s *Session) Submit(ctx context.Context) (*Ticket, error) {
	meta, file := s.Form.Snapshot()
	return s.pipeline.Submit(logger.WithSession(ctx, s.ID), meta, file)
}

// State returns the current submission state
func (s *Session) State() model.SubmissionState {
	return s.pipeline.State()
}

// View returns the presented state
func (s *Session) View() View {
	return Present(s.pipeline.State())
}

// Export renders the report for the last successful analysis. The patient
// details are the ones that were submitted, not later form edits.
func (s *Session) Export(ctx context.Context) (*ExportedReport, error) {
	state, meta := s.pipeline.Outcome()
	if state.Phase != model.PhaseSucceeded || state.Result == nil {
		return nil, ErrNoResult
	}

	ctx = logger.WithSubmission(logger.WithSession(ctx, s.ID), state.SubmissionID)
	key := s.ID + "/" + state.SubmissionID
	return s.exporter.Export(ctx, key, meta, state.Result)
}

// Close cancels any in-flight request and discards archived reports
func (s *Session) Close(ctx context.Context) error {
	s.pipeline.Reset()
	if s.exporter == nil {
		return nil
	}
	return s.exporter.Discard(logger.WithSession(ctx, s.ID), s.ID)
}
