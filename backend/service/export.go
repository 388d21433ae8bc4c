package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/thermalytics/thermoinsights/backend/model"
	"github.com/thermalytics/thermoinsights/backend/pkg/logger"
	"github.com/thermalytics/thermoinsights/backend/report"
)

// Saver delivers a rendered report and returns where it ended up
type Saver interface {
	Save(ctx context.Context, key, filename, contentType string, data []byte) (string, error)
}

// Discarder is implemented by savers that must clean up when a session ends
type Discarder interface {
	Discard(ctx context.Context, sessionID string) error
}

// FileSaver writes reports into a directory under their fixed filename,
// replacing any previous export. With ByKey each key gets its own
// subdirectory so concurrent sessions do not overwrite each other.
type FileSaver struct {
	Dir   string
	ByKey bool
}

// Discard removes the session's directory. Without ByKey reports are not
// tied to a session and are left alone.
func (f FileSaver) Discard(_ context.Context, sessionID string) error {
	if !f.ByKey || sessionID == "" {
		return nil
	}
	root := filepath.Clean(f.Dir)
	dir := filepath.Join(root, filepath.FromSlash(filepath.Clean("/"+sessionID)))
	if dir == root {
		return nil
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to remove exported reports: %w", err)
	}
	return nil
}

func (f FileSaver) Save(_ context.Context, key, filename, _ string, data []byte) (string, error) {
	dir := f.Dir
	if f.ByKey && key != "" {
		dir = filepath.Join(dir, filepath.FromSlash(filepath.Clean("/"+key)))
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}
	path := filepath.Join(dir, filepath.Base(filename))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return path, nil
}

// ExportedReport is the outcome of one export
type ExportedReport struct {
	Filename  string
	Document  *report.Document
	PDF       []byte
	Locations []string
}

// Exporter generates, renders and delivers reports
type Exporter struct {
	layout   report.Layout
	filename string
	savers   []Saver
}

func NewExporter(layout report.Layout, filename string, savers ...Saver) *Exporter {
	return &Exporter{layout: layout, filename: filename, savers: savers}
}

// Export builds the report for one successful analysis. A saver failure
// does not lose the rendered report; it is returned alongside the error.
func (e *Exporter) Export(ctx context.Context, key string, meta model.PatientMetadata, result *model.AnalysisResult) (*ExportedReport, error) {
	doc := report.Generate(meta, result, e.layout)

	pdf, err := report.RenderPDF(doc)
	if err != nil {
		return nil, err
	}

	out := &ExportedReport{Filename: e.filename, Document: doc, PDF: pdf}

	var errs []error
	for _, s := range e.savers {
		loc, err := s.Save(ctx, key, e.filename, report.ContentType, pdf)
		if err != nil {
			logger.Warn(ctx, "failed to save report", "error", err)
			errs = append(errs, err)
			continue
		}
		out.Locations = append(out.Locations, loc)
	}

	logger.Info(ctx, "report exported", "pages", len(doc.Pages), "bytes", len(pdf), "locations", len(out.Locations))
	return out, errors.Join(errs...)
}

// Discard lets savers drop what they kept for a session. Every saver is
// asked even when an earlier one fails.
func (e *Exporter) Discard(ctx context.Context, sessionID string) error {
	var errs []error
	for _, s := range e.savers {
		if d, ok := s.(Discarder); ok {
			if err := d.Discard(ctx, sessionID); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
