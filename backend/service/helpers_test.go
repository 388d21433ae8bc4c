package service

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"

	"github.com/thermalytics/thermoinsights/backend/model"
)

func encodePNG() ([]byte, error) {
	img := image.NewGray(image.Rect(0, 0, 8, 6))
	img.SetGray(2, 3, color.Gray{Y: 180})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func pngBytes(t testing.TB) []byte {
	t.Helper()
	data, err := encodePNG()
	if err != nil {
		t.Fatalf("Failed to encode png: %v", err)
	}
	return data
}

func completeMetadata() model.PatientMetadata {
	return model.PatientMetadata{
		model.FieldName:     "Jane Doe",
		model.FieldAge:      "42",
		model.FieldAddress:  "1 Main St",
		model.FieldDOB:      "1983-04-05",
		model.FieldEmail:    "jane@example.com",
		model.FieldPhone:    "555-0100",
		model.FieldBodyPart: "knee",
	}
}

func testFile(t testing.TB) *model.SelectedFile {
	return &model.SelectedFile{
		Filename:    "knee.png",
		ContentType: "image/png",
		Data:        pngBytes(t),
		Width:       8,
		Height:      6,
	}
}

func flatResult(t testing.TB) *model.AnalysisResult {
	t.Helper()
	r, err := model.Normalize([]byte(`{"mean_intensity":45.678,"num_regions":3,"conditions":{"cold":1,"hot":1,"normal":1}}`))
	if err != nil {
		t.Fatalf("Failed to normalize: %v", err)
	}
	return r
}

// fakeAnalyzer returns canned answers. When gate is set each call blocks
// until gate is closed or the context ends.
type fakeAnalyzer struct {
	mu     sync.Mutex
	calls  int
	metas  []model.PatientMetadata
	result *model.AnalysisResult
	err    error
	gate   chan struct{}
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, meta model.PatientMetadata, file *model.SelectedFile) (*model.AnalysisResult, error) {
	f.mu.Lock()
	f.calls++
	f.metas = append(f.metas, meta)
	gate, result, err := f.gate, f.result, f.err
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, classifySendError(ctx.Err())
		}
	}
	return result, err
}

func (f *fakeAnalyzer) setGate(gate chan struct{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gate = gate
}

func (f *fakeAnalyzer) release() {
	f.mu.Lock()
	defer f.mu.Unlock()
	close(f.gate)
}

func (f *fakeAnalyzer) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type memorySaver struct {
	mu    sync.Mutex
	saved map[string][]byte
	err   error
}

func (m *memorySaver) Save(_ context.Context, key, filename, _ string, data []byte) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saved == nil {
		m.saved = make(map[string][]byte)
	}
	m.saved[key+"/"+filename] = data
	return "mem://" + key + "/" + filename, nil
}
