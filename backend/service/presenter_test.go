package service

import (
	"strings"
	"testing"

	"github.com/thermalytics/thermoinsights/backend/model"
)

func TestPresentLoading(t *testing.T) {
	v := Present(model.SubmissionState{Phase: model.PhaseLoading, Generation: 1})
	if !v.Loading {
		t.Error("Expected loading flag")
	}
	if v.SubmitLabel != "Analyzing..." {
		t.Errorf("Expected Analyzing..., got %s", v.SubmitLabel)
	}
	if v.CanExport {
		t.Error("Expected export unavailable while loading")
	}
}

func TestPresentFailed(t *testing.T) {
	v := Present(model.SubmissionState{Phase: model.PhaseFailed, Error: "bad image"})
	if v.Error != "bad image" {
		t.Errorf("Expected error bad image, got %q", v.Error)
	}
	if v.Summary != nil || v.CanExport {
		t.Error("Expected no summary or export on failure")
	}
	if v.SubmitLabel != "Submit" {
		t.Errorf("Expected Submit, got %s", v.SubmitLabel)
	}
}

func TestPresentFlat(t *testing.T) {
	v := Present(model.SubmissionState{Phase: model.PhaseSucceeded, Result: flatResult(t)})

	want := []Row{
		{"Mean Intensity", "45.68"},
		{"Number of Regions", "3"},
		{"Cold Regions", "1"},
		{"Hot Regions", "1"},
		{"Normal Regions", "1"},
	}
	if len(v.Summary) != len(want) {
		t.Fatalf("Expected %d rows, got %d", len(want), len(v.Summary))
	}
	for i, row := range want {
		if v.Summary[i] != row {
			t.Errorf("Row %d: expected %+v, got %+v", i, row, v.Summary[i])
		}
	}
	if !v.CanExport {
		t.Error("Expected export available")
	}
	if v.Shape != "flat" {
		t.Errorf("Expected flat, got %s", v.Shape)
	}
	if !strings.Contains(v.Raw, `"mean_intensity": 45.678`) {
		t.Errorf("Expected raw dump with original value, got %s", v.Raw)
	}
}

func TestPresentNestedMissingImplications(t *testing.T) {
	r, err := model.Normalize([]byte(`{"result":{"mean_temperature":36.6,"num_regions":2}}`))
	if err != nil {
		t.Fatalf("Failed to normalize: %v", err)
	}
	v := Present(model.SubmissionState{Phase: model.PhaseSucceeded, Result: r})

	got := map[string]string{}
	for _, row := range v.Summary {
		got[row.Label] = row.Value
	}
	if got["Mean Temperature"] != "36.60" {
		t.Errorf("Expected 36.60, got %s", got["Mean Temperature"])
	}
	if got["Implications"] != model.NotAvailable {
		t.Errorf("Expected N/A, got %s", got["Implications"])
	}
	if v.Narrative != "" {
		t.Errorf("Expected no narrative, got %q", v.Narrative)
	}
}

func TestPresentNonNumericMeanIsShownAsIs(t *testing.T) {
	r, err := model.Normalize([]byte(`{"mean_intensity":"high","num_regions":1}`))
	if err != nil {
		t.Fatalf("Failed to normalize: %v", err)
	}
	rows := SummaryRows(r)
	if rows[0].Value != "high" {
		t.Errorf("Expected high, got %s", rows[0].Value)
	}
}

func TestPresentUnknownShape(t *testing.T) {
	r, err := model.Normalize([]byte(`[1,2,3]`))
	if err != nil {
		t.Fatalf("Failed to normalize: %v", err)
	}
	v := Present(model.SubmissionState{Phase: model.PhaseSucceeded, Result: r})
	if v.Summary != nil {
		t.Errorf("Expected no summary, got %+v", v.Summary)
	}
	if v.Raw == "" {
		t.Error("Expected raw dump for unknown shape")
	}
}

func TestPresentZeroValue(t *testing.T) {
	v := Present(model.SubmissionState{})
	if v.Phase != model.PhaseIdle {
		t.Errorf("Expected idle, got %s", v.Phase)
	}
}
