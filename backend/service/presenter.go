package service

import "github.com/thermalytics/thermoinsights/backend/model"

// Row is one label/value pair of the result summary
type Row struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// View is the displayable projection of a SubmissionState
type View struct {
	Phase       model.Phase `json:"phase"`
	Loading     bool        `json:"loading"`
	SubmitLabel string      `json:"submit_label"`
	Error       string      `json:"error,omitempty"`
	Shape       string      `json:"shape,omitempty"`
	Summary     []Row       `json:"summary,omitempty"`
	Narrative   string      `json:"narrative,omitempty"`
	Raw         string      `json:"raw,omitempty"`
	CanExport   bool        `json:"can_export"`
}

// Present projects state for display. It never mutates its input.
func Present(s model.SubmissionState) View {
	v := View{
		Phase:       s.Phase,
		Loading:     s.Loading(),
		SubmitLabel: "Submit",
		Error:       s.Error,
	}
	if v.Phase == "" {
		v.Phase = model.PhaseIdle
	}
	if v.Loading {
		v.SubmitLabel = "Analyzing..."
	}

	if s.Phase != model.PhaseSucceeded || s.Result == nil {
		return v
	}

	r := s.Result
	v.CanExport = true
	v.Shape = r.Shape.String()
	v.Summary = SummaryRows(r)
	v.Raw = r.Pretty()
	if r.Narrative.Present() {
		v.Narrative = r.Narrative.String()
	}
	return v
}

// SummaryRows lists the values relevant to the response variant. Unknown
// bodies have no summary and are shown through the raw dump only.
func SummaryRows(r *model.AnalysisResult) []Row {
	switch r.Shape {
	case model.ShapeFlat:
		return []Row{
			{"Mean Intensity", r.MeanIntensity.Fixed(2)},
			{"Number of Regions", r.NumRegions.String()},
			{"Cold Regions", r.Conditions.Cold.String()},
			{"Hot Regions", r.Conditions.Hot.String()},
			{"Normal Regions", r.Conditions.Normal.String()},
		}
	case model.ShapeNested:
		return []Row{
			{"Mean Temperature", r.MeanTemperature.Fixed(2)},
			{"Number of Regions", r.NumRegions.String()},
			{"Implications", r.Implications.String()},
		}
	}
	return nil
}
