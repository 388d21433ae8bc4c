package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// NotAvailable is rendered in place of any value the service did not return
const NotAvailable = "N/A"

// Shape identifies which response variant the analysis service returned
type Shape int

const (
	// ShapeUnknown covers bodies matching neither known variant
	ShapeUnknown Shape = iota
	// ShapeFlat is {conditions: {cold, hot, normal}, mean_intensity, num_regions}
	ShapeFlat
	// ShapeNested is {result: {mean_temperature, implications, num_regions}, gemini_response}
	ShapeNested
)

func (s Shape) String() string {
	switch s {
	case ShapeFlat:
		return "flat"
	case ShapeNested:
		return "nested"
	default:
		return "unknown"
	}
}

// Field is one loosely-typed value from the response. The zero value is a
// missing field.
type Field struct {
	value   any
	present bool
}

// NewField wraps a decoded JSON value
func NewField(v any) Field {
	return Field{value: v, present: v != nil}
}

// Present reports whether the service returned a non-null value
func (f Field) Present() bool {
	return f.present
}

// Number returns the value when it is numeric
func (f Field) Number() (float64, bool) {
	if !f.present {
		return 0, false
	}
	switch v := f.value.(type) {
	case float64:
		return v, true
	case json.Number:
		n, err := v.Float64()
		return n, err == nil
	}
	return 0, false
}

// String formats the value for display, NotAvailable when missing
func (f Field) String() string {
	if !f.present {
		return NotAvailable
	}
	switch v := f.value.(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return NotAvailable
		}
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	}
	b, err := json.Marshal(f.value)
	if err != nil {
		return fmt.Sprint(f.value)
	}
	return string(b)
}

// Fixed formats numeric values with the given decimals and falls back to
// String for anything else
func (f Field) Fixed(decimals int) string {
	if n, ok := f.Number(); ok {
		return strconv.FormatFloat(n, 'f', decimals, 64)
	}
	return f.String()
}

// Conditions counts the classified regions
type Conditions struct {
	Cold   Field
	Hot    Field
	Normal Field
}

// AnalysisResult is the canonical form of an analysis response. Every
// accessor tolerates either variant; missing values format as NotAvailable.
type AnalysisResult struct {
	Shape           Shape
	Conditions      Conditions
	MeanIntensity   Field
	MeanTemperature Field
	NumRegions      Field
	Implications    Field
	Narrative       Field

	raw json.RawMessage
}

// Normalize parses a response body into an AnalysisResult. Only bodies that
// are not valid JSON are rejected.
func Normalize(body []byte) (*AnalysisResult, error) {
	var decoded any
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("failed to parse analysis response: %w", err)
	}

	r := &AnalysisResult{raw: append(json.RawMessage(nil), body...)}

	top, ok := decoded.(map[string]any)
	if !ok {
		return r, nil
	}

	inner, nested := top["result"].(map[string]any)
	lookup := func(key string) Field {
		if nested {
			if v, ok := inner[key]; ok {
				return NewField(v)
			}
		}
		return NewField(top[key])
	}

	switch {
	case nested:
		r.Shape = ShapeNested
	case hasAny(top, "conditions", "mean_intensity", "num_regions"):
		r.Shape = ShapeFlat
	}

	if cond, ok := lookup("conditions").value.(map[string]any); ok {
		r.Conditions = Conditions{
			Cold:   NewField(cond["cold"]),
			Hot:    NewField(cond["hot"]),
			Normal: NewField(cond["normal"]),
		}
	}
	r.MeanIntensity = lookup("mean_intensity")
	r.MeanTemperature = lookup("mean_temperature")
	r.NumRegions = lookup("num_regions")
	r.Implications = lookup("implications")
	r.Narrative = lookup("gemini_response")

	return r, nil
}

func hasAny(m map[string]any, keys ...string) bool {
	for _, k := range keys {
		if _, ok := m[k]; ok {
			return true
		}
	}
	return false
}

// Raw returns a copy of the response body
func (r *AnalysisResult) Raw() []byte {
	return append([]byte(nil), r.raw...)
}

// Pretty returns the response body indented for a key/value dump
func (r *AnalysisResult) Pretty() string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, r.raw, "", "  "); err != nil {
		return string(r.raw)
	}
	return buf.String()
}
