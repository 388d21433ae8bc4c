package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/thermalytics/thermoinsights/backend/config"
	"github.com/thermalytics/thermoinsights/backend/model"
	"github.com/thermalytics/thermoinsights/backend/pkg/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// maxResponseBytes caps how much of a response body is read
const maxResponseBytes = 10 << 20

const requestIDHeader = "X-Request-ID"

var tracer = otel.Tracer("analysis-client")

// Analyzer submits one thermal image for analysis
type Analyzer interface {
	Analyze(ctx context.Context, meta model.PatientMetadata, file *model.SelectedFile) (*model.AnalysisResult, error)
}

// AnalysisService talks to the remote analysis endpoint
type AnalysisService struct {
	config     *config.AnalysisConfig
	httpClient *http.Client
}

func NewAnalysisService(cfg *config.AnalysisConfig) *AnalysisService {
	return &AnalysisService{
		config: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout(),
		},
	}
}

// Analyze posts the metadata and image as one multipart request and
// normalizes the JSON answer
func (s *AnalysisService) Analyze(ctx context.Context, meta model.PatientMetadata, file *model.SelectedFile) (*model.AnalysisResult, error) {
	ctx, span := tracer.Start(ctx, "analysis_submit")
	defer span.End()
	span.SetAttributes(
		attribute.String("analysis.endpoint", s.config.Endpoint),
		attribute.Int64("analysis.file_size", file.Size()),
	)

	body, contentType, err := encodeMultipart(meta, file, s.config.FileField)
	if err != nil {
		span.RecordError(err)
		return nil, &TransportError{Message: MsgConnectionFailed, Err: fmt.Errorf("failed to encode request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.Endpoint, body)
	if err != nil {
		span.RecordError(err)
		return nil, &TransportError{Message: MsgConnectionFailed, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	if id := logger.RequestID(ctx); id != "" {
		req.Header.Set(requestIDHeader, id)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		return nil, classifySendError(err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		span.RecordError(err)
		return nil, classifySendError(fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		serr := &ServiceError{StatusCode: resp.StatusCode, Message: serverMessage(respBody)}
		span.RecordError(serr)
		return nil, serr
	}

	result, err := model.Normalize(respBody)
	if err != nil {
		span.RecordError(err)
		return nil, &TransportError{Message: MsgAnalysisFailed, Err: err}
	}

	span.SetAttributes(attribute.String("analysis.shape", result.Shape.String()))
	return result, nil
}

// encodeMultipart writes the metadata fields in form order followed by the
// image under fileField
func encodeMultipart(meta model.PatientMetadata, file *model.SelectedFile, fileField string) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, f := range model.PatientFields {
		if err := w.WriteField(f.Key, meta.Get(f.Key)); err != nil {
			return nil, "", err
		}
	}

	if file != nil {
		contentType := file.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			escapeQuotes(fileField), escapeQuotes(file.Filename)))
		h.Set("Content-Type", contentType)

		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(file.Data); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

func classifySendError(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &TransportError{Message: MsgTimedOut, Err: err}
	}
	return &TransportError{Message: MsgConnectionFailed, Err: err}
}

// serverMessage extracts the service's own explanation from an error body.
// The analysis service reports "message"; older deployments use "error".
func serverMessage(body []byte) string {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err == nil {
		for _, key := range []string{"message", "error"} {
			if msg, ok := payload[key].(string); ok && strings.TrimSpace(msg) != "" {
				return msg
			}
		}
	}
	return MsgAnalysisFailed
}
