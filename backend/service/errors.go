package service

import (
	"errors"
	"fmt"

	"github.com/thermalytics/thermoinsights/backend/form"
)

// User-facing failure messages
const (
	MsgConnectionFailed = "Failed to connect to the server."
	MsgTimedOut         = "The analysis request timed out."
	MsgAnalysisFailed   = "Failed to analyze the image."
)

var (
	// ErrSubmissionInFlight rejects a submit while another one is loading
	ErrSubmissionInFlight = errors.New("a submission is already in progress")
	// ErrNoResult rejects an export before a successful analysis
	ErrNoResult = errors.New("no analysis result to export")
	// ErrSessionNotFound is returned for unknown or evicted sessions
	ErrSessionNotFound = errors.New("session not found")
)

// TransportError means the request could not be sent or its response could
// not be read or parsed
type TransportError struct {
	Message string
	Err     error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("analysis transport error: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ServiceError is a non-2xx answer from the analysis service. Message is the
// server-supplied text, or MsgAnalysisFailed when it sent none.
type ServiceError struct {
	StatusCode int
	Message    string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("analysis service returned status %d: %s", e.StatusCode, e.Message)
}

// UserMessage maps any pipeline error to the text shown to the user
func UserMessage(err error) string {
	var (
		verr *form.ValidationError
		terr *TransportError
		serr *ServiceError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &verr):
		return verr.Message
	case errors.As(err, &terr):
		return terr.Message
	case errors.As(err, &serr):
		return serr.Message
	case errors.Is(err, ErrSubmissionInFlight):
		return "An analysis is already in progress."
	}
	return MsgAnalysisFailed
}
