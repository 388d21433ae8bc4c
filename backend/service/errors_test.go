package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/thermalytics/thermoinsights/backend/form"
)

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"validation", &form.ValidationError{Field: "age", Message: "Please fill in Age."}, "Please fill in Age."},
		{"transport", &TransportError{Message: MsgConnectionFailed, Err: errors.New("dial tcp")}, MsgConnectionFailed},
		{"wrapped transport", fmt.Errorf("failed to submit: %w", &TransportError{Message: MsgTimedOut}), MsgTimedOut},
		{"service", &ServiceError{StatusCode: 400, Message: "bad image"}, "bad image"},
		{"in flight", ErrSubmissionInFlight, "An analysis is already in progress."},
		{"other", errors.New("boom"), MsgAnalysisFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestTransportErrorUnwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := &TransportError{Message: MsgConnectionFailed, Err: cause}
	if !errors.Is(err, cause) {
		t.Error("Expected TransportError to unwrap to its cause")
	}
}
