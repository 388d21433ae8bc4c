package model

// Phase is the lifecycle stage of a submission
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseLoading   Phase = "loading"
	PhaseSucceeded Phase = "succeeded"
	PhaseFailed    Phase = "failed"
)

// SubmissionState is an immutable snapshot of the pipeline. Result is set
// only in PhaseSucceeded and Error only in PhaseFailed or after a rejected
// submission.
type SubmissionState struct {
	Phase        Phase
	Generation   uint64
	SubmissionID string
	Result       *AnalysisResult
	Error        string
}

// Loading reports whether a request is in flight
func (s SubmissionState) Loading() bool {
	return s.Phase == PhaseLoading
}

// Event is an input to Reduce
type Event interface {
	isEvent()
}

// SubmitRejected records a submission refused before any I/O. The error is
// shown next to whatever result is already on screen.
type SubmitRejected struct {
	Message string
}

// SubmitStarted moves the state to loading under a new generation
type SubmitStarted struct {
	SubmissionID string
}

// SubmitSucceeded completes the submission issued under Generation
type SubmitSucceeded struct {
	Generation uint64
	Result     *AnalysisResult
}

// SubmitFailed completes the submission issued under Generation with an error
type SubmitFailed struct {
	Generation uint64
	Message    string
}

// ResetRequested discards any result and invalidates in-flight completions
type ResetRequested struct{}

func (SubmitRejected) isEvent()  {}
func (SubmitStarted) isEvent()   {}
func (SubmitSucceeded) isEvent() {}
func (SubmitFailed) isEvent()    {}
func (ResetRequested) isEvent()  {}

// Reduce is the only way a SubmissionState changes
func Reduce(s SubmissionState, e Event) SubmissionState {
	switch e := e.(type) {
	case SubmitRejected:
		if s.Loading() {
			return s
		}
		if s.Phase == "" {
			s.Phase = PhaseIdle
		}
		s.Error = e.Message
		return s

	case SubmitStarted:
		if s.Loading() {
			return s
		}
		return SubmissionState{
			Phase:        PhaseLoading,
			Generation:   s.Generation + 1,
			SubmissionID: e.SubmissionID,
		}

	case SubmitSucceeded:
		if !s.Loading() || e.Generation != s.Generation {
			return s
		}
		return SubmissionState{
			Phase:        PhaseSucceeded,
			Generation:   s.Generation,
			SubmissionID: s.SubmissionID,
			Result:       e.Result,
		}

	case SubmitFailed:
		if !s.Loading() || e.Generation != s.Generation {
			return s
		}
		return SubmissionState{
			Phase:        PhaseFailed,
			Generation:   s.Generation,
			SubmissionID: s.SubmissionID,
			Error:        e.Message,
		}

	case ResetRequested:
		return SubmissionState{Phase: PhaseIdle, Generation: s.Generation + 1}
	}
	return s
}
