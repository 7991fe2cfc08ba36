package recorder

import "TrendSignal/internal/model"

// FailureEvent records an evaluation that produced no report.
type FailureEvent struct {
	Symbol  string
	Range   string
	Kind    string
	Message string
}

// Recorder persists produced reports and failures for later analysis.
type Recorder interface {
	RecordSignal(r *model.SignalReport) error
	RecordFailure(evt *FailureEvent) error
	Close() error
}
