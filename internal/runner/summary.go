package runner

import (
	"log/slog"
	"time"

	"github.com/olmmcc/emaild/internal/notify"
)

// Status is the outcome of one notice.
type Status string

const (
	StatusSent    Status = "sent"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// Skip reasons.
const (
	ReasonNothingToSend = "nothing to send"
	ReasonNoRecipients  = "no recipients"
	ReasonReadFailed    = "read failed"
)

// SendResult reports what happened to one notice.
type SendResult struct {
	Err        error
	Kind       notify.Kind
	Status     Status
	Reason     string
	Recipients int
}

// Summary reports a completed run.
type Summary struct {
	RunID      string
	Results    []SendResult
	ReadErrors []error
	Duration   time.Duration
	Sent       int
	Failed     int
	Skipped    int
}

func (s *Summary) add(r SendResult) {
	s.Results = append(s.Results, r)
	switch r.Status {
	case StatusSent:
		s.Sent++
	case StatusFailed:
		s.Failed++
	default:
		s.Skipped++
	}
}

// LogValue implements slog.LogValuer.
func (s *Summary) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int("sent", s.Sent),
		slog.Int("failed", s.Failed),
		slog.Int("skipped", s.Skipped),
		slog.Int("read_errors", len(s.ReadErrors)),
		slog.Duration("duration", s.Duration),
	}
	for _, r := range s.Results {
		attrs = append(attrs, slog.String(string(r.Kind), string(r.Status)))
	}
	return slog.GroupValue(attrs...)
}
