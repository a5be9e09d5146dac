package event

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"github.com/ricardo-ochoa/implaeden-backend/internal/model"
)

// Appender is the narrow append side of the ledger. System entries skip
// the user-facing link requirement.
type Appender interface {
	AppendSystem(ctx context.Context, in *model.AppendEvent) (*model.PatientEvent, error)
}

// Recorder is the fire-and-forget side-effect channel used by the
// treatment and payment services. The primary mutation has already
// committed by the time Record runs; an append failure must never turn
// that success into a failed response, so failures are logged and counted
// instead of returned.
type Recorder struct {
	appender Appender
	appends  prometheus.Counter
	failures prometheus.Counter
}

func NewRecorder(appender Appender, appends, failures prometheus.Counter) *Recorder {
	return &Recorder{
		appender: appender,
		appends:  appends,
		failures: failures,
	}
}

// Record appends an entry, containing any error locally.
func (r *Recorder) Record(ctx context.Context, entry *model.AppendEvent) {
	if r.appends != nil {
		r.appends.Inc()
	}

	if _, err := r.appender.AppendSystem(ctx, entry); err != nil {
		if r.failures != nil {
			r.failures.Inc()
		}
		log.Warn().
			Err(err).
			Int64("patient_id", entry.PatientID).
			Str("event_type", entry.EventType).
			Msg("failed to append patient event")
	}
}
