package event

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/ricardo-ochoa/implaeden-backend/internal/model"
)

type fakeAppender struct {
	entries []*model.AppendEvent
	err     error
}

func (f *fakeAppender) AppendSystem(ctx context.Context, in *model.AppendEvent) (*model.PatientEvent, error) {
	f.entries = append(f.entries, in)
	if f.err != nil {
		return nil, f.err
	}
	return &model.PatientEvent{ID: 1, PatientID: in.PatientID}, nil
}

func TestRecorderCountsAppends(t *testing.T) {
	appender := &fakeAppender{}
	appends := prometheus.NewCounter(prometheus.CounterOpts{Name: "test_appends_total"})
	failures := prometheus.NewCounter(prometheus.CounterOpts{Name: "test_failures_total"})
	r := NewRecorder(appender, appends, failures)

	svcID := int64(3)
	r.Record(context.Background(), &model.AppendEvent{
		PatientID:        1,
		PatientServiceID: &svcID,
		EventType:        model.EventTypeCostChanged,
		Message:          "Costo actualizado",
	})

	assert.Len(t, appender.entries, 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(appends))
	assert.Equal(t, 0.0, testutil.ToFloat64(failures))
}

func TestRecorderContainsFailures(t *testing.T) {
	appender := &fakeAppender{err: errors.New("insert failed")}
	appends := prometheus.NewCounter(prometheus.CounterOpts{Name: "test_appends_total"})
	failures := prometheus.NewCounter(prometheus.CounterOpts{Name: "test_failures_total"})
	r := NewRecorder(appender, appends, failures)

	assert.NotPanics(t, func() {
		svcID := int64(3)
		r.Record(context.Background(), &model.AppendEvent{
			PatientID:        1,
			PatientServiceID: &svcID,
			EventType:        model.EventTypePaymentCreated,
			Message:          "Pago registrado",
		})
	})

	assert.Equal(t, 1.0, testutil.ToFloat64(appends))
	assert.Equal(t, 1.0, testutil.ToFloat64(failures))
}

func TestRecorderNilCounters(t *testing.T) {
	r := NewRecorder(&fakeAppender{err: errors.New("boom")}, nil, nil)

	assert.NotPanics(t, func() {
		svcID := int64(3)
		r.Record(context.Background(), &model.AppendEvent{
			PatientID:        1,
			PatientServiceID: &svcID,
			Message:          "nota",
		})
	})
}
