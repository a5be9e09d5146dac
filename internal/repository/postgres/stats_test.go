package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonitorConnectionsTracksPool(t *testing.T) {
	db, _ := newMockDB(t)
	gauge := prometheus.NewGauge(prometheus.GaugeOpts{Name: "test_db_connections"})

	ctx, cancel := context.WithCancel(context.Background())

	// Pin one connection so the pool has something to report.
	conn, err := db.Conn(ctx)
	require.NoError(t, err)
	defer conn.Close()

	done := make(chan struct{})
	go func() {
		MonitorConnections(ctx, db, gauge, time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		return testutil.ToFloat64(gauge) == 1
	}, time.Second, time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sampler did not stop on context cancel")
	}
}
