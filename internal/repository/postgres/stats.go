package postgres

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
)

// MonitorConnections keeps the open-connections gauge in step with the pool.
// It samples on the given interval until the context is cancelled; run it as
// a goroutine next to the server.
func MonitorConnections(ctx context.Context, db *sqlx.DB, gauge prometheus.Gauge, interval time.Duration) {
	gauge.Set(float64(db.Stats().OpenConnections))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			gauge.Set(float64(db.Stats().OpenConnections))
		}
	}
}
