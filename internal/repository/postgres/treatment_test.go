package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var treatmentViewColumnsList = []string{
	"treatment_id", "patient_id", "group_id", "service_id", "service_date",
	"status", "total_cost", "notes", "service_name", "service_category_id",
	"service_category", "service_category_sort_order",
}

func TestTreatmentListByPatientOrderClause(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTreatmentRepository(db)

	newer := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	older := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows(treatmentViewColumnsList).
		AddRow(int64(9), int64(1), int64(3), int64(2), newer, "En proceso", 2500.0, nil, "Endodoncia", nil, nil, nil).
		AddRow(int64(8), int64(1), int64(3), int64(1), newer, "En proceso", 800.0, nil, "Limpieza dental", nil, nil, nil).
		AddRow(int64(4), int64(1), int64(2), int64(1), older, "Terminado", 800.0, nil, "Limpieza dental", nil, nil, nil)

	// Newest service_date first, id descending inside a same-date batch.
	mock.ExpectQuery(`ORDER BY ps\.service_date DESC, ps\.id DESC`).
		WithArgs(int64(1)).
		WillReturnRows(rows)

	treatments, err := repo.ListByPatient(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, treatments, 3)

	assert.Equal(t, int64(9), treatments[0].ID)
	assert.Equal(t, int64(8), treatments[1].ID)
	assert.Equal(t, int64(4), treatments[2].ID)
	assert.Equal(t, "Endodoncia", treatments[0].ServiceName)
	assert.Equal(t, newer, treatments[1].ServiceDate)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTreatmentListByGroupOrderClause(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTreatmentRepository(db)

	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(treatmentViewColumnsList).
		AddRow(int64(8), int64(1), int64(3), int64(1), day, "En proceso", 800.0, nil, "Limpieza dental", nil, nil, nil).
		AddRow(int64(9), int64(1), int64(3), int64(2), day, "En proceso", 2500.0, nil, "Endodoncia", nil, nil, nil)

	// Group members keep insertion order.
	mock.ExpectQuery(`ORDER BY ps\.id ASC`).
		WithArgs(int64(1), int64(3)).
		WillReturnRows(rows)

	treatments, err := repo.ListByGroup(context.Background(), 1, 3)
	require.NoError(t, err)
	require.Len(t, treatments, 2)
	assert.Equal(t, int64(8), treatments[0].ID)
	assert.Equal(t, int64(9), treatments[1].ID)

	assert.NoError(t, mock.ExpectationsWereMet())
}
