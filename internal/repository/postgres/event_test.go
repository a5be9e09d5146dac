package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ricardo-ochoa/implaeden-backend/internal/model"
)

var eventColumnsList = []string{
	"id", "patient_id", "patient_service_id", "patient_service_group_id",
	"event_type", "message", "meta", "created_by", "created_at", "service_name",
}

func TestEventListOrderAndPagination(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewEventRepository(db)

	newer := time.Date(2026, 4, 2, 12, 0, 0, 0, time.UTC)
	older := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows(eventColumnsList).
		AddRow(int64(30), int64(1), int64(10), nil, "note", "Revisión sin novedades", nil, nil, newer, "Limpieza dental").
		AddRow(int64(29), int64(1), int64(10), nil, "payment_created", "Pago registrado: $500.00", nil, nil, newer, "Limpieza dental").
		AddRow(int64(12), int64(1), nil, nil, "payment_created", "Pago registrado: $800.00", nil, nil, older, nil)

	// Newest entries first; the id tiebreak keeps pages stable when several
	// events share a timestamp. Limit and offset ride as the trailing args.
	mock.ExpectQuery(`ORDER BY e\.created_at DESC, e\.id DESC\s+LIMIT \$2 OFFSET \$3`).
		WithArgs(int64(1), 3, 0).
		WillReturnRows(rows)

	f := &model.EventFilter{Limit: 3, Offset: 0}
	events, err := repo.List(context.Background(), 1, f)
	require.NoError(t, err)
	require.Len(t, events, 3)

	assert.Equal(t, int64(30), events[0].ID)
	assert.Equal(t, int64(29), events[1].ID)
	assert.Equal(t, int64(12), events[2].ID)
	assert.Nil(t, events[2].PatientServiceID)
	require.NotNil(t, events[0].ServiceName)
	assert.Equal(t, "Limpieza dental", *events[0].ServiceName)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventListFilterShiftsPaginationArgs(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewEventRepository(db)

	// With a treatment filter the limit and offset move to $3/$4.
	mock.ExpectQuery(`(?s)e\.patient_service_id = \$2.*ORDER BY e\.created_at DESC, e\.id DESC\s+LIMIT \$3 OFFSET \$4`).
		WithArgs(int64(1), int64(10), 20, 40).
		WillReturnRows(sqlmock.NewRows(eventColumnsList))

	svcID := int64(10)
	f := &model.EventFilter{PatientServiceID: &svcID, Limit: 20, Offset: 40}
	events, err := repo.List(context.Background(), 1, f)
	require.NoError(t, err)
	assert.Empty(t, events)

	assert.NoError(t, mock.ExpectationsWereMet())
}
