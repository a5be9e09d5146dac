package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ricardo-ochoa/implaeden-backend/internal/model"
	"github.com/ricardo-ochoa/implaeden-backend/internal/repository"
)

type eventRepository struct {
	db *sqlx.DB
}

func NewEventRepository(db *sqlx.DB) repository.EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) Insert(ctx context.Context, e *model.PatientEvent) (int64, error) {
	e.CreatedAt = time.Now()

	var meta interface{}
	if len(e.Meta) > 0 {
		meta = []byte(e.Meta)
	}

	var id int64
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO patient_treatment_events
			(patient_id, patient_service_id, patient_service_group_id,
			 event_type, message, meta, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`, e.PatientID, e.PatientServiceID, e.PatientServiceGroupID,
		e.EventType, e.Message, meta, e.CreatedBy, e.CreatedAt).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert patient event: %w", err)
	}
	e.ID = id
	return id, nil
}

func (r *eventRepository) Get(ctx context.Context, patientID, eventID int64) (*model.PatientEvent, error) {
	query := `
		SELECT id, patient_id, patient_service_id, patient_service_group_id,
		       event_type, message, meta, created_by, created_at
		FROM patient_treatment_events
		WHERE id = $1 AND patient_id = $2
	`
	var e model.PatientEvent
	if err := r.db.GetContext(ctx, &e, query, eventID, patientID); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get patient event: %w", err)
	}
	return &e, nil
}

func (r *eventRepository) GetWithService(ctx context.Context, eventID int64) (*model.PatientEvent, error) {
	query := `
		SELECT
			e.id, e.patient_id, e.patient_service_id, e.patient_service_group_id,
			e.event_type, e.message, e.meta, e.created_by, e.created_at,
			s.name AS service_name
		FROM patient_treatment_events e
		LEFT JOIN patient_services ps ON ps.id = e.patient_service_id
		LEFT JOIN services s ON s.id = ps.service_id
		WHERE e.id = $1
	`
	var e model.PatientEvent
	if err := r.db.GetContext(ctx, &e, query, eventID); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get patient event: %w", err)
	}
	return &e, nil
}

// eventWhere builds the shared WHERE clause for List and Count so both see
// the same page universe. A group filter matches events tagged with the
// group directly and events hung off any treatment of the group.
func eventWhere(patientID int64, f *model.EventFilter) (string, []interface{}) {
	where := []string{"e.patient_id = $1"}
	args := []interface{}{patientID}

	if f.PatientServiceID != nil {
		args = append(args, *f.PatientServiceID)
		where = append(where, fmt.Sprintf("e.patient_service_id = $%d", len(args)))
	}
	if f.PatientServiceGroupID != nil {
		args = append(args, *f.PatientServiceGroupID)
		n := len(args)
		where = append(where, fmt.Sprintf("(e.patient_service_group_id = $%d OR ps.group_id = $%d)", n, n))
	}
	if f.EventType != "" {
		args = append(args, f.EventType)
		where = append(where, fmt.Sprintf("e.event_type = $%d", len(args)))
	}

	return strings.Join(where, " AND "), args
}

func (r *eventRepository) List(ctx context.Context, patientID int64, f *model.EventFilter) ([]*model.PatientEvent, error) {
	whereSQL, args := eventWhere(patientID, f)

	args = append(args, f.Limit, f.Offset)
	query := fmt.Sprintf(`
		SELECT
			e.id, e.patient_id, e.patient_service_id, e.patient_service_group_id,
			e.event_type, e.message, e.meta, e.created_by, e.created_at,
			s.name AS service_name
		FROM patient_treatment_events e
		LEFT JOIN patient_services ps ON ps.id = e.patient_service_id
		LEFT JOIN services s ON s.id = ps.service_id
		WHERE %s
		ORDER BY e.created_at DESC, e.id DESC
		LIMIT $%d OFFSET $%d
	`, whereSQL, len(args)-1, len(args))

	events := []*model.PatientEvent{}
	if err := r.db.SelectContext(ctx, &events, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list patient events: %w", err)
	}
	return events, nil
}

func (r *eventRepository) Count(ctx context.Context, patientID int64, f *model.EventFilter) (int, error) {
	whereSQL, args := eventWhere(patientID, f)

	query := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM patient_treatment_events e
		LEFT JOIN patient_services ps ON ps.id = e.patient_service_id
		WHERE %s
	`, whereSQL)

	var total int
	if err := r.db.GetContext(ctx, &total, query, args...); err != nil {
		return 0, fmt.Errorf("failed to count patient events: %w", err)
	}
	return total, nil
}

func (r *eventRepository) Update(ctx context.Context, patientID, eventID int64, message string, meta []byte) (bool, error) {
	var metaArg interface{}
	if len(meta) > 0 {
		metaArg = meta
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE patient_treatment_events
		SET message = $1, meta = $2
		WHERE id = $3 AND patient_id = $4
	`, message, metaArg, eventID, patientID)
	if err != nil {
		return false, fmt.Errorf("failed to update patient event: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *eventRepository) Delete(ctx context.Context, patientID, eventID int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM patient_treatment_events WHERE id = $1 AND patient_id = $2
	`, eventID, patientID)
	if err != nil {
		return false, fmt.Errorf("failed to delete patient event: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
