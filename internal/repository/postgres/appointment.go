package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ricardo-ochoa/implaeden-backend/internal/model"
	"github.com/ricardo-ochoa/implaeden-backend/internal/repository"
)

type appointmentRepository struct {
	db *sqlx.DB
}

func NewAppointmentRepository(db *sqlx.DB) repository.AppointmentRepository {
	return &appointmentRepository{db: db}
}

const appointmentViewSelect = `
	SELECT
		c.id,
		c.patient_id,
		c.service_id,
		c.appointment_at,
		s.name AS tratamiento,
		c.observaciones,
		c.created_at,
		c.updated_at
	FROM citas c
	LEFT JOIN services s ON s.id = c.service_id`

func (r *appointmentRepository) ListByPatient(ctx context.Context, patientID int64) ([]*model.AppointmentView, error) {
	query := appointmentViewSelect + `
	WHERE c.patient_id = $1
	ORDER BY c.appointment_at DESC, c.id DESC
	`
	appointments := []*model.AppointmentView{}
	if err := r.db.SelectContext(ctx, &appointments, query, patientID); err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) Get(ctx context.Context, patientID, appointmentID int64) (*model.AppointmentView, error) {
	query := appointmentViewSelect + `
	WHERE c.patient_id = $1 AND c.id = $2
	`
	var a model.AppointmentView
	if err := r.db.GetContext(ctx, &a, query, patientID, appointmentID); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &a, nil
}

func (r *appointmentRepository) Create(ctx context.Context, a *model.Appointment) (int64, error) {
	now := time.Now()
	a.CreatedAt = now
	a.UpdatedAt = now

	var id int64
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO citas
			(patient_id, service_id, appointment_at, observaciones, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		RETURNING id
	`, a.PatientID, a.ServiceID, a.AppointmentAt, a.Observaciones, now).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create appointment: %w", err)
	}
	a.ID = id
	return id, nil
}

func (r *appointmentRepository) Update(ctx context.Context, a *model.Appointment) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE citas
		SET appointment_at = $1,
		    service_id = $2,
		    observaciones = $3,
		    updated_at = NOW()
		WHERE id = $4 AND patient_id = $5
	`, a.AppointmentAt, a.ServiceID, a.Observaciones, a.ID, a.PatientID)
	if err != nil {
		return false, fmt.Errorf("failed to update appointment: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *appointmentRepository) Delete(ctx context.Context, patientID, appointmentID int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM citas WHERE id = $1 AND patient_id = $2
	`, appointmentID, patientID)
	if err != nil {
		return false, fmt.Errorf("failed to delete appointment: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
