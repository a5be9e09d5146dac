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

type treatmentRepository struct {
	db *sqlx.DB
}

func NewTreatmentRepository(db *sqlx.DB) repository.TreatmentRepository {
	return &treatmentRepository{db: db}
}

const treatmentViewColumns = `
	ps.id AS treatment_id,
	ps.patient_id,
	ps.group_id,
	ps.service_id,
	ps.service_date,
	ps.status,
	ps.total_cost,
	ps.notes,
	s.name AS service_name,
	c.id   AS service_category_id,
	c.name AS service_category,
	c.sort_order AS service_category_sort_order`

func (r *treatmentRepository) ListByPatient(ctx context.Context, patientID int64) ([]*model.TreatmentView, error) {
	query := `
		SELECT ` + treatmentViewColumns + `
		FROM patient_services ps
		JOIN services s ON s.id = ps.service_id
		LEFT JOIN service_categories c ON c.id = s.category_id
		WHERE ps.patient_id = $1
		ORDER BY ps.service_date DESC, ps.id DESC
	`
	treatments := []*model.TreatmentView{}
	if err := r.db.SelectContext(ctx, &treatments, query, patientID); err != nil {
		return nil, fmt.Errorf("failed to list treatments: %w", err)
	}
	return treatments, nil
}

func (r *treatmentRepository) ListByGroup(ctx context.Context, patientID, groupID int64) ([]*model.TreatmentView, error) {
	query := `
		SELECT ` + treatmentViewColumns + `
		FROM patient_services ps
		JOIN services s ON s.id = ps.service_id
		LEFT JOIN service_categories c ON c.id = s.category_id
		WHERE ps.patient_id = $1 AND ps.group_id = $2
		ORDER BY ps.id ASC
	`
	treatments := []*model.TreatmentView{}
	if err := r.db.SelectContext(ctx, &treatments, query, patientID, groupID); err != nil {
		return nil, fmt.Errorf("failed to list group treatments: %w", err)
	}
	return treatments, nil
}

func (r *treatmentRepository) Get(ctx context.Context, patientID, treatmentID int64) (*model.Treatment, error) {
	query := `
		SELECT id, patient_id, group_id, service_id, service_date, status,
		       total_cost, notes, created_by, created_at, updated_at
		FROM patient_services
		WHERE id = $1 AND patient_id = $2
	`
	var t model.Treatment
	if err := r.db.GetContext(ctx, &t, query, treatmentID, patientID); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get treatment: %w", err)
	}
	return &t, nil
}

func (r *treatmentRepository) GroupID(ctx context.Context, treatmentID int64) (*int64, error) {
	var groupID int64
	err := r.db.GetContext(ctx, &groupID,
		`SELECT group_id FROM patient_services WHERE id = $1`, treatmentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to resolve group: %w", err)
	}
	return &groupID, nil
}

func (r *treatmentRepository) CreateGroup(ctx context.Context, group *model.TreatmentGroup, items []*model.Treatment) (int64, error) {
	var groupID int64
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		now := time.Now()
		err := tx.QueryRowxContext(ctx, `
			INSERT INTO patient_service_groups
				(patient_id, title, start_date, status, notes, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $6)
			RETURNING id
		`, group.PatientID, group.Title, group.StartDate, group.Status, group.Notes, now).Scan(&groupID)
		if err != nil {
			return fmt.Errorf("failed to create treatment group: %w", err)
		}

		for _, item := range items {
			err := tx.QueryRowxContext(ctx, `
				INSERT INTO patient_services
					(patient_id, service_id, service_date, notes, status,
					 total_cost, group_id, created_by, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
				RETURNING id
			`, item.PatientID, item.ServiceID, item.ServiceDate, item.Notes,
				item.Status, item.TotalCost, groupID, item.CreatedBy, now).Scan(&item.ID)
			if err != nil {
				return fmt.Errorf("failed to create treatment: %w", err)
			}
			item.GroupID = groupID
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return groupID, nil
}

func (r *treatmentRepository) Update(ctx context.Context, patientID, treatmentID int64, patch *model.TreatmentPatch) (bool, error) {
	sets := []string{}
	args := []interface{}{}

	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.TotalCost != nil {
		add("total_cost", *patch.TotalCost)
	}
	if patch.Notes != nil {
		add("notes", *patch.Notes)
	}
	if patch.ServiceDate != nil {
		add("service_date", *patch.ServiceDate)
	}
	if patch.ServiceID != nil {
		add("service_id", *patch.ServiceID)
	}
	if patch.Status != nil {
		add("status", *patch.Status)
	}
	if len(sets) == 0 {
		return false, fmt.Errorf("no fields to update")
	}
	sets = append(sets, "updated_at = NOW()")

	args = append(args, treatmentID, patientID)
	query := fmt.Sprintf(`
		UPDATE patient_services
		SET %s
		WHERE id = $%d AND patient_id = $%d
	`, strings.Join(sets, ", "), len(args)-1, len(args))

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to update treatment: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *treatmentRepository) DeleteWithEvents(ctx context.Context, patientID, treatmentID int64) (bool, error) {
	var found bool
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		// Dependent audit rows go first so no orphaned events survive.
		_, err := tx.ExecContext(ctx, `
			DELETE FROM patient_treatment_events
			WHERE patient_id = $1 AND patient_service_id = $2
		`, patientID, treatmentID)
		if err != nil {
			return fmt.Errorf("failed to delete treatment events: %w", err)
		}

		result, err := tx.ExecContext(ctx, `
			DELETE FROM patient_services WHERE id = $1 AND patient_id = $2
		`, treatmentID, patientID)
		if err != nil {
			return fmt.Errorf("failed to delete treatment: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		found = affected > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return found, nil
}
