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

type paymentRepository struct {
	db *sqlx.DB
}

func NewPaymentRepository(db *sqlx.DB) repository.PaymentRepository {
	return &paymentRepository{db: db}
}

// Joined view of a payment with its treatment, catalog names and the
// aggregates derived at query time. total_pagado is the sum over all
// payments of the same treatment; saldo_pendiente is cost minus that sum.
const paymentViewSelect = `
	SELECT
		pp.id,
		pp.patient_id,
		pp.fecha,
		pp.patient_service_id,
		sv.group_id,
		gstart.group_start_date,
		s.name AS tratamiento,
		sv.total_cost,
		pp.monto,
		COALESCE(pagg.total_pagado, 0) AS total_pagado,
		(sv.total_cost - COALESCE(pagg.total_pagado, 0)) AS saldo_pendiente,
		pm.id   AS payment_method_id,
		pm.name AS metodo_pago,
		ps.id   AS payment_status_id,
		ps.name AS estado,
		pp.numero_factura,
		pp.notas,
		pp.created_at,
		pp.updated_at
	FROM patient_payments pp
	LEFT JOIN patient_services sv ON sv.id = pp.patient_service_id
	LEFT JOIN services s ON s.id = sv.service_id
	LEFT JOIN (
		SELECT patient_service_id, SUM(monto) AS total_pagado
		FROM patient_payments
		WHERE patient_service_id IS NOT NULL
		GROUP BY patient_service_id
	) pagg ON pagg.patient_service_id = pp.patient_service_id
	LEFT JOIN payment_methods pm ON pm.id = pp.payment_method_id
	LEFT JOIN payment_statuses ps ON ps.id = pp.payment_status_id
	LEFT JOIN (
		SELECT sv2.group_id, MIN(sv2.service_date) AS group_start_date
		FROM patient_services sv2
		GROUP BY sv2.group_id
	) gstart ON gstart.group_id = sv.group_id`

func (r *paymentRepository) ListByPatient(ctx context.Context, patientID int64) ([]*model.PaymentView, error) {
	// Ordering is a user-facing contract: grouped payments first, most
	// recently active group on top, then per-payment recency.
	query := paymentViewSelect + `
	LEFT JOIN (
		SELECT sv3.group_id, MAX(pp3.created_at) AS group_last_activity
		FROM patient_payments pp3
		JOIN patient_services sv3 ON sv3.id = pp3.patient_service_id
		WHERE pp3.patient_id = $1
		GROUP BY sv3.group_id
	) glast ON glast.group_id = sv.group_id
	WHERE pp.patient_id = $1
	ORDER BY
		(sv.group_id IS NULL) ASC,
		glast.group_last_activity DESC NULLS LAST,
		sv.group_id DESC NULLS LAST,
		pp.created_at DESC
	`
	payments := []*model.PaymentView{}
	if err := r.db.SelectContext(ctx, &payments, query, patientID); err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, nil
}

func (r *paymentRepository) Get(ctx context.Context, patientID, paymentID int64) (*model.Payment, error) {
	query := `
		SELECT id, patient_id, patient_service_id, fecha, monto,
		       payment_method_id, payment_status_id, numero_factura, notas,
		       created_at, updated_at
		FROM patient_payments
		WHERE id = $1 AND patient_id = $2
	`
	var p model.Payment
	if err := r.db.GetContext(ctx, &p, query, paymentID, patientID); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return &p, nil
}

func (r *paymentRepository) GetView(ctx context.Context, paymentID int64) (*model.PaymentView, error) {
	query := paymentViewSelect + `
	WHERE pp.id = $1
	`
	var v model.PaymentView
	if err := r.db.GetContext(ctx, &v, query, paymentID); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get payment view: %w", err)
	}
	return &v, nil
}

func (r *paymentRepository) Create(ctx context.Context, p *model.Payment) (int64, error) {
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	var id int64
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO patient_payments
			(patient_id, patient_service_id, fecha, monto, payment_method_id,
			 payment_status_id, numero_factura, notas, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
		RETURNING id
	`, p.PatientID, p.PatientServiceID, p.Fecha, p.Monto, p.PaymentMethodID,
		p.PaymentStatusID, p.NumeroFactura, p.Notas, now).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create payment: %w", err)
	}
	p.ID = id
	return id, nil
}

func (r *paymentRepository) Update(ctx context.Context, p *model.Payment) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE patient_payments
		SET fecha = $1,
		    patient_service_id = $2,
		    monto = $3,
		    payment_method_id = $4,
		    payment_status_id = $5,
		    notas = $6,
		    updated_at = NOW()
		WHERE id = $7 AND patient_id = $8
	`, p.Fecha, p.PatientServiceID, p.Monto, p.PaymentMethodID,
		p.PaymentStatusID, p.Notas, p.ID, p.PatientID)
	if err != nil {
		return false, fmt.Errorf("failed to update payment: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *paymentRepository) Delete(ctx context.Context, patientID, paymentID int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM patient_payments WHERE id = $1 AND patient_id = $2
	`, paymentID, patientID)
	if err != nil {
		return false, fmt.Errorf("failed to delete payment: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
