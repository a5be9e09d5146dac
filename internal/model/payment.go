package model

import "time"

// Payment is money received against a treatment (a patient_payments row).
// The wire field names keep the product's Spanish vocabulary.
type Payment struct {
	ID               int64     `db:"id" json:"id"`
	PatientID        int64     `db:"patient_id" json:"patient_id"`
	PatientServiceID *int64    `db:"patient_service_id" json:"patient_service_id"`
	Fecha            time.Time `db:"fecha" json:"fecha"`
	Monto            float64   `db:"monto" json:"monto"`
	PaymentMethodID  int64     `db:"payment_method_id" json:"payment_method_id"`
	PaymentStatusID  int64     `db:"payment_status_id" json:"payment_status_id"`
	NumeroFactura    string    `db:"numero_factura" json:"numero_factura"`
	Notas            *string   `db:"notas" json:"notas"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// PaymentView is a payment joined with its treatment, catalog names and the
// derived aggregates. total_pagado and saldo_pendiente are recomputed on
// every read; they are never stored.
type PaymentView struct {
	ID               int64      `db:"id" json:"id"`
	PatientID        int64      `db:"patient_id" json:"patient_id"`
	Fecha            time.Time  `db:"fecha" json:"fecha"`
	PatientServiceID *int64     `db:"patient_service_id" json:"patient_service_id"`
	GroupID          *int64     `db:"group_id" json:"group_id"`
	GroupStartDate   *time.Time `db:"group_start_date" json:"group_start_date"`
	Tratamiento      *string    `db:"tratamiento" json:"tratamiento"`
	TotalCost        *float64   `db:"total_cost" json:"total_cost"`
	Monto            float64    `db:"monto" json:"monto"`
	TotalPagado      float64    `db:"total_pagado" json:"total_pagado"`
	SaldoPendiente   *float64   `db:"saldo_pendiente" json:"saldo_pendiente"`
	PaymentMethodID  *int64     `db:"payment_method_id" json:"payment_method_id"`
	MetodoPago       *string    `db:"metodo_pago" json:"metodo_pago"`
	PaymentStatusID  *int64     `db:"payment_status_id" json:"payment_status_id"`
	Estado           *string    `db:"estado" json:"estado"`
	NumeroFactura    string     `db:"numero_factura" json:"numero_factura"`
	Notas            *string    `db:"notas" json:"notas"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`
}

// CreatePaymentRequest registers a payment. Method and status default by
// catalog-name lookup when omitted.
type CreatePaymentRequest struct {
	Fecha            string  `json:"fecha" binding:"required"`
	PatientServiceID *int64  `json:"patient_service_id"`
	Monto            float64 `json:"monto" binding:"required"`
	PaymentMethodID  *int64  `json:"payment_method_id"`
	PaymentStatusID  *int64  `json:"payment_status_id"`
	Notas            *string `json:"notas"`
}

// UpdatePaymentRequest partially updates a payment. Estado and MetodoPago
// accept catalog names and are resolved to ids.
type UpdatePaymentRequest struct {
	Fecha            *string  `json:"fecha"`
	PatientServiceID *int64   `json:"patient_service_id"`
	Monto            *float64 `json:"monto"`
	PaymentMethodID  *int64   `json:"payment_method_id"`
	PaymentStatusID  *int64   `json:"payment_status_id"`
	Notas            *string  `json:"notas"`
	Estado           *string  `json:"estado"`
	MetodoPago       *string  `json:"metodo_pago"`
}

// SendReceiptRequest emails a payment receipt.
type SendReceiptRequest struct {
	To string `json:"to" binding:"required,email"`
}
