package model

import (
	"strings"
	"time"
)

// TreatmentStatus is the closed set of lifecycle labels for a treatment.
// Free-text input is normalized (case and whitespace insensitive) into one
// of these before validation; anything else is rejected.
type TreatmentStatus string

const (
	TreatmentStatusPending    TreatmentStatus = "Por Iniciar"
	TreatmentStatusInProgress TreatmentStatus = "En proceso"
	TreatmentStatusDone       TreatmentStatus = "Terminado"
)

// ValidTreatmentStatuses returns the canonical labels, for validation
// error payloads.
func ValidTreatmentStatuses() []string {
	return []string{
		string(TreatmentStatusPending),
		string(TreatmentStatusInProgress),
		string(TreatmentStatusDone),
	}
}

// ParseTreatmentStatus normalizes raw status input. Blank input defaults to
// "Por Iniciar". Unrecognized input returns false.
func ParseTreatmentStatus(raw string) (TreatmentStatus, bool) {
	v := strings.ToLower(strings.Join(strings.Fields(raw), " "))
	switch v {
	case "":
		return TreatmentStatusPending, true
	case "por iniciar":
		return TreatmentStatusPending, true
	case "en proceso":
		return TreatmentStatusInProgress, true
	case "terminado":
		return TreatmentStatusDone, true
	}
	return "", false
}

// Treatment is one billable unit of care (a patient_services row). Every
// treatment belongs to a group, even when it was created alone.
type Treatment struct {
	ID          int64           `db:"id" json:"treatment_id"`
	PatientID   int64           `db:"patient_id" json:"patient_id"`
	GroupID     int64           `db:"group_id" json:"group_id"`
	ServiceID   int64           `db:"service_id" json:"service_id"`
	ServiceDate time.Time       `db:"service_date" json:"service_date"`
	Status      TreatmentStatus `db:"status" json:"status"`
	TotalCost   float64         `db:"total_cost" json:"total_cost"`
	Notes       *string         `db:"notes" json:"notes"`
	CreatedBy   *int64          `db:"created_by" json:"created_by,omitempty"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}

// TreatmentGroup binds the treatments created in one request into a single
// billing/scheduling package. The start date shown to clients is derived
// from member service dates at read time, not from this row.
type TreatmentGroup struct {
	ID        int64     `db:"id" json:"id"`
	PatientID int64     `db:"patient_id" json:"patient_id"`
	Title     string    `db:"title" json:"title"`
	StartDate time.Time `db:"start_date" json:"start_date"`
	Status    string    `db:"status" json:"status"`
	Notes     *string   `db:"notes" json:"notes"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// TreatmentView is a treatment joined with its service catalog entry.
type TreatmentView struct {
	ID                       int64           `db:"treatment_id" json:"treatment_id"`
	PatientID                int64           `db:"patient_id" json:"patient_id"`
	GroupID                  int64           `db:"group_id" json:"group_id"`
	ServiceID                int64           `db:"service_id" json:"service_id"`
	ServiceDate              time.Time       `db:"service_date" json:"service_date"`
	Status                   TreatmentStatus `db:"status" json:"status"`
	TotalCost                float64         `db:"total_cost" json:"total_cost"`
	Notes                    *string         `db:"notes" json:"notes"`
	ServiceName              string          `db:"service_name" json:"service_name"`
	ServiceCategoryID        *int64          `db:"service_category_id" json:"service_category_id,omitempty"`
	ServiceCategory          *string         `db:"service_category" json:"service_category,omitempty"`
	ServiceCategorySortOrder *int64          `db:"service_category_sort_order" json:"service_category_sort_order,omitempty"`
}

// CreateTreatmentItem is one entry of a batch create request. Validation
// happens in the service so the single-item and batch body shapes share
// one path.
type CreateTreatmentItem struct {
	ServiceID   int64    `json:"service_id"`
	ServiceDate string   `json:"service_date"`
	Status      string   `json:"status"`
	TotalCost   *float64 `json:"total_cost"`
	Notes       *string  `json:"notes"`
}

// TreatmentBatch is the result of a batch create: the freshly created group
// id and its member rows.
type TreatmentBatch struct {
	GroupID int64            `json:"group_id"`
	Items   []*TreatmentView `json:"items"`
}

// TreatmentPatch carries the partial-update fields; each present field is
// validated independently.
type TreatmentPatch struct {
	TotalCost   *float64 `json:"total_cost"`
	Notes       *string  `json:"notes"`
	ServiceDate *string  `json:"service_date"`
	ServiceID   *int64   `json:"service_id"`
	Status      *string  `json:"status"`
}

// Empty reports whether no field was supplied.
func (p *TreatmentPatch) Empty() bool {
	return p.TotalCost == nil && p.Notes == nil && p.ServiceDate == nil &&
		p.ServiceID == nil && p.Status == nil
}

// SetStatusRequest is the body of the narrow status update.
type SetStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// SetCostRequest is the body of the narrow cost update.
type SetCostRequest struct {
	TotalCost *float64 `json:"total_cost"`
}
