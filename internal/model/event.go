package model

import (
	"encoding/json"
	"time"
)

// Well-known event types. The column is a free-form tag; these are the ones
// the backend itself emits.
const (
	EventTypeNote             = "note"
	EventTypeTreatmentCreated = "treatment_created"
	EventTypeCostChanged      = "cost_changed"
	EventTypePaymentCreated   = "payment_created"
	EventTypePaymentUpdated   = "payment_updated"
	EventTypePaymentDeleted   = "payment_deleted"
)

// PatientEvent is an audit entry in the patient timeline. Only "note"
// events may be edited or deleted afterwards; every other type is an
// append-only system fact.
type PatientEvent struct {
	ID                    int64           `db:"id" json:"id"`
	PatientID             int64           `db:"patient_id" json:"patient_id"`
	PatientServiceID      *int64          `db:"patient_service_id" json:"patient_service_id"`
	PatientServiceGroupID *int64          `db:"patient_service_group_id" json:"patient_service_group_id"`
	EventType             string          `db:"event_type" json:"event_type"`
	Message               string          `db:"message" json:"message"`
	Meta                  json.RawMessage `db:"meta" json:"meta"`
	CreatedBy             *int64          `db:"created_by" json:"created_by"`
	CreatedAt             time.Time       `db:"created_at" json:"created_at"`
	ServiceName           *string         `db:"service_name" json:"service_name,omitempty"`
}

// Mutable reports whether end users may edit or delete this event.
func (e *PatientEvent) Mutable() bool {
	return e.EventType == EventTypeNote
}

// AppendEvent is the input to EventLedger.Append. Meta is opaque and
// serialized as-is.
type AppendEvent struct {
	PatientID             int64       `json:"patient_id"`
	PatientServiceID      *int64      `json:"patient_service_id"`
	PatientServiceGroupID *int64      `json:"patient_service_group_id"`
	EventType             string      `json:"event_type"`
	Message               string      `json:"message"`
	Meta                  interface{} `json:"meta"`
	CreatedBy             *int64      `json:"created_by"`
}

// EventFilter narrows a timeline listing.
type EventFilter struct {
	PatientServiceID      *int64 `form:"patient_service_id"`
	PatientServiceGroupID *int64 `form:"patient_service_group_id"`
	EventType             string `form:"type"`
	Limit                 int    `form:"limit"`
	Offset                int    `form:"offset"`
}

const (
	EventListDefaultLimit = 200
	EventListMaxLimit     = 500
)

// Normalize clamps pagination to the contract: limit <= 500, default 200,
// offset >= 0.
func (f *EventFilter) Normalize() {
	if f.Limit <= 0 {
		f.Limit = EventListDefaultLimit
	}
	if f.Limit > EventListMaxLimit {
		f.Limit = EventListMaxLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
}

// EventPage is one page of a patient timeline plus the total match count.
type EventPage struct {
	Items  []*PatientEvent `json:"items"`
	Total  int             `json:"total"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}

// UpdateNoteRequest edits a note event.
type UpdateNoteRequest struct {
	Message string      `json:"message" binding:"required"`
	Meta    interface{} `json:"meta"`
}
