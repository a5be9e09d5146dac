package repository

import (
	"context"

	"github.com/ricardo-ochoa/implaeden-backend/internal/model"
)

type TreatmentRepository interface {
	ListByPatient(ctx context.Context, patientID int64) ([]*model.TreatmentView, error)
	ListByGroup(ctx context.Context, patientID, groupID int64) ([]*model.TreatmentView, error)
	Get(ctx context.Context, patientID, treatmentID int64) (*model.Treatment, error)
	// GroupID returns the group of a treatment, or nil when the treatment
	// does not exist.
	GroupID(ctx context.Context, treatmentID int64) (*int64, error)
	// CreateGroup atomically inserts the group row and all member
	// treatments; either everything lands or nothing does.
	CreateGroup(ctx context.Context, group *model.TreatmentGroup, items []*model.Treatment) (int64, error)
	// Update applies the supplied fields; returns false when no row matches
	// the (patient, treatment) pair.
	Update(ctx context.Context, patientID, treatmentID int64, patch *model.TreatmentPatch) (bool, error)
	// DeleteWithEvents removes the treatment's events first, then the row,
	// in one transaction.
	DeleteWithEvents(ctx context.Context, patientID, treatmentID int64) (bool, error)
}

type PaymentRepository interface {
	ListByPatient(ctx context.Context, patientID int64) ([]*model.PaymentView, error)
	Get(ctx context.Context, patientID, paymentID int64) (*model.Payment, error)
	GetView(ctx context.Context, paymentID int64) (*model.PaymentView, error)
	Create(ctx context.Context, p *model.Payment) (int64, error)
	Update(ctx context.Context, p *model.Payment) (bool, error)
	Delete(ctx context.Context, patientID, paymentID int64) (bool, error)
}

type EventRepository interface {
	Insert(ctx context.Context, e *model.PatientEvent) (int64, error)
	Get(ctx context.Context, patientID, eventID int64) (*model.PatientEvent, error)
	GetWithService(ctx context.Context, eventID int64) (*model.PatientEvent, error)
	List(ctx context.Context, patientID int64, f *model.EventFilter) ([]*model.PatientEvent, error)
	Count(ctx context.Context, patientID int64, f *model.EventFilter) (int, error)
	Update(ctx context.Context, patientID, eventID int64, message string, meta []byte) (bool, error)
	Delete(ctx context.Context, patientID, eventID int64) (bool, error)
}

// CatalogRepository is the narrow read-only contract over the reference
// tables (services, payment methods/statuses), so services stay free of
// storage coupling and testable with fakes.
type CatalogRepository interface {
	ServiceExists(ctx context.Context, serviceID int64) (bool, error)
	ServiceName(ctx context.Context, serviceID int64) (string, error)
	// *IDByName return nil (not an error) when no catalog row matches.
	PaymentStatusIDByName(ctx context.Context, name string) (*int64, error)
	PaymentMethodIDByName(ctx context.Context, name string) (*int64, error)
}

type AppointmentRepository interface {
	ListByPatient(ctx context.Context, patientID int64) ([]*model.AppointmentView, error)
	Get(ctx context.Context, patientID, appointmentID int64) (*model.AppointmentView, error)
	Create(ctx context.Context, a *model.Appointment) (int64, error)
	Update(ctx context.Context, a *model.Appointment) (bool, error)
	Delete(ctx context.Context, patientID, appointmentID int64) (bool, error)
}

type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
}
