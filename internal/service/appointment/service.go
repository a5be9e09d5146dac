package appointment

import (
	"context"
	"fmt"
	"time"

	"github.com/ricardo-ochoa/implaeden-backend/internal/model"
	"github.com/ricardo-ochoa/implaeden-backend/internal/repository"
	"github.com/ricardo-ochoa/implaeden-backend/pkg/errors"
)

// Accepted appointment_at formats, tried in order. The product's clients
// send either a full timestamp or a bare date.
var appointmentAtLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

type Service struct {
	repo    repository.AppointmentRepository
	catalog repository.CatalogRepository
}

func NewService(repo repository.AppointmentRepository, catalog repository.CatalogRepository) *Service {
	return &Service{repo: repo, catalog: catalog}
}

func (s *Service) List(ctx context.Context, patientID int64) ([]*model.AppointmentView, error) {
	if patientID <= 0 {
		return nil, errors.Validation("invalid patient id")
	}
	appointments, err := s.repo.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, errors.Internal(err)
	}
	return appointments, nil
}

func (s *Service) Get(ctx context.Context, patientID, appointmentID int64) (*model.AppointmentView, error) {
	a, err := s.repo.Get(ctx, patientID, appointmentID)
	if err != nil {
		return nil, errors.Internal(err)
	}
	if a == nil {
		return nil, errors.NotFound("appointment")
	}
	return a, nil
}

func (s *Service) Create(ctx context.Context, patientID int64, req *model.SaveAppointmentRequest) (*model.AppointmentView, error) {
	if patientID <= 0 {
		return nil, errors.Validation("invalid patient id")
	}

	a, err := s.validate(ctx, patientID, req)
	if err != nil {
		return nil, err
	}

	id, err := s.repo.Create(ctx, a)
	if err != nil {
		return nil, errors.Internal(err)
	}

	created, err := s.repo.Get(ctx, patientID, id)
	if err != nil {
		return nil, errors.Internal(err)
	}
	if created == nil {
		return nil, errors.Internal(fmt.Errorf("appointment %d vanished after insert", id))
	}
	return created, nil
}

// Update replaces the appointment's date, service and observaciones. The
// same required-field rule as Create applies; a partial body would
// otherwise silently blank the row.
func (s *Service) Update(ctx context.Context, patientID, appointmentID int64, req *model.SaveAppointmentRequest) (*model.AppointmentView, error) {
	a, err := s.validate(ctx, patientID, req)
	if err != nil {
		return nil, err
	}
	a.ID = appointmentID

	ok, err := s.repo.Update(ctx, a)
	if err != nil {
		return nil, errors.Internal(err)
	}
	if !ok {
		return nil, errors.NotFound("appointment")
	}

	updated, err := s.repo.Get(ctx, patientID, appointmentID)
	if err != nil {
		return nil, errors.Internal(err)
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, patientID, appointmentID int64) error {
	ok, err := s.repo.Delete(ctx, patientID, appointmentID)
	if err != nil {
		return errors.Internal(err)
	}
	if !ok {
		return errors.NotFound("appointment")
	}
	return nil
}

func (s *Service) validate(ctx context.Context, patientID int64, req *model.SaveAppointmentRequest) (*model.Appointment, error) {
	at, err := parseAppointmentAt(req.AppointmentAt)
	if err != nil {
		return nil, err
	}

	if req.ServiceID <= 0 {
		return nil, errors.Validation("service_id is required")
	}
	exists, err := s.catalog.ServiceExists(ctx, req.ServiceID)
	if err != nil {
		return nil, errors.Internal(err)
	}
	if !exists {
		return nil, errors.Validation(fmt.Sprintf("service_id %d does not exist", req.ServiceID))
	}

	return &model.Appointment{
		PatientID:     patientID,
		ServiceID:     req.ServiceID,
		AppointmentAt: at,
		Observaciones: req.Observaciones,
	}, nil
}

func parseAppointmentAt(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, errors.Validation("appointment_at is required")
	}
	for _, layout := range appointmentAtLayouts {
		if at, err := time.Parse(layout, raw); err == nil {
			return at, nil
		}
	}
	return time.Time{}, errors.Validation("appointment_at must be a date or date-time")
}
