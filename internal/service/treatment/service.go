package treatment

import (
	"context"
	"fmt"
	"time"

	"github.com/ricardo-ochoa/implaeden-backend/internal/model"
	"github.com/ricardo-ochoa/implaeden-backend/internal/repository"
	"github.com/ricardo-ochoa/implaeden-backend/pkg/errors"
)

const serviceDateLayout = "2006-01-02"

// EventRecorder is the fire-and-forget audit channel; mutations here are
// observable exclusively through the events it records.
type EventRecorder interface {
	Record(ctx context.Context, entry *model.AppendEvent)
}

type Service struct {
	repo     repository.TreatmentRepository
	catalog  repository.CatalogRepository
	recorder EventRecorder
}

func NewService(repo repository.TreatmentRepository, catalog repository.CatalogRepository, recorder EventRecorder) *Service {
	return &Service{
		repo:     repo,
		catalog:  catalog,
		recorder: recorder,
	}
}

func (s *Service) List(ctx context.Context, patientID int64) ([]*model.TreatmentView, error) {
	if patientID <= 0 {
		return nil, errors.Validation("invalid patient id")
	}
	treatments, err := s.repo.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, errors.Internal(err)
	}
	return treatments, nil
}

// CreateBatch creates a package of treatments. All items are validated
// before any row is written; the group row and every member then land in
// one transaction, so a failed batch leaves nothing behind.
func (s *Service) CreateBatch(ctx context.Context, patientID int64, createdBy *int64, items []model.CreateTreatmentItem) (*model.TreatmentBatch, error) {
	if patientID <= 0 {
		return nil, errors.Validation("invalid patient id")
	}
	if len(items) == 0 {
		return nil, errors.Validation("at least one service is required")
	}

	members := make([]*model.Treatment, 0, len(items))
	var startDate time.Time

	for _, item := range items {
		if item.ServiceID <= 0 {
			return nil, errors.Validation("service_id is required")
		}
		exists, err := s.catalog.ServiceExists(ctx, item.ServiceID)
		if err != nil {
			return nil, errors.Internal(err)
		}
		if !exists {
			return nil, errors.Validation(fmt.Sprintf("service_id %d does not exist", item.ServiceID))
		}

		serviceDate, err := parseServiceDate(item.ServiceDate)
		if err != nil {
			return nil, err
		}

		status, ok := model.ParseTreatmentStatus(item.Status)
		if !ok {
			return nil, errors.ValidationWithValues("invalid status", model.ValidTreatmentStatuses())
		}

		cost, err := normalizeCost(item.TotalCost)
		if err != nil {
			return nil, err
		}

		if startDate.IsZero() || serviceDate.Before(startDate) {
			startDate = serviceDate
		}

		members = append(members, &model.Treatment{
			PatientID:   patientID,
			ServiceID:   item.ServiceID,
			ServiceDate: serviceDate,
			Status:      status,
			TotalCost:   cost,
			Notes:       item.Notes,
			CreatedBy:   createdBy,
		})
	}

	title, err := s.catalog.ServiceName(ctx, members[0].ServiceID)
	if err != nil {
		return nil, errors.Internal(err)
	}

	group := &model.TreatmentGroup{
		PatientID: patientID,
		Title:     title,
		StartDate: startDate,
		Status:    string(model.TreatmentStatusPending),
	}

	groupID, err := s.repo.CreateGroup(ctx, group, members)
	if err != nil {
		return nil, errors.Internal(err)
	}

	created, err := s.repo.ListByGroup(ctx, patientID, groupID)
	if err != nil {
		return nil, errors.Internal(err)
	}

	treatmentIDs := make([]int64, len(members))
	for i, m := range members {
		treatmentIDs[i] = m.ID
	}
	s.recorder.Record(ctx, &model.AppendEvent{
		PatientID:             patientID,
		PatientServiceGroupID: &groupID,
		EventType:             model.EventTypeTreatmentCreated,
		Message:               fmt.Sprintf("Paquete creado con %d tratamiento(s)", len(members)),
		Meta: model.JSONMap{
			"group_id":      groupID,
			"treatment_ids": treatmentIDs,
		},
		CreatedBy: createdBy,
	})

	return &model.TreatmentBatch{GroupID: groupID, Items: created}, nil
}

// Patch applies a partial update. Each present field is validated on its
// own; a cost change reads the previous value first so the audit entry can
// report old against new.
func (s *Service) Patch(ctx context.Context, patientID, treatmentID int64, actor *int64, patch *model.TreatmentPatch) error {
	if patch == nil || patch.Empty() {
		return errors.Validation("no fields to update")
	}

	var oldCost *float64
	var groupID *int64

	if patch.TotalCost != nil {
		prev, err := s.repo.Get(ctx, patientID, treatmentID)
		if err != nil {
			return errors.Internal(err)
		}
		if prev == nil {
			return errors.NotFound("treatment")
		}
		oldCost = &prev.TotalCost
		groupID = &prev.GroupID

		if *patch.TotalCost < 0 {
			return errors.Validation("total_cost must be non-negative")
		}
	}

	if patch.ServiceDate != nil {
		if _, err := parseServiceDate(*patch.ServiceDate); err != nil {
			return err
		}
	}

	if patch.ServiceID != nil {
		exists, err := s.catalog.ServiceExists(ctx, *patch.ServiceID)
		if err != nil {
			return errors.Internal(err)
		}
		if !exists {
			return errors.Validation(fmt.Sprintf("service_id %d does not exist", *patch.ServiceID))
		}
	}

	if patch.Status != nil {
		status, ok := model.ParseTreatmentStatus(*patch.Status)
		if !ok {
			return errors.ValidationWithValues("invalid status", model.ValidTreatmentStatuses())
		}
		canonical := string(status)
		patch.Status = &canonical
	}

	ok, err := s.repo.Update(ctx, patientID, treatmentID, patch)
	if err != nil {
		return errors.Internal(err)
	}
	if !ok {
		return errors.NotFound("treatment")
	}

	if patch.TotalCost != nil && oldCost != nil && *oldCost != *patch.TotalCost {
		s.recordCostChange(ctx, patientID, treatmentID, groupID, *oldCost, *patch.TotalCost, actor)
	}
	return nil
}

// SetStatus is the narrow status update.
func (s *Service) SetStatus(ctx context.Context, patientID, treatmentID int64, rawStatus string) error {
	status, ok := model.ParseTreatmentStatus(rawStatus)
	if !ok {
		return errors.ValidationWithValues("invalid status", model.ValidTreatmentStatuses())
	}

	canonical := string(status)
	updated, err := s.repo.Update(ctx, patientID, treatmentID, &model.TreatmentPatch{Status: &canonical})
	if err != nil {
		return errors.Internal(err)
	}
	if !updated {
		return errors.NotFound("treatment")
	}
	return nil
}

// SetCost is the narrow cost update. An absent cost means zero. The prior
// row is read first so the emitted event carries the old value and the
// treatment's group.
func (s *Service) SetCost(ctx context.Context, patientID, treatmentID int64, actor *int64, cost *float64) (float64, error) {
	newCost, err := normalizeCost(cost)
	if err != nil {
		return 0, err
	}

	prev, err := s.repo.Get(ctx, patientID, treatmentID)
	if err != nil {
		return 0, errors.Internal(err)
	}
	if prev == nil {
		return 0, errors.NotFound("treatment")
	}

	updated, err := s.repo.Update(ctx, patientID, treatmentID, &model.TreatmentPatch{TotalCost: &newCost})
	if err != nil {
		return 0, errors.Internal(err)
	}
	if !updated {
		return 0, errors.NotFound("treatment")
	}

	if prev.TotalCost != newCost {
		s.recordCostChange(ctx, patientID, treatmentID, &prev.GroupID, prev.TotalCost, newCost, actor)
	}
	return newCost, nil
}

// Delete removes a treatment and its dependent events. Ownership is part
// of the match: another patient's treatment stays untouched.
func (s *Service) Delete(ctx context.Context, patientID, treatmentID int64) error {
	found, err := s.repo.DeleteWithEvents(ctx, patientID, treatmentID)
	if err != nil {
		return errors.Internal(err)
	}
	if !found {
		return errors.NotFound("treatment")
	}
	return nil
}

func (s *Service) recordCostChange(ctx context.Context, patientID, treatmentID int64, groupID *int64, oldCost, newCost float64, actor *int64) {
	s.recorder.Record(ctx, &model.AppendEvent{
		PatientID:             patientID,
		PatientServiceID:      &treatmentID,
		PatientServiceGroupID: groupID,
		EventType:             model.EventTypeCostChanged,
		Message:               fmt.Sprintf("Costo actualizado: $%.2f → $%.2f", oldCost, newCost),
		Meta: model.JSONMap{
			"old_cost": oldCost,
			"new_cost": newCost,
		},
		CreatedBy: actor,
	})
}

func parseServiceDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, errors.Validation("service_date is required")
	}
	date, err := time.Parse(serviceDateLayout, raw)
	if err != nil {
		return time.Time{}, errors.Validation("service_date must be a YYYY-MM-DD date")
	}
	return date, nil
}

func normalizeCost(cost *float64) (float64, error) {
	if cost == nil {
		return 0, nil
	}
	if *cost < 0 {
		return 0, errors.Validation("total_cost must be non-negative")
	}
	return *cost, nil
}
