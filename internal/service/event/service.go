package event

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ricardo-ochoa/implaeden-backend/internal/model"
	"github.com/ricardo-ochoa/implaeden-backend/internal/repository"
	"github.com/ricardo-ochoa/implaeden-backend/internal/service/grouping"
	"github.com/ricardo-ochoa/implaeden-backend/pkg/errors"
)

// Service is the patient event ledger: an append-only audit log tied to a
// patient and to a treatment or treatment group. Entries are immutable
// once written, except user notes.
type Service struct {
	repo   repository.EventRepository
	groups *grouping.Resolver
}

func NewService(repo repository.EventRepository, groups *grouping.Resolver) *Service {
	return &Service{repo: repo, groups: groups}
}

// Append validates and inserts one user-submitted ledger entry. The entry
// must link to a treatment or a group; when only the treatment is given,
// its group is resolved before insert.
func (s *Service) Append(ctx context.Context, in *model.AppendEvent) (*model.PatientEvent, error) {
	if in.PatientServiceID == nil && in.PatientServiceGroupID == nil {
		return nil, errors.Validation("either patient_service_id or patient_service_group_id is required")
	}
	return s.append(ctx, in)
}

// AppendSystem inserts a backend-emitted lifecycle entry. The link rule
// does not apply here: a payment that was never assigned to a treatment
// still gets its payment_created/updated/deleted trail under the patient.
func (s *Service) AppendSystem(ctx context.Context, in *model.AppendEvent) (*model.PatientEvent, error) {
	return s.append(ctx, in)
}

func (s *Service) append(ctx context.Context, in *model.AppendEvent) (*model.PatientEvent, error) {
	if in.PatientID <= 0 {
		return nil, errors.Validation("patient_id is required")
	}
	if strings.TrimSpace(in.Message) == "" {
		return nil, errors.Validation("message is required")
	}

	eventType := in.EventType
	if eventType == "" {
		eventType = model.EventTypeNote
	}

	groupID, err := s.groups.Resolve(ctx, in.PatientServiceGroupID, in.PatientServiceID)
	if err != nil {
		return nil, errors.Internal(err)
	}

	meta, err := marshalMeta(in.Meta)
	if err != nil {
		return nil, errors.Validation("meta is not serializable")
	}

	entry := &model.PatientEvent{
		PatientID:             in.PatientID,
		PatientServiceID:      in.PatientServiceID,
		PatientServiceGroupID: groupID,
		EventType:             eventType,
		Message:               in.Message,
		Meta:                  meta,
		CreatedBy:             in.CreatedBy,
	}

	id, err := s.repo.Insert(ctx, entry)
	if err != nil {
		return nil, errors.Internal(err)
	}

	out, err := s.repo.GetWithService(ctx, id)
	if err != nil {
		return nil, errors.Internal(err)
	}
	if out == nil {
		return entry, nil
	}
	out.Meta = model.SafeRawMessage(out.Meta)
	return out, nil
}

// List returns one timeline page, newest first, plus the total count for
// pagination.
func (s *Service) List(ctx context.Context, patientID int64, filter *model.EventFilter) (*model.EventPage, error) {
	if patientID <= 0 {
		return nil, errors.Validation("invalid patient id")
	}
	if filter == nil {
		filter = &model.EventFilter{}
	}
	filter.Normalize()

	total, err := s.repo.Count(ctx, patientID, filter)
	if err != nil {
		return nil, errors.Internal(err)
	}

	items, err := s.repo.List(ctx, patientID, filter)
	if err != nil {
		return nil, errors.Internal(err)
	}
	for _, item := range items {
		item.Meta = model.SafeRawMessage(item.Meta)
	}

	return &model.EventPage{
		Items:  items,
		Total:  total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}, nil
}

// UpdateNote edits a note event. System-generated entries are permanent.
func (s *Service) UpdateNote(ctx context.Context, patientID, eventID int64, message string, meta interface{}) error {
	if strings.TrimSpace(message) == "" {
		return errors.Validation("message is required")
	}

	entry, err := s.repo.Get(ctx, patientID, eventID)
	if err != nil {
		return errors.Internal(err)
	}
	if entry == nil {
		return errors.NotFound("event")
	}
	if !entry.Mutable() {
		return errors.Forbidden("only note events can be edited")
	}

	rawMeta, err := marshalMeta(meta)
	if err != nil {
		return errors.Validation("meta is not serializable")
	}

	ok, err := s.repo.Update(ctx, patientID, eventID, message, rawMeta)
	if err != nil {
		return errors.Internal(err)
	}
	if !ok {
		return errors.NotFound("event")
	}
	return nil
}

// DeleteNote removes a note event. System-generated entries are permanent.
func (s *Service) DeleteNote(ctx context.Context, patientID, eventID int64) error {
	entry, err := s.repo.Get(ctx, patientID, eventID)
	if err != nil {
		return errors.Internal(err)
	}
	if entry == nil {
		return errors.NotFound("event")
	}
	if !entry.Mutable() {
		return errors.Forbidden("only note events can be deleted")
	}

	ok, err := s.repo.Delete(ctx, patientID, eventID)
	if err != nil {
		return errors.Internal(err)
	}
	if !ok {
		return errors.NotFound("event")
	}
	return nil
}

// marshalMeta serializes the opaque meta payload. Strings that already
// hold JSON pass through untouched.
func marshalMeta(meta interface{}) (json.RawMessage, error) {
	switch m := meta.(type) {
	case nil:
		return nil, nil
	case json.RawMessage:
		return m, nil
	case string:
		if json.Valid([]byte(m)) {
			return json.RawMessage(m), nil
		}
		return json.Marshal(m)
	default:
		raw, err := json.Marshal(m)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal meta: %w", err)
		}
		return raw, nil
	}
}
