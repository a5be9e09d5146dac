package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/ricardo-ochoa/implaeden-backend/internal/email"
	"github.com/ricardo-ochoa/implaeden-backend/internal/model"
	"github.com/ricardo-ochoa/implaeden-backend/internal/repository"
	"github.com/ricardo-ochoa/implaeden-backend/pkg/errors"
)

const (
	paymentDateLayout = "2006-01-02"

	defaultStatusName = "finalizado"
	defaultMethodName = "efectivo"

	// sentinelCatalogID stands in when the default catalog row is missing;
	// a bare install must still accept payments.
	sentinelCatalogID = int64(1)
)

// EventRecorder is the fire-and-forget audit channel. The payment write is
// the source of truth; events are best-effort telemetry.
type EventRecorder interface {
	Record(ctx context.Context, entry *model.AppendEvent)
}

type Service struct {
	repo     repository.PaymentRepository
	catalog  repository.CatalogRepository
	recorder EventRecorder
	mailer   email.Sender
}

func NewService(repo repository.PaymentRepository, catalog repository.CatalogRepository, recorder EventRecorder, mailer email.Sender) *Service {
	return &Service{
		repo:     repo,
		catalog:  catalog,
		recorder: recorder,
		mailer:   mailer,
	}
}

func (s *Service) List(ctx context.Context, patientID int64) ([]*model.PaymentView, error) {
	if patientID <= 0 {
		return nil, errors.Validation("invalid patient id")
	}
	payments, err := s.repo.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, errors.Internal(err)
	}
	return payments, nil
}

// Create registers a payment. Omitted method and status default by catalog
// name, falling back to the sentinel id when the catalog row is absent.
func (s *Service) Create(ctx context.Context, patientID int64, actor *int64, req *model.CreatePaymentRequest) (*model.PaymentView, error) {
	if patientID <= 0 {
		return nil, errors.Validation("invalid patient id")
	}

	fecha, err := time.Parse(paymentDateLayout, req.Fecha)
	if err != nil {
		return nil, errors.Validation("fecha must be a YYYY-MM-DD date")
	}
	if req.Monto <= 0 {
		return nil, errors.Validation("monto must be positive")
	}

	statusID, err := s.defaultCatalogID(ctx, req.PaymentStatusID, s.catalog.PaymentStatusIDByName, defaultStatusName)
	if err != nil {
		return nil, err
	}
	methodID, err := s.defaultCatalogID(ctx, req.PaymentMethodID, s.catalog.PaymentMethodIDByName, defaultMethodName)
	if err != nil {
		return nil, err
	}

	// Generated once at creation and never recomputed.
	invoice := fmt.Sprintf("F-%d", time.Now().UnixMilli())

	p := &model.Payment{
		PatientID:        patientID,
		PatientServiceID: req.PatientServiceID,
		Fecha:            fecha,
		Monto:            req.Monto,
		PaymentMethodID:  methodID,
		PaymentStatusID:  statusID,
		NumeroFactura:    invoice,
		Notas:            req.Notas,
	}

	id, err := s.repo.Create(ctx, p)
	if err != nil {
		return nil, errors.Internal(err)
	}

	s.recorder.Record(ctx, &model.AppendEvent{
		PatientID:        patientID,
		PatientServiceID: req.PatientServiceID,
		EventType:        model.EventTypePaymentCreated,
		Message:          fmt.Sprintf("Pago registrado por $%.2f (factura: %s)", req.Monto, invoice),
		Meta: model.JSONMap{
			"payment_id":        id,
			"monto":             req.Monto,
			"fecha":             req.Fecha,
			"payment_method_id": methodID,
			"payment_status_id": statusID,
			"numero_factura":    invoice,
			"notas":             req.Notas,
		},
		CreatedBy: actor,
	})

	view, err := s.repo.GetView(ctx, id)
	if err != nil {
		return nil, errors.Internal(err)
	}
	if view == nil {
		return nil, errors.Internal(fmt.Errorf("payment %d vanished after insert", id))
	}
	return view, nil
}

// Update partially updates a payment. The prior row is read first both for
// fallback values and so the emitted event captures a before/after diff.
func (s *Service) Update(ctx context.Context, patientID, paymentID int64, actor *int64, req *model.UpdatePaymentRequest) (*model.PaymentView, error) {
	before, err := s.repo.Get(ctx, patientID, paymentID)
	if err != nil {
		return nil, errors.Internal(err)
	}
	if before == nil {
		return nil, errors.NotFound("payment")
	}

	statusID := req.PaymentStatusID
	if statusID == nil && req.Estado != nil {
		id, err := s.catalog.PaymentStatusIDByName(ctx, *req.Estado)
		if err != nil {
			return nil, errors.Internal(err)
		}
		if id == nil {
			return nil, errors.Validation(fmt.Sprintf("unknown estado: %s", *req.Estado))
		}
		statusID = id
	}

	methodID := req.PaymentMethodID
	if methodID == nil && req.MetodoPago != nil {
		id, err := s.catalog.PaymentMethodIDByName(ctx, *req.MetodoPago)
		if err != nil {
			return nil, errors.Internal(err)
		}
		if id == nil {
			return nil, errors.Validation(fmt.Sprintf("unknown metodo_pago: %s", *req.MetodoPago))
		}
		methodID = id
	}

	updated := *before
	if req.Fecha != nil {
		fecha, err := time.Parse(paymentDateLayout, *req.Fecha)
		if err != nil {
			return nil, errors.Validation("fecha must be a YYYY-MM-DD date")
		}
		updated.Fecha = fecha
	}
	if req.PatientServiceID != nil {
		updated.PatientServiceID = req.PatientServiceID
	}
	if req.Monto != nil {
		if *req.Monto <= 0 {
			return nil, errors.Validation("monto must be positive")
		}
		updated.Monto = *req.Monto
	}
	if statusID != nil {
		updated.PaymentStatusID = *statusID
	}
	if methodID != nil {
		updated.PaymentMethodID = *methodID
	}
	if req.Notas != nil {
		updated.Notas = req.Notas
	}

	ok, err := s.repo.Update(ctx, &updated)
	if err != nil {
		return nil, errors.Internal(err)
	}
	if !ok {
		return nil, errors.NotFound("payment")
	}

	s.recorder.Record(ctx, &model.AppendEvent{
		PatientID:        patientID,
		PatientServiceID: updated.PatientServiceID,
		EventType:        model.EventTypePaymentUpdated,
		Message:          fmt.Sprintf("Pago actualizado (ID: %d)", paymentID),
		Meta: model.JSONMap{
			"payment_id": paymentID,
			"before":     before,
			"after":      &updated,
		},
		CreatedBy: actor,
	})

	view, err := s.repo.GetView(ctx, paymentID)
	if err != nil {
		return nil, errors.Internal(err)
	}
	return view, nil
}

// Delete removes a payment, reading it first so the emitted event keeps a
// snapshot of the deleted row.
func (s *Service) Delete(ctx context.Context, patientID, paymentID int64, actor *int64) error {
	before, err := s.repo.Get(ctx, patientID, paymentID)
	if err != nil {
		return errors.Internal(err)
	}
	if before == nil {
		return errors.NotFound("payment")
	}

	ok, err := s.repo.Delete(ctx, patientID, paymentID)
	if err != nil {
		return errors.Internal(err)
	}
	if !ok {
		return errors.NotFound("payment")
	}

	s.recorder.Record(ctx, &model.AppendEvent{
		PatientID:        patientID,
		PatientServiceID: before.PatientServiceID,
		EventType:        model.EventTypePaymentDeleted,
		Message:          fmt.Sprintf("Pago eliminado (ID: %d)", paymentID),
		Meta: model.JSONMap{
			"payment_id": paymentID,
			"before":     before,
		},
		CreatedBy: actor,
	})
	return nil
}

// SendReceipt emails the joined receipt view of an owned payment.
func (s *Service) SendReceipt(ctx context.Context, patientID, paymentID int64, to string) error {
	if s.mailer == nil {
		return errors.Validation("email sending is not configured")
	}

	owned, err := s.repo.Get(ctx, patientID, paymentID)
	if err != nil {
		return errors.Internal(err)
	}
	if owned == nil {
		return errors.NotFound("payment")
	}

	view, err := s.repo.GetView(ctx, paymentID)
	if err != nil {
		return errors.Internal(err)
	}
	if view == nil {
		return errors.NotFound("payment")
	}

	if err := s.mailer.SendPaymentReceipt(ctx, to, view); err != nil {
		return errors.Internal(err)
	}
	return nil
}

func (s *Service) defaultCatalogID(ctx context.Context, explicit *int64, lookup func(context.Context, string) (*int64, error), name string) (int64, error) {
	if explicit != nil {
		return *explicit, nil
	}
	id, err := lookup(ctx, name)
	if err != nil {
		return 0, errors.Internal(err)
	}
	if id == nil {
		return sentinelCatalogID, nil
	}
	return *id, nil
}
