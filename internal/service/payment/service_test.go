package payment

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ricardo-ochoa/implaeden-backend/internal/model"
	"github.com/ricardo-ochoa/implaeden-backend/internal/service/event"
	"github.com/ricardo-ochoa/implaeden-backend/internal/service/grouping"
	"github.com/ricardo-ochoa/implaeden-backend/pkg/errors"
)

type fakePaymentRepo struct {
	nextID   int64
	payments map[int64]*model.Payment
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{payments: make(map[int64]*model.Payment)}
}

func (f *fakePaymentRepo) ListByPatient(ctx context.Context, patientID int64) ([]*model.PaymentView, error) {
	var out []*model.PaymentView
	for _, p := range f.payments {
		if p.PatientID == patientID {
			out = append(out, f.view(p))
		}
	}
	return out, nil
}

func (f *fakePaymentRepo) Get(ctx context.Context, patientID, paymentID int64) (*model.Payment, error) {
	p, ok := f.payments[paymentID]
	if !ok || p.PatientID != patientID {
		return nil, nil
	}
	copied := *p
	return &copied, nil
}

func (f *fakePaymentRepo) GetView(ctx context.Context, paymentID int64) (*model.PaymentView, error) {
	p, ok := f.payments[paymentID]
	if !ok {
		return nil, nil
	}
	return f.view(p), nil
}

func (f *fakePaymentRepo) Create(ctx context.Context, p *model.Payment) (int64, error) {
	f.nextID++
	stored := *p
	stored.ID = f.nextID
	f.payments[stored.ID] = &stored
	return stored.ID, nil
}

func (f *fakePaymentRepo) Update(ctx context.Context, p *model.Payment) (bool, error) {
	if _, ok := f.payments[p.ID]; !ok {
		return false, nil
	}
	copied := *p
	f.payments[p.ID] = &copied
	return true, nil
}

func (f *fakePaymentRepo) Delete(ctx context.Context, patientID, paymentID int64) (bool, error) {
	p, ok := f.payments[paymentID]
	if !ok || p.PatientID != patientID {
		return false, nil
	}
	delete(f.payments, paymentID)
	return true, nil
}

func (f *fakePaymentRepo) view(p *model.Payment) *model.PaymentView {
	return &model.PaymentView{
		ID:               p.ID,
		PatientID:        p.PatientID,
		Fecha:            p.Fecha,
		PatientServiceID: p.PatientServiceID,
		Monto:            p.Monto,
		PaymentMethodID:  &p.PaymentMethodID,
		PaymentStatusID:  &p.PaymentStatusID,
		NumeroFactura:    p.NumeroFactura,
		Notas:            p.Notas,
	}
}

type fakePaymentCatalog struct {
	statuses map[string]int64
	methods  map[string]int64
}

func (f *fakePaymentCatalog) ServiceExists(ctx context.Context, serviceID int64) (bool, error) {
	return false, nil
}

func (f *fakePaymentCatalog) ServiceName(ctx context.Context, serviceID int64) (string, error) {
	return "", nil
}

func (f *fakePaymentCatalog) PaymentStatusIDByName(ctx context.Context, name string) (*int64, error) {
	if id, ok := f.statuses[name]; ok {
		return &id, nil
	}
	return nil, nil
}

func (f *fakePaymentCatalog) PaymentMethodIDByName(ctx context.Context, name string) (*int64, error) {
	if id, ok := f.methods[name]; ok {
		return &id, nil
	}
	return nil, nil
}

type captureRecorder struct {
	entries []*model.AppendEvent
}

func (c *captureRecorder) Record(ctx context.Context, entry *model.AppendEvent) {
	c.entries = append(c.entries, entry)
}

type captureMailer struct {
	to       []string
	payments []*model.PaymentView
	err      error
}

func (m *captureMailer) SendPaymentReceipt(ctx context.Context, to string, payment *model.PaymentView) error {
	m.to = append(m.to, to)
	m.payments = append(m.payments, payment)
	return m.err
}

func newTestService() (*Service, *fakePaymentRepo, *captureRecorder, *captureMailer) {
	repo := newFakePaymentRepo()
	recorder := &captureRecorder{}
	mailer := &captureMailer{}
	catalog := &fakePaymentCatalog{
		statuses: map[string]int64{"finalizado": 7, "pendiente": 8},
		methods:  map[string]int64{"efectivo": 3, "tarjeta": 4},
	}
	return NewService(repo, catalog, recorder, mailer), repo, recorder, mailer
}

func TestCreateDefaultsByCatalogName(t *testing.T) {
	svc, repo, recorder, _ := newTestService()

	view, err := svc.Create(context.Background(), 1, nil, &model.CreatePaymentRequest{
		Fecha: "2026-04-15",
		Monto: 1200,
	})
	require.NoError(t, err)

	stored := repo.payments[view.ID]
	require.NotNil(t, stored)
	assert.Equal(t, int64(7), stored.PaymentStatusID, "status defaults to finalizado")
	assert.Equal(t, int64(3), stored.PaymentMethodID, "method defaults to efectivo")
	assert.True(t, strings.HasPrefix(stored.NumeroFactura, "F-"))
	assert.Equal(t, time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC), stored.Fecha)

	require.Len(t, recorder.entries, 1)
	assert.Equal(t, model.EventTypePaymentCreated, recorder.entries[0].EventType)
}

func TestCreateSentinelWhenCatalogEmpty(t *testing.T) {
	repo := newFakePaymentRepo()
	svc := NewService(repo, &fakePaymentCatalog{}, &captureRecorder{}, nil)

	view, err := svc.Create(context.Background(), 1, nil, &model.CreatePaymentRequest{
		Fecha: "2026-04-15",
		Monto: 100,
	})
	require.NoError(t, err)

	stored := repo.payments[view.ID]
	assert.Equal(t, int64(1), stored.PaymentStatusID)
	assert.Equal(t, int64(1), stored.PaymentMethodID)
}

func TestCreateExplicitIDsSkipLookup(t *testing.T) {
	svc, repo, _, _ := newTestService()

	statusID := int64(8)
	methodID := int64(4)
	view, err := svc.Create(context.Background(), 1, nil, &model.CreatePaymentRequest{
		Fecha:           "2026-04-15",
		Monto:           100,
		PaymentStatusID: &statusID,
		PaymentMethodID: &methodID,
	})
	require.NoError(t, err)

	stored := repo.payments[view.ID]
	assert.Equal(t, int64(8), stored.PaymentStatusID)
	assert.Equal(t, int64(4), stored.PaymentMethodID)
}

func TestCreateRejectsBadInput(t *testing.T) {
	svc, _, recorder, _ := newTestService()

	tests := []struct {
		name string
		req  model.CreatePaymentRequest
	}{
		{"bad date", model.CreatePaymentRequest{Fecha: "15/04/2026", Monto: 100}},
		{"zero monto", model.CreatePaymentRequest{Fecha: "2026-04-15", Monto: 0}},
		{"negative monto", model.CreatePaymentRequest{Fecha: "2026-04-15", Monto: -5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), 1, nil, &tt.req)
			assert.True(t, errors.IsValidation(err))
		})
	}
	assert.Empty(t, recorder.entries)
}

func TestUpdateResolvesCatalogNames(t *testing.T) {
	svc, repo, recorder, _ := newTestService()
	created := mustCreatePayment(t, svc)
	recorder.entries = nil

	estado := "pendiente"
	metodo := "tarjeta"
	_, err := svc.Update(context.Background(), 1, created.ID, nil, &model.UpdatePaymentRequest{
		Estado:     &estado,
		MetodoPago: &metodo,
	})
	require.NoError(t, err)

	stored := repo.payments[created.ID]
	assert.Equal(t, int64(8), stored.PaymentStatusID)
	assert.Equal(t, int64(4), stored.PaymentMethodID)

	require.Len(t, recorder.entries, 1)
	assert.Equal(t, model.EventTypePaymentUpdated, recorder.entries[0].EventType)
}

func TestUpdateUnknownEstado(t *testing.T) {
	svc, _, _, _ := newTestService()
	created := mustCreatePayment(t, svc)

	estado := "cancelado"
	_, err := svc.Update(context.Background(), 1, created.ID, nil, &model.UpdatePaymentRequest{Estado: &estado})
	require.True(t, errors.IsValidation(err))
	assert.Contains(t, err.Error(), "cancelado")
}

func TestUpdateKeepsInvoiceNumber(t *testing.T) {
	svc, repo, _, _ := newTestService()
	created := mustCreatePayment(t, svc)
	original := repo.payments[created.ID].NumeroFactura

	monto := 999.0
	_, err := svc.Update(context.Background(), 1, created.ID, nil, &model.UpdatePaymentRequest{Monto: &monto})
	require.NoError(t, err)
	assert.Equal(t, original, repo.payments[created.ID].NumeroFactura)
	assert.Equal(t, 999.0, repo.payments[created.ID].Monto)
}

func TestUpdateMissingPayment(t *testing.T) {
	svc, _, _, _ := newTestService()

	monto := 10.0
	_, err := svc.Update(context.Background(), 1, 404, nil, &model.UpdatePaymentRequest{Monto: &monto})
	assert.True(t, errors.IsNotFound(err))
}

func TestDeleteRecordsSnapshot(t *testing.T) {
	svc, repo, recorder, _ := newTestService()
	created := mustCreatePayment(t, svc)
	recorder.entries = nil

	require.NoError(t, svc.Delete(context.Background(), 1, created.ID, nil))
	assert.NotContains(t, repo.payments, created.ID)

	require.Len(t, recorder.entries, 1)
	entry := recorder.entries[0]
	assert.Equal(t, model.EventTypePaymentDeleted, entry.EventType)
	meta, ok := entry.Meta.(model.JSONMap)
	require.True(t, ok)
	assert.NotNil(t, meta["before"])
}

func TestDeleteScopedToPatient(t *testing.T) {
	svc, repo, _, _ := newTestService()
	created := mustCreatePayment(t, svc)

	err := svc.Delete(context.Background(), 2, created.ID, nil)
	assert.True(t, errors.IsNotFound(err))
	assert.Contains(t, repo.payments, created.ID)
}

func TestSendReceipt(t *testing.T) {
	svc, _, _, mailer := newTestService()
	created := mustCreatePayment(t, svc)

	require.NoError(t, svc.SendReceipt(context.Background(), 1, created.ID, "paciente@example.com"))
	require.Len(t, mailer.to, 1)
	assert.Equal(t, "paciente@example.com", mailer.to[0])
	assert.Equal(t, created.ID, mailer.payments[0].ID)
}

func TestSendReceiptRequiresOwnership(t *testing.T) {
	svc, _, _, mailer := newTestService()
	created := mustCreatePayment(t, svc)

	err := svc.SendReceipt(context.Background(), 2, created.ID, "paciente@example.com")
	assert.True(t, errors.IsNotFound(err))
	assert.Empty(t, mailer.to)
}

func TestSendReceiptWithoutMailer(t *testing.T) {
	repo := newFakePaymentRepo()
	svc := NewService(repo, &fakePaymentCatalog{}, &captureRecorder{}, nil)
	created := mustCreatePayment(t, svc)

	err := svc.SendReceipt(context.Background(), 1, created.ID, "paciente@example.com")
	assert.True(t, errors.IsValidation(err))
}

// ledgerEventRepo is a minimal in-memory event store so the tests below
// can run the real ledger and recorder behind the payment service.
type ledgerEventRepo struct {
	nextID  int64
	entries []*model.PatientEvent
}

func (f *ledgerEventRepo) Insert(ctx context.Context, e *model.PatientEvent) (int64, error) {
	f.nextID++
	stored := *e
	stored.ID = f.nextID
	f.entries = append(f.entries, &stored)
	return stored.ID, nil
}

func (f *ledgerEventRepo) Get(ctx context.Context, patientID, eventID int64) (*model.PatientEvent, error) {
	for _, e := range f.entries {
		if e.ID == eventID && e.PatientID == patientID {
			return e, nil
		}
	}
	return nil, nil
}

func (f *ledgerEventRepo) GetWithService(ctx context.Context, eventID int64) (*model.PatientEvent, error) {
	for _, e := range f.entries {
		if e.ID == eventID {
			return e, nil
		}
	}
	return nil, nil
}

func (f *ledgerEventRepo) List(ctx context.Context, patientID int64, filter *model.EventFilter) ([]*model.PatientEvent, error) {
	return f.entries, nil
}

func (f *ledgerEventRepo) Count(ctx context.Context, patientID int64, filter *model.EventFilter) (int, error) {
	return len(f.entries), nil
}

func (f *ledgerEventRepo) Update(ctx context.Context, patientID, eventID int64, message string, meta []byte) (bool, error) {
	return false, nil
}

func (f *ledgerEventRepo) Delete(ctx context.Context, patientID, eventID int64) (bool, error) {
	return false, nil
}

type noGroups struct{}

func (noGroups) GroupID(ctx context.Context, treatmentID int64) (*int64, error) {
	return nil, nil
}

// An unassigned payment has no treatment or group to hang its events off,
// yet its full lifecycle must still reach the ledger.
func TestUnassignedPaymentLifecycleIsAudited(t *testing.T) {
	eventRepo := &ledgerEventRepo{}
	ledger := event.NewService(eventRepo, grouping.NewResolver(noGroups{}))
	recorder := event.NewRecorder(ledger, nil, nil)

	repo := newFakePaymentRepo()
	svc := NewService(repo, &fakePaymentCatalog{}, recorder, nil)

	view, err := svc.Create(context.Background(), 1, nil, &model.CreatePaymentRequest{
		Fecha: "2026-04-15",
		Monto: 500,
	})
	require.NoError(t, err)
	require.Nil(t, view.PatientServiceID)

	monto := 750.0
	_, err = svc.Update(context.Background(), 1, view.ID, nil, &model.UpdatePaymentRequest{Monto: &monto})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), 1, view.ID, nil))

	require.Len(t, eventRepo.entries, 3)
	types := []string{}
	for _, e := range eventRepo.entries {
		types = append(types, e.EventType)
		assert.Equal(t, int64(1), e.PatientID)
		assert.Nil(t, e.PatientServiceID)
	}
	assert.Equal(t, []string{
		model.EventTypePaymentCreated,
		model.EventTypePaymentUpdated,
		model.EventTypePaymentDeleted,
	}, types)
}

func mustCreatePayment(t *testing.T, svc *Service) *model.PaymentView {
	t.Helper()
	view, err := svc.Create(context.Background(), 1, nil, &model.CreatePaymentRequest{
		Fecha: "2026-04-15",
		Monto: 500,
	})
	require.NoError(t, err)
	return view
}
