package procurement_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alkholigroup2020/stock-management-system-sub010/internal/application/ports"
	"github.com/alkholigroup2020/stock-management-system-sub010/internal/application/procurement"
	"github.com/alkholigroup2020/stock-management-system-sub010/internal/domain"
	"github.com/alkholigroup2020/stock-management-system-sub010/internal/domain/entity"
	"github.com/alkholigroup2020/stock-management-system-sub010/internal/domain/repository"
)

// Fakes en memoria del ciclo requisición-orden.

type fakeReqs struct {
	reqs map[string]*entity.Requisition
	seq  int
}

func (f *fakeReqs) Create(r *entity.Requisition) error {
	cp := *r
	cp.Lines = nil
	f.reqs[r.ID] = &cp
	return nil
}

func (f *fakeReqs) CreateLine(l *entity.RequisitionLine) error {
	r := f.reqs[l.RequisitionID]
	r.Lines = append(r.Lines, *l)
	return nil
}

func (f *fakeReqs) GetByID(id string) (*entity.Requisition, error) {
	r, ok := f.reqs[id]
	if !ok {
		return nil, nil
	}
	cp := *r
	cp.Lines = append([]entity.RequisitionLine(nil), r.Lines...)
	return &cp, nil
}

func (f *fakeReqs) UpdateStatus(r *entity.Requisition) error {
	stored := f.reqs[r.ID]
	stored.Status = r.Status
	stored.ClosedAt = r.ClosedAt
	stored.UpdatedAt = r.UpdatedAt
	return nil
}

func (f *fakeReqs) Delete(id string) error { delete(f.reqs, id); return nil }

func (f *fakeReqs) NextNumber() (string, error) {
	f.seq++
	return fmt.Sprintf("PRF-%06d", f.seq), nil
}

type fakeApprovals struct {
	records map[string]*entity.ApprovalRecord
}

func (f *fakeApprovals) Create(a *entity.ApprovalRecord) error {
	cp := *a
	f.records[a.ID] = &cp
	return nil
}

func (f *fakeApprovals) GetByID(id string) (*entity.ApprovalRecord, error) {
	a, ok := f.records[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (f *fakeApprovals) GetOpenByEntity(kind, entityID string) (*entity.ApprovalRecord, error) {
	for _, a := range f.records {
		if a.EntityKind == kind && a.EntityID == entityID && a.Decision == entity.DecisionPending {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeApprovals) ListByEntities(kind string, entityIDs []string) ([]*entity.ApprovalRecord, error) {
	return nil, nil
}

func (f *fakeApprovals) Update(a *entity.ApprovalRecord) error {
	cp := *a
	f.records[a.ID] = &cp
	return nil
}

type fakeOrders struct {
	repository.OrderRepository
	orders map[string]*entity.Order
	seq    int
}

func (f *fakeOrders) Create(o *entity.Order) error {
	cp := *o
	cp.Lines = nil
	f.orders[o.ID] = &cp
	return nil
}

func (f *fakeOrders) CreateLine(l *entity.OrderLine) error {
	o := f.orders[l.OrderID]
	o.Lines = append(o.Lines, *l)
	return nil
}

func (f *fakeOrders) GetByRequisition(requisitionID string) (*entity.Order, error) {
	for _, o := range f.orders {
		if o.RequisitionID == requisitionID {
			cp := *o
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeOrders) NextNumber() (string, error) {
	f.seq++
	return fmt.Sprintf("PO-%06d", f.seq), nil
}

type fakePeriods struct {
	repository.PeriodRepository
	periods map[string]*entity.Period
}

func (f *fakePeriods) GetByID(id string) (*entity.Period, error) {
	p, ok := f.periods[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

type fixture struct {
	reqs      *fakeReqs
	approvals *fakeApprovals
	orders    *fakeOrders
	periods   *fakePeriods
}

func (fx *fixture) Run(_ context.Context, fn func(r ports.Repos) error) error {
	return fn(ports.Repos{
		Requisitions: fx.reqs,
		Approvals:    fx.approvals,
		Orders:       fx.orders,
		Periods:      fx.periods,
	})
}

func newFixture() *fixture {
	fx := &fixture{
		reqs:      &fakeReqs{reqs: make(map[string]*entity.Requisition)},
		approvals: &fakeApprovals{records: make(map[string]*entity.ApprovalRecord)},
		orders:    &fakeOrders{orders: make(map[string]*entity.Order)},
		periods:   &fakePeriods{periods: make(map[string]*entity.Period)},
	}
	fx.periods.periods["p1"] = &entity.Period{ID: "p1", Status: entity.PeriodStatusOpen}
	return fx
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func createDraft(t *testing.T, fx *fixture, uc *procurement.RequisitionUseCase) *entity.Requisition {
	t.Helper()
	req, err := uc.Create(context.Background(), procurement.CreateRequisitionInput{
		LocationID: "loc1",
		PeriodID:   "p1",
		ActorID:    "u1",
		Lines: []procurement.RequisitionLineInput{
			{ItemID: "cemento", Quantity: dec("100"), EstimatedPrice: dec("10.00")},
			{Description: "andamio certificado", Quantity: dec("2"), EstimatedPrice: dec("500.00")},
		},
	})
	require.NoError(t, err)
	return req
}

// ─────────────────────────────────────────────────────────────────────────────
// Ciclo de vida de la requisición
// ─────────────────────────────────────────────────────────────────────────────

func TestRequisition_CicloCompleto(t *testing.T) {
	// Caso 1: borrador, envío, aprobación.
	fx := newFixture()
	uc := procurement.NewRequisitionUseCase(fx, nil, nil)

	req := createDraft(t, fx, uc)
	assert.Equal(t, entity.ReqStatusDraft, req.Status)
	assert.Equal(t, "PRF-000001", req.Number)
	require.Len(t, req.Lines, 2)

	submitted, err := uc.Submit(context.Background(), req.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, entity.ReqStatusPending, submitted.Status)

	// El envío crea implícitamente el registro de aprobación.
	rec, err := fx.approvals.GetOpenByEntity(entity.ApprovalKindRequisition, req.ID)
	require.NoError(t, err)
	require.NotNil(t, rec)

	approved, err := uc.Approve(context.Background(), req.ID, "sup1", entity.RoleSupervisor)
	require.NoError(t, err)
	assert.Equal(t, entity.ReqStatusApproved, approved.Status)
}

func TestRequisition_SoloElCreadorEnvia(t *testing.T) {
	// Caso 2: otro usuario no puede enviar un borrador ajeno.
	fx := newFixture()
	uc := procurement.NewRequisitionUseCase(fx, nil, nil)
	req := createDraft(t, fx, uc)

	_, err := uc.Submit(context.Background(), req.ID, "u2")
	assert.True(t, errors.Is(err, domain.ErrForbidden))
}

func TestRequisition_LineaSinItemNiDescripcion(t *testing.T) {
	// Caso 3: cada línea exige ítem del catálogo o descripción libre.
	fx := newFixture()
	uc := procurement.NewRequisitionUseCase(fx, nil, nil)
	_, err := uc.Create(context.Background(), procurement.CreateRequisitionInput{
		LocationID: "loc1",
		PeriodID:   "p1",
		ActorID:    "u1",
		Lines:      []procurement.RequisitionLineInput{{Quantity: dec("1")}},
	})
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
}

func TestRequisition_PeriodoCerrado(t *testing.T) {
	// Caso 4: no se crean requisiciones en períodos no abiertos.
	fx := newFixture()
	fx.periods.periods["p1"].Status = entity.PeriodStatusClosed
	uc := procurement.NewRequisitionUseCase(fx, nil, nil)
	_, err := uc.Create(context.Background(), procurement.CreateRequisitionInput{
		LocationID: "loc1",
		PeriodID:   "p1",
		ActorID:    "u1",
		Lines:      []procurement.RequisitionLineInput{{ItemID: "cemento", Quantity: dec("1")}},
	})
	assert.True(t, errors.Is(err, domain.ErrPeriodClosed))
}

func TestRequisition_RechazoYClonado(t *testing.T) {
	// Caso 5: la rechazada es terminal pero clonable a un nuevo borrador.
	fx := newFixture()
	uc := procurement.NewRequisitionUseCase(fx, nil, nil)
	req := createDraft(t, fx, uc)
	_, err := uc.Submit(context.Background(), req.ID, "u1")
	require.NoError(t, err)

	rejected, err := uc.Reject(context.Background(), req.ID, "sup1", entity.RoleSupervisor, "presupuesto agotado")
	require.NoError(t, err)
	assert.Equal(t, entity.ReqStatusRejected, rejected.Status)

	// No se puede volver a enviar ni re-decidir.
	_, err = uc.Submit(context.Background(), req.ID, "u1")
	assert.True(t, errors.Is(err, domain.ErrInvalidStateTransition))
	_, err = uc.Approve(context.Background(), req.ID, "sup1", entity.RoleSupervisor)
	assert.True(t, errors.Is(err, domain.ErrInvalidStateTransition))

	clone, err := uc.Clone(context.Background(), req.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, entity.ReqStatusDraft, clone.Status)
	assert.NotEqual(t, req.Number, clone.Number)
	require.Len(t, clone.Lines, 2)
	assert.Equal(t, "cemento", clone.Lines[0].ItemID)

	// El original sigue REJECTED.
	orig, _ := fx.reqs.GetByID(req.ID)
	assert.Equal(t, entity.ReqStatusRejected, orig.Status)
}

func TestRequisition_BorrarSoloBorradoresPropios(t *testing.T) {
	// Caso 6: solo el creador borra, y solo mientras sea borrador.
	fx := newFixture()
	uc := procurement.NewRequisitionUseCase(fx, nil, nil)
	req := createDraft(t, fx, uc)

	err := uc.Delete(context.Background(), req.ID, "u2")
	assert.True(t, errors.Is(err, domain.ErrForbidden))

	_, err = uc.Submit(context.Background(), req.ID, "u1")
	require.NoError(t, err)
	err = uc.Delete(context.Background(), req.ID, "u1")
	assert.True(t, errors.Is(err, domain.ErrInvalidStateTransition))
}

// ─────────────────────────────────────────────────────────────────────────────
// Órdenes de compra
// ─────────────────────────────────────────────────────────────────────────────

func approveRequisition(t *testing.T, fx *fixture) *entity.Requisition {
	t.Helper()
	ruc := procurement.NewRequisitionUseCase(fx, nil, nil)
	req := createDraft(t, fx, ruc)
	_, err := ruc.Submit(context.Background(), req.ID, "u1")
	require.NoError(t, err)
	approved, err := ruc.Approve(context.Background(), req.ID, "sup1", entity.RoleSupervisor)
	require.NoError(t, err)
	return approved
}

func TestCreateOrder_DesdeRequisicionAprobada(t *testing.T) {
	// Caso 1: la orden nace OPEN con totales por línea calculados.
	fx := newFixture()
	req := approveRequisition(t, fx)

	uc := procurement.NewOrderUseCase(fx, nil, nil)
	order, err := uc.CreateFromRequisition(context.Background(), procurement.CreateOrderInput{
		RequisitionID: req.ID,
		SupplierName:  "Ferretería El Tornillo",
		ActorID:       "u1",
		Lines: []procurement.OrderLineInput{{
			ItemID:      "cemento",
			Quantity:    dec("100"),
			UnitPrice:   dec("10.00"),
			DiscountPct: dec("10"),
			VATPct:      dec("19"),
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusOpen, order.Status)
	assert.Equal(t, "PO-000001", order.Number)

	// 100 * 10 * 0.9 * 1.19 = 1071.00
	require.Len(t, order.Lines, 1)
	assert.True(t, dec("1071.00").Equal(order.Lines[0].LineTotal),
		"total esperado 1071.00, obtuvo %s", order.Lines[0].LineTotal)
	assert.True(t, order.Lines[0].QtyDelivered.IsZero())
}

func TestCreateOrder_RequisicionSinAprobar(t *testing.T) {
	// Caso 2: una requisición pendiente no genera orden.
	fx := newFixture()
	ruc := procurement.NewRequisitionUseCase(fx, nil, nil)
	req := createDraft(t, fx, ruc)
	_, err := ruc.Submit(context.Background(), req.ID, "u1")
	require.NoError(t, err)

	uc := procurement.NewOrderUseCase(fx, nil, nil)
	_, err = uc.CreateFromRequisition(context.Background(), procurement.CreateOrderInput{
		RequisitionID: req.ID,
		SupplierName:  "Proveedor",
		ActorID:       "u1",
		Lines:         []procurement.OrderLineInput{{ItemID: "cemento", Quantity: dec("1"), UnitPrice: dec("1")}},
	})
	assert.True(t, errors.Is(err, domain.ErrInvalidStateTransition))
}

func TestCreateOrder_UnaOrdenPorRequisicion(t *testing.T) {
	// Caso 3: la relación requisición-orden es 1:1 estricta.
	fx := newFixture()
	req := approveRequisition(t, fx)

	uc := procurement.NewOrderUseCase(fx, nil, nil)
	input := procurement.CreateOrderInput{
		RequisitionID: req.ID,
		SupplierName:  "Proveedor",
		ActorID:       "u1",
		Lines:         []procurement.OrderLineInput{{ItemID: "cemento", Quantity: dec("1"), UnitPrice: dec("1")}},
	}
	_, err := uc.CreateFromRequisition(context.Background(), input)
	require.NoError(t, err)

	_, err = uc.CreateFromRequisition(context.Background(), input)
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

func TestCreateOrder_DescuentoFueraDeRango(t *testing.T) {
	// Caso 4: descuento mayor a 100 es inválido.
	fx := newFixture()
	uc := procurement.NewOrderUseCase(fx, nil, nil)
	_, err := uc.CreateFromRequisition(context.Background(), procurement.CreateOrderInput{
		RequisitionID: "r1",
		SupplierName:  "Proveedor",
		ActorID:       "u1",
		Lines: []procurement.OrderLineInput{{
			ItemID: "cemento", Quantity: dec("1"), UnitPrice: dec("1"), DiscountPct: dec("120"),
		}},
	})
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
}
