package ledger_test

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/alkholigroup2020/stock-management-system-sub010/internal/application/ports"
	"github.com/alkholigroup2020/stock-management-system-sub010/internal/domain"
	"github.com/alkholigroup2020/stock-management-system-sub010/internal/domain/entity"
)

// Fakes en memoria de los puertos de persistencia. Sin simulación de
// rollback: los tests de fallo verifican que la validación ocurre antes de
// cualquier mutación.

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func lotKey(locationID, itemID string) string { return locationID + "|" + itemID }

// fieldNames extrae los nombres de campo de un error de validación.
func fieldNames(ve *domain.ValidationError) []string {
	out := make([]string, 0, len(ve.Fields))
	for _, f := range ve.Fields {
		out = append(out, f.Field)
	}
	return out
}

type fakeStore struct {
	mu sync.Mutex

	lots         map[string]*entity.StockLot
	txs          map[string]*entity.Transaction
	orders       map[string]*entity.Order
	requisitions map[string]*entity.Requisition
	approvals    map[string]*entity.ApprovalRecord
	periods      map[string]*entity.Period
	periodLocs   map[string]*entity.PeriodLocation
	snapshots    []*entity.StockSnapshot
	lockedPrices map[string]decimal.Decimal
	recTotals    map[string]*entity.ReconciliationTotal
	locations    []*entity.Location
	items        map[string]*entity.Item
	ncrs         []*entity.NCR
	seq          map[string]int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		lots:         make(map[string]*entity.StockLot),
		txs:          make(map[string]*entity.Transaction),
		orders:       make(map[string]*entity.Order),
		requisitions: make(map[string]*entity.Requisition),
		approvals:    make(map[string]*entity.ApprovalRecord),
		periods:      make(map[string]*entity.Period),
		periodLocs:   make(map[string]*entity.PeriodLocation),
		lockedPrices: make(map[string]decimal.Decimal),
		recTotals:    make(map[string]*entity.ReconciliationTotal),
		items:        make(map[string]*entity.Item),
		seq:          make(map[string]int),
	}
}

func (s *fakeStore) repos() ports.Repos {
	return ports.Repos{
		Transactions: (*fakeTxRepo)(s),
		Lots:         (*fakeLotRepo)(s),
		Orders:       (*fakeOrderRepo)(s),
		Requisitions: (*fakeReqRepo)(s),
		Approvals:    (*fakeApprovalRepo)(s),
		Periods:      (*fakePeriodRepo)(s),
		Locations:    (*fakeLocationRepo)(s),
		Items:        (*fakeItemRepo)(s),
		NCRs:         (*fakeNCRRepo)(s),
	}
}

// fakeRunner ejecuta el callback directamente sobre el mismo estado.
type fakeRunner struct{ store *fakeStore }

func (r *fakeRunner) Run(_ context.Context, fn func(repos ports.Repos) error) error {
	return fn(r.store.repos())
}

// ── StockLotRepository ────────────────────────────────────────────────────────

type fakeLotRepo fakeStore

func (f *fakeLotRepo) Get(locationID, itemID string) (*entity.StockLot, error) {
	if lot, ok := f.lots[lotKey(locationID, itemID)]; ok {
		cp := *lot
		return &cp, nil
	}
	return entity.NewZeroLot(locationID, itemID), nil
}

func (f *fakeLotRepo) GetForUpdate(locationID, itemID string) (*entity.StockLot, error) {
	return f.Get(locationID, itemID)
}

func (f *fakeLotRepo) Upsert(lot *entity.StockLot) error {
	cp := *lot
	f.lots[lotKey(lot.LocationID, lot.ItemID)] = &cp
	return nil
}

func (f *fakeLotRepo) ListByLocation(locationID string) ([]*entity.StockLot, error) {
	var out []*entity.StockLot
	for _, lot := range f.lots {
		if lot.LocationID == locationID {
			cp := *lot
			out = append(out, &cp)
		}
	}
	return out, nil
}

// ── TransactionRepository ─────────────────────────────────────────────────────

type fakeTxRepo fakeStore

func (f *fakeTxRepo) Create(tx *entity.Transaction) error {
	cp := *tx
	cp.Lines = nil
	f.txs[tx.ID] = &cp
	return nil
}

func (f *fakeTxRepo) CreateLine(line *entity.TransactionLine) error {
	tx := f.txs[line.TransactionID]
	tx.Lines = append(tx.Lines, *line)
	return nil
}

func (f *fakeTxRepo) GetByID(id string) (*entity.Transaction, error) {
	tx, ok := f.txs[id]
	if !ok {
		return nil, nil
	}
	cp := *tx
	cp.Lines = append([]entity.TransactionLine(nil), tx.Lines...)
	return &cp, nil
}

func (f *fakeTxRepo) GetLine(lineID string) (*entity.TransactionLine, error) {
	for _, tx := range f.txs {
		for i := range tx.Lines {
			if tx.Lines[i].ID == lineID {
				cp := tx.Lines[i]
				return &cp, nil
			}
		}
	}
	return nil, nil
}

func (f *fakeTxRepo) UpdateLine(line *entity.TransactionLine) error {
	tx := f.txs[line.TransactionID]
	for i := range tx.Lines {
		if tx.Lines[i].ID == line.ID {
			tx.Lines[i] = *line
			return nil
		}
	}
	return fmt.Errorf("línea no encontrada: %s", line.ID)
}

func (f *fakeTxRepo) Update(tx *entity.Transaction) error {
	stored := f.txs[tx.ID]
	stored.Status = tx.Status
	stored.TotalValue = tx.TotalValue
	stored.InvoiceNumber = tx.InvoiceNumber
	stored.UpdatedAt = tx.UpdatedAt
	return nil
}

func (f *fakeTxRepo) Delete(id string) error {
	delete(f.txs, id)
	return nil
}

func (f *fakeTxRepo) DeleteLines(transactionID string) error {
	if tx, ok := f.txs[transactionID]; ok {
		tx.Lines = nil
	}
	return nil
}

func (f *fakeTxRepo) NextNumber(kind string) (string, error) {
	f.seq[kind]++
	return fmt.Sprintf("%s-%06d", kind[:3], f.seq[kind]), nil
}

func (f *fakeTxRepo) CountUnposted(periodID, locationID string) (int, error) {
	n := 0
	for _, tx := range f.txs {
		if tx.PeriodID != periodID {
			continue
		}
		if tx.LocationID != locationID && tx.ToLocationID != locationID {
			continue
		}
		if tx.Status == entity.TxStatusDraft || tx.Status == entity.TxStatusPendingApproval {
			n++
		}
	}
	return n, nil
}

// ── OrderRepository ───────────────────────────────────────────────────────────

type fakeOrderRepo fakeStore

func (f *fakeOrderRepo) Create(o *entity.Order) error {
	cp := *o
	cp.Lines = nil
	f.orders[o.ID] = &cp
	return nil
}

func (f *fakeOrderRepo) CreateLine(l *entity.OrderLine) error {
	o := f.orders[l.OrderID]
	o.Lines = append(o.Lines, *l)
	return nil
}

func (f *fakeOrderRepo) GetByID(id string) (*entity.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, nil
	}
	cp := *o
	cp.Lines = append([]entity.OrderLine(nil), o.Lines...)
	return &cp, nil
}

func (f *fakeOrderRepo) GetByRequisition(requisitionID string) (*entity.Order, error) {
	for id, o := range f.orders {
		if o.RequisitionID == requisitionID {
			return f.GetByID(id)
		}
	}
	return nil, nil
}

func (f *fakeOrderRepo) GetLine(lineID string) (*entity.OrderLine, error) {
	for _, o := range f.orders {
		for i := range o.Lines {
			if o.Lines[i].ID == lineID {
				cp := o.Lines[i]
				return &cp, nil
			}
		}
	}
	return nil, nil
}

func (f *fakeOrderRepo) GetLineForUpdate(lineID string) (*entity.OrderLine, error) {
	return f.GetLine(lineID)
}

func (f *fakeOrderRepo) UpdateLineDelivered(lineID string, delivered decimal.Decimal) error {
	for _, o := range f.orders {
		for i := range o.Lines {
			if o.Lines[i].ID == lineID {
				o.Lines[i].QtyDelivered = delivered
				return nil
			}
		}
	}
	return fmt.Errorf("línea de orden no encontrada: %s", lineID)
}

func (f *fakeOrderRepo) Close(o *entity.Order) error {
	stored := f.orders[o.ID]
	stored.Status = o.Status
	stored.CloseReason = o.CloseReason
	stored.ClosedBy = o.ClosedBy
	stored.ClosedAt = o.ClosedAt
	stored.UpdatedAt = o.UpdatedAt
	return nil
}

func (f *fakeOrderRepo) NextNumber() (string, error) {
	f.seq["order"]++
	return fmt.Sprintf("PO-%06d", f.seq["order"]), nil
}

// ── RequisitionRepository ─────────────────────────────────────────────────────

type fakeReqRepo fakeStore

func (f *fakeReqRepo) Create(r *entity.Requisition) error {
	cp := *r
	cp.Lines = nil
	f.requisitions[r.ID] = &cp
	return nil
}

func (f *fakeReqRepo) CreateLine(l *entity.RequisitionLine) error {
	r := f.requisitions[l.RequisitionID]
	r.Lines = append(r.Lines, *l)
	return nil
}

func (f *fakeReqRepo) GetByID(id string) (*entity.Requisition, error) {
	r, ok := f.requisitions[id]
	if !ok {
		return nil, nil
	}
	cp := *r
	cp.Lines = append([]entity.RequisitionLine(nil), r.Lines...)
	return &cp, nil
}

func (f *fakeReqRepo) UpdateStatus(r *entity.Requisition) error {
	stored := f.requisitions[r.ID]
	stored.Status = r.Status
	stored.ClosedAt = r.ClosedAt
	stored.UpdatedAt = r.UpdatedAt
	return nil
}

func (f *fakeReqRepo) Delete(id string) error {
	delete(f.requisitions, id)
	return nil
}

func (f *fakeReqRepo) NextNumber() (string, error) {
	f.seq["requisition"]++
	return fmt.Sprintf("PRF-%06d", f.seq["requisition"]), nil
}

// ── ApprovalRepository ────────────────────────────────────────────────────────

type fakeApprovalRepo fakeStore

func (f *fakeApprovalRepo) Create(a *entity.ApprovalRecord) error {
	cp := *a
	f.approvals[a.ID] = &cp
	return nil
}

func (f *fakeApprovalRepo) GetByID(id string) (*entity.ApprovalRecord, error) {
	a, ok := f.approvals[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (f *fakeApprovalRepo) GetOpenByEntity(kind, entityID string) (*entity.ApprovalRecord, error) {
	for _, a := range f.approvals {
		if a.EntityKind == kind && a.EntityID == entityID && a.Decision == entity.DecisionPending {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeApprovalRepo) ListByEntities(kind string, entityIDs []string) ([]*entity.ApprovalRecord, error) {
	ids := make(map[string]struct{}, len(entityIDs))
	for _, id := range entityIDs {
		ids[id] = struct{}{}
	}
	var out []*entity.ApprovalRecord
	for _, a := range f.approvals {
		if a.EntityKind != kind {
			continue
		}
		if _, ok := ids[a.EntityID]; ok {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeApprovalRepo) Update(a *entity.ApprovalRecord) error {
	cp := *a
	f.approvals[a.ID] = &cp
	return nil
}

// ── PeriodRepository ──────────────────────────────────────────────────────────

type fakePeriodRepo fakeStore

func plKey(periodID, locationID string) string { return periodID + "|" + locationID }

func (f *fakePeriodRepo) Create(p *entity.Period) error {
	cp := *p
	f.periods[p.ID] = &cp
	return nil
}

func (f *fakePeriodRepo) GetByID(id string) (*entity.Period, error) {
	p, ok := f.periods[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (f *fakePeriodRepo) GetForUpdate(id string) (*entity.Period, error) { return f.GetByID(id) }

func (f *fakePeriodRepo) Update(p *entity.Period) error {
	cp := *p
	f.periods[p.ID] = &cp
	return nil
}

func (f *fakePeriodRepo) GetLocationStatus(periodID, locationID string) (*entity.PeriodLocation, error) {
	pl, ok := f.periodLocs[plKey(periodID, locationID)]
	if !ok {
		return nil, nil
	}
	cp := *pl
	return &cp, nil
}

func (f *fakePeriodRepo) GetLocationStatusForUpdate(periodID, locationID string) (*entity.PeriodLocation, error) {
	return f.GetLocationStatus(periodID, locationID)
}

func (f *fakePeriodRepo) UpsertLocationStatus(pl *entity.PeriodLocation) error {
	cp := *pl
	f.periodLocs[plKey(pl.PeriodID, pl.LocationID)] = &cp
	return nil
}

func (f *fakePeriodRepo) ListLocationStatuses(periodID string) ([]*entity.PeriodLocation, error) {
	var out []*entity.PeriodLocation
	for _, pl := range f.periodLocs {
		if pl.PeriodID == periodID {
			cp := *pl
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakePeriodRepo) SaveSnapshot(s *entity.StockSnapshot) error {
	cp := *s
	f.snapshots = append(f.snapshots, &cp)
	return nil
}

func (f *fakePeriodRepo) GetLockedPrice(periodID, itemID string) (*decimal.Decimal, error) {
	if price, ok := f.lockedPrices[plKey(periodID, itemID)]; ok {
		cp := price
		return &cp, nil
	}
	return nil, nil
}

func (f *fakePeriodRepo) AddReconciliation(periodID, locationID, kind string, amount decimal.Decimal) error {
	key := plKey(periodID, locationID)
	t, ok := f.recTotals[key]
	if !ok {
		t = &entity.ReconciliationTotal{PeriodID: periodID, LocationID: locationID}
		f.recTotals[key] = t
	}
	switch kind {
	case entity.AdjustmentBackCharge:
		t.BackCharges = t.BackCharges.Add(amount)
	case entity.AdjustmentCredit:
		t.Credits = t.Credits.Add(amount)
	case entity.AdjustmentCondemnation:
		t.Condemnation = t.Condemnation.Add(amount)
	default:
		return fmt.Errorf("clase desconocida: %s", kind)
	}
	return nil
}

func (f *fakePeriodRepo) GetReconciliation(periodID, locationID string) (*entity.ReconciliationTotal, error) {
	if t, ok := f.recTotals[plKey(periodID, locationID)]; ok {
		cp := *t
		return &cp, nil
	}
	return &entity.ReconciliationTotal{PeriodID: periodID, LocationID: locationID}, nil
}

// ── Repos de catálogo ─────────────────────────────────────────────────────────

type fakeLocationRepo fakeStore

func (f *fakeLocationRepo) GetByID(id string) (*entity.Location, error) {
	for _, l := range f.locations {
		if l.ID == id {
			cp := *l
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeLocationRepo) List() ([]*entity.Location, error) {
	out := make([]*entity.Location, len(f.locations))
	copy(out, f.locations)
	return out, nil
}

type fakeItemRepo fakeStore

func (f *fakeItemRepo) GetByID(id string) (*entity.Item, error) {
	if it, ok := f.items[id]; ok {
		cp := *it
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeItemRepo) List() ([]*entity.Item, error) {
	var out []*entity.Item
	for _, it := range f.items {
		cp := *it
		out = append(out, &cp)
	}
	return out, nil
}

type fakeNCRRepo fakeStore

func (f *fakeNCRRepo) Create(n *entity.NCR) error {
	cp := *n
	f.ncrs = append(f.ncrs, &cp)
	return nil
}

func (f *fakeNCRRepo) ListByPeriodLocation(periodID, locationID string) ([]*entity.NCR, error) {
	var out []*entity.NCR
	for _, n := range f.ncrs {
		if n.PeriodID == periodID && n.LocationID == locationID {
			cp := *n
			out = append(out, &cp)
		}
	}
	return out, nil
}

// ── Seeds comunes ─────────────────────────────────────────────────────────────

func seedOpenPeriod(s *fakeStore, periodID string) {
	s.periods[periodID] = &entity.Period{ID: periodID, Name: "2026-08", Status: entity.PeriodStatusOpen}
}

func seedLot(s *fakeStore, locationID, itemID, qty, cost string) {
	s.lots[lotKey(locationID, itemID)] = &entity.StockLot{
		LocationID: locationID,
		ItemID:     itemID,
		Quantity:   dec(qty),
		UnitCost:   dec(cost),
	}
}
