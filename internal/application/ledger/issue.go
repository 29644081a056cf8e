package ledger

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/alkholigroup2020/stock-management-system-sub010/internal/application/ports"
	"github.com/alkholigroup2020/stock-management-system-sub010/internal/domain"
	"github.com/alkholigroup2020/stock-management-system-sub010/internal/domain/entity"
	"github.com/alkholigroup2020/stock-management-system-sub010/internal/domain/stock"
	"github.com/alkholigroup2020/stock-management-system-sub010/internal/domain/valuation"
	"github.com/alkholigroup2020/stock-management-system-sub010/pkg/logger"
)

// IssueUseCase procesa salidas de inventario (consumo): chequeo autoritativo
// de suficiencia bajo bloqueo de fila, consumo al WAC vigente sin mutarlo, y
// congelamiento del WAC usado en cada línea para auditoría.
type IssueUseCase struct {
	txRunner ports.TxRunner
	notifier ports.Notifier
	log      *logger.Logger
}

// NewIssueUseCase construye el caso de uso.
func NewIssueUseCase(txRunner ports.TxRunner, notifier ports.Notifier, log *logger.Logger) *IssueUseCase {
	return &IssueUseCase{txRunner: txRunner, notifier: notifier, log: log}
}

// IssueLineInput es una línea de salida.
type IssueLineInput struct {
	ItemID   string
	Quantity decimal.Decimal
}

// PostIssueInput entrada para contabilizar una salida.
type PostIssueInput struct {
	LocationID string
	PeriodID   string
	ActorID    string
	Date       time.Time
	Lines      []IssueLineInput
}

// PostIssueResult resultado de la operación.
type PostIssueResult struct {
	Transaction *entity.Transaction
}

// PostIssue contabiliza la salida. Si algún ítem no alcanza, falla con
// InsufficientStock llevando el detalle completo de todos los faltantes y
// sin decrementar nada (la unidad atómica se revierte entera).
func (uc *IssueUseCase) PostIssue(ctx context.Context, input PostIssueInput) (*PostIssueResult, error) {
	ve := &domain.ValidationError{}
	if input.LocationID == "" {
		ve.Add("location_id", "requerido")
	}
	if input.PeriodID == "" {
		ve.Add("period_id", "requerido")
	}
	if input.ActorID == "" {
		ve.Add("actor", "requerido")
	}
	if len(input.Lines) == 0 {
		ve.Add("lines", "se requiere al menos una línea")
	}
	for i, l := range input.Lines {
		if l.ItemID == "" {
			ve.Add(lineField(i, "item_id"), "requerido")
		}
		if !l.Quantity.IsPositive() {
			ve.Add(lineField(i, "quantity"), "debe ser mayor que cero")
		}
	}
	if ve.HasErrors() {
		return nil, ve
	}

	now := time.Now()
	result := &PostIssueResult{}

	err := uc.txRunner.Run(ctx, func(r ports.Repos) error {
		if _, err := guardPeriod(r, input.PeriodID, input.LocationID); err != nil {
			return err
		}

		// Bloquea todas las filas de lote en orden de ítem y valida en bloque:
		// el chequeo autoritativo ocurre con las filas ya bloqueadas.
		items := make([]string, 0, len(input.Lines))
		seen := make(map[string]struct{})
		requests := make([]stock.LineRequest, 0, len(input.Lines))
		for _, l := range input.Lines {
			requests = append(requests, stock.LineRequest{ItemID: l.ItemID, Requested: l.Quantity})
			if _, ok := seen[l.ItemID]; !ok {
				seen[l.ItemID] = struct{}{}
				items = append(items, l.ItemID)
			}
		}
		sort.Strings(items)

		lots := make(map[string]*entity.StockLot, len(items))
		available := make(map[string]decimal.Decimal, len(items))
		for _, itemID := range items {
			lot, err := r.Lots.GetForUpdate(input.LocationID, itemID)
			if err != nil {
				return err
			}
			lots[itemID] = lot
			available[itemID] = lot.Quantity
		}
		if err := stock.CheckBulk(available, requests); err != nil {
			return err
		}

		number, err := r.Transactions.NextNumber(entity.TxKindIssue)
		if err != nil {
			return err
		}
		tx := &entity.Transaction{
			ID:         uuid.New().String(),
			Number:     number,
			Kind:       entity.TxKindIssue,
			LocationID: input.LocationID,
			PeriodID:   input.PeriodID,
			Date:       input.Date,
			Status:     entity.TxStatusPosted,
			CreatedBy:  input.ActorID,
			CreatedAt:  now,
			UpdatedAt:  now,
		}

		total := decimal.Zero
		for _, in := range input.Lines {
			lot := lots[in.ItemID]
			// El consumo se valora al WAC vigente y ese costo queda congelado
			// en la línea; el WAC del lote no cambia.
			wac := lot.UnitCost
			lot.Quantity = valuation.RoundQty(lot.Quantity.Sub(in.Quantity))
			lot.UpdatedAt = now

			frozen := wac
			line := entity.TransactionLine{
				ID:            uuid.New().String(),
				TransactionID: tx.ID,
				ItemID:        in.ItemID,
				Quantity:      valuation.RoundQty(in.Quantity),
				UnitCost:      wac,
				CostAtIssue:   &frozen,
				LineValue:     valuation.RoundMoney(in.Quantity.Mul(wac)),
			}
			total = total.Add(line.LineValue)
			tx.Lines = append(tx.Lines, line)
		}

		for _, itemID := range items {
			if err := r.Lots.Upsert(lots[itemID]); err != nil {
				return err
			}
		}

		tx.TotalValue = valuation.RoundMoney(total)
		if err := r.Transactions.Create(tx); err != nil {
			return err
		}
		for i := range tx.Lines {
			if err := r.Transactions.CreateLine(&tx.Lines[i]); err != nil {
				return err
			}
		}
		result.Transaction = tx
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
