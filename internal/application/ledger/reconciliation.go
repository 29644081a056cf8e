package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/alkholigroup2020/stock-management-system-sub010/internal/application/ports"
	"github.com/alkholigroup2020/stock-management-system-sub010/internal/domain"
	"github.com/alkholigroup2020/stock-management-system-sub010/internal/domain/entity"
	"github.com/alkholigroup2020/stock-management-system-sub010/internal/domain/valuation"
	"github.com/alkholigroup2020/stock-management-system-sub010/pkg/logger"
)

// ReconciliationUseCase procesa ajustes de conciliación del período:
// back-charges, créditos y condenaciones con monto firmado. Ajustan la cifra
// de consumo derivada para reportes, nunca la cantidad en mano de los lotes.
type ReconciliationUseCase struct {
	txRunner ports.TxRunner
	log      *logger.Logger
}

// NewReconciliationUseCase construye el caso de uso.
func NewReconciliationUseCase(txRunner ports.TxRunner, log *logger.Logger) *ReconciliationUseCase {
	return &ReconciliationUseCase{txRunner: txRunner, log: log}
}

// ReconciliationLineInput es una línea de ajuste con monto firmado.
type ReconciliationLineInput struct {
	ItemID string
	Kind   string // BACKCHARGE | CREDIT | CONDEMNATION
	Amount decimal.Decimal
}

// SaveReconciliationInput entrada para guardar la conciliación de una
// locación en un período.
type SaveReconciliationInput struct {
	LocationID string
	PeriodID   string
	ActorID    string
	Date       time.Time
	Lines      []ReconciliationLineInput
}

// SaveReconciliation registra los ajustes, acumula los totales del período y
// marca la conciliación de la locación como guardada (precondición de "lista
// para cierre").
func (uc *ReconciliationUseCase) SaveReconciliation(ctx context.Context, input SaveReconciliationInput) (*entity.Transaction, error) {
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
	for i, l := range input.Lines {
		if l.ItemID == "" {
			ve.Add(lineField(i, "item_id"), "requerido")
		}
		switch l.Kind {
		case entity.AdjustmentBackCharge, entity.AdjustmentCredit, entity.AdjustmentCondemnation:
		default:
			ve.Add(lineField(i, "kind"), "clase de ajuste desconocida: "+l.Kind)
		}
		if l.Amount.IsZero() {
			ve.Add(lineField(i, "amount"), "no puede ser cero")
		}
	}
	if ve.HasErrors() {
		return nil, ve
	}

	now := time.Now()
	var saved *entity.Transaction

	err := uc.txRunner.Run(ctx, func(r ports.Repos) error {
		if _, err := guardPeriod(r, input.PeriodID, input.LocationID); err != nil {
			return err
		}

		number, err := r.Transactions.NextNumber(entity.TxKindReconciliation)
		if err != nil {
			return err
		}
		tx := &entity.Transaction{
			ID:         uuid.New().String(),
			Number:     number,
			Kind:       entity.TxKindReconciliation,
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
			amount := valuation.RoundMoney(in.Amount)
			tx.Lines = append(tx.Lines, entity.TransactionLine{
				ID:            uuid.New().String(),
				TransactionID: tx.ID,
				ItemID:        in.ItemID,
				Adjustment:    in.Kind,
				Amount:        amount,
				LineValue:     amount,
			})
			total = total.Add(amount)
			if err := r.Periods.AddReconciliation(input.PeriodID, input.LocationID, in.Kind, amount); err != nil {
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

		// Deja constancia de conciliación guardada preservando el flag Ready.
		pl, err := r.Periods.GetLocationStatus(input.PeriodID, input.LocationID)
		if err != nil {
			return err
		}
		if pl == nil {
			pl = &entity.PeriodLocation{PeriodID: input.PeriodID, LocationID: input.LocationID}
		}
		pl.ReconciliationSavedAt = &now
		if err := r.Periods.UpsertLocationStatus(pl); err != nil {
			return err
		}

		saved = tx
		return nil
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}
