package period

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/alkholigroup2020/stock-management-system-sub010/internal/application/ports"
	"github.com/alkholigroup2020/stock-management-system-sub010/internal/domain"
	"github.com/alkholigroup2020/stock-management-system-sub010/internal/domain/entity"
	"github.com/alkholigroup2020/stock-management-system-sub010/pkg/logger"
)

// PeriodUseCase coordina el cierre de período: marcar locaciones listas,
// verificar precondiciones globales, tomar snapshots de cierre y sembrar el
// período siguiente con los saldos de apertura.
type PeriodUseCase struct {
	txRunner ports.TxRunner
	notifier ports.Notifier
	log      *logger.Logger
}

// NewPeriodUseCase construye el caso de uso.
func NewPeriodUseCase(txRunner ports.TxRunner, notifier ports.Notifier, log *logger.Logger) *PeriodUseCase {
	return &PeriodUseCase{txRunner: txRunner, notifier: notifier, log: log}
}

// MarkLocationReady marca la locación lista para cierre. Precondiciones:
// período abierto, cero transacciones sin contabilizar en la locación y
// conciliación ya guardada. Una vez lista, la locación no admite más registros.
func (uc *PeriodUseCase) MarkLocationReady(ctx context.Context, periodID, locationID, actorID string) error {
	if periodID == "" || locationID == "" {
		return domain.ErrInvalidInput
	}

	now := time.Now()
	return uc.txRunner.Run(ctx, func(r ports.Repos) error {
		period, err := r.Periods.GetForUpdate(periodID)
		if err != nil {
			return err
		}
		if period == nil {
			return domain.ErrNotFound
		}
		if period.Status != entity.PeriodStatusOpen {
			return domain.ErrPeriodClosed
		}

		unposted, err := r.Transactions.CountUnposted(periodID, locationID)
		if err != nil {
			return err
		}
		if unposted > 0 {
			return fmt.Errorf("%d transacciones sin contabilizar en la locación: %w", unposted, domain.ErrConflict)
		}

		// Bloquea la fila de estado: se serializa con cualquier procesador
		// que esté contabilizando contra esta locación.
		pl, err := r.Periods.GetLocationStatusForUpdate(periodID, locationID)
		if err != nil {
			return err
		}
		if pl == nil || pl.ReconciliationSavedAt == nil {
			return fmt.Errorf("la conciliación del período no está guardada: %w", domain.ErrConflict)
		}
		if pl.Ready {
			// Idempotente: volver a marcar no cambia nada.
			return nil
		}

		pl.Ready = true
		pl.ReadyAt = &now
		return r.Periods.UpsertLocationStatus(pl)
	})
}

// ClosePeriodResult resultado del cierre: el período cerrado y el siguiente
// ya abierto con los saldos de apertura sembrados.
type ClosePeriodResult struct {
	Closed *entity.Period
	Next   *entity.Period
}

// ClosePeriod cierra el período si y solo si todas las locaciones están
// listas; de lo contrario enumera cada locación pendiente, no solo la
// primera. El cierre toma snapshot CLOSING de cada lote, marca el período
// CLOSED y abre el siguiente sembrando snapshots OPENING desde los mismos
// saldos. Todo en una sola unidad atómica.
func (uc *PeriodUseCase) ClosePeriod(ctx context.Context, periodID, actorID string) (*ClosePeriodResult, error) {
	if periodID == "" || actorID == "" {
		return nil, domain.ErrInvalidInput
	}

	now := time.Now()
	result := &ClosePeriodResult{}

	err := uc.txRunner.Run(ctx, func(r ports.Repos) error {
		period, err := r.Periods.GetForUpdate(periodID)
		if err != nil {
			return err
		}
		if period == nil {
			return domain.ErrNotFound
		}
		if period.Status != entity.PeriodStatusOpen {
			return domain.ErrPeriodClosed
		}

		locations, err := r.Locations.List()
		if err != nil {
			return err
		}
		statuses, err := r.Periods.ListLocationStatuses(periodID)
		if err != nil {
			return err
		}
		readyBy := make(map[string]bool, len(statuses))
		for _, pl := range statuses {
			readyBy[pl.LocationID] = pl.Ready
		}

		ve := &domain.ValidationError{}
		for _, loc := range locations {
			if !readyBy[loc.ID] {
				ve.Add("locations."+loc.ID, loc.Name+" no está lista para cierre")
			}
		}
		if ve.HasErrors() {
			return ve
		}

		next := nextPeriod(period, now)
		if err := r.Periods.Create(next); err != nil {
			return err
		}

		// Snapshot CLOSING por lote y siembra OPENING del siguiente desde los
		// mismos saldos: el cierre de uno es la apertura del otro.
		for _, loc := range locations {
			lots, err := r.Lots.ListByLocation(loc.ID)
			if err != nil {
				return err
			}
			for _, lot := range lots {
				closing := &entity.StockSnapshot{
					ID:         uuid.New().String(),
					PeriodID:   period.ID,
					LocationID: lot.LocationID,
					ItemID:     lot.ItemID,
					Kind:       entity.SnapshotClosing,
					Quantity:   lot.Quantity,
					UnitCost:   lot.UnitCost,
					CreatedAt:  now,
				}
				if err := r.Periods.SaveSnapshot(closing); err != nil {
					return err
				}
				opening := &entity.StockSnapshot{
					ID:         uuid.New().String(),
					PeriodID:   next.ID,
					LocationID: lot.LocationID,
					ItemID:     lot.ItemID,
					Kind:       entity.SnapshotOpening,
					Quantity:   lot.Quantity,
					UnitCost:   lot.UnitCost,
					CreatedAt:  now,
				}
				if err := r.Periods.SaveSnapshot(opening); err != nil {
					return err
				}
			}

			// Fila fresca de estado por locación para el período nuevo.
			if err := r.Periods.UpsertLocationStatus(&entity.PeriodLocation{
				PeriodID:   next.ID,
				LocationID: loc.ID,
			}); err != nil {
				return err
			}
		}

		period.Status = entity.PeriodStatusClosed
		period.ClosedBy = &actorID
		period.ClosedAt = &now
		if err := r.Periods.Update(period); err != nil {
			return err
		}

		result.Closed = period
		result.Next = next
		return nil
	})
	if err != nil {
		return nil, err
	}

	if uc.notifier != nil {
		go func() {
			nctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			n := ports.Notification{
				Event:    "PERIOD_CLOSED",
				EntityID: result.Closed.ID,
				Actor:    actorID,
				Message:  "período " + result.Closed.Name + " cerrado; " + result.Next.Name + " abierto",
			}
			if err := uc.notifier.Send(nctx, n); err != nil && uc.log != nil {
				uc.log.Error().Err(err).Str("event", n.Event).Msg("notificación fallida (no bloqueante)")
			}
		}()
	}
	return result, nil
}

// nextPeriod construye el período siguiente con la misma duración que el
// cerrado, arrancando el día después de su fin.
func nextPeriod(p *entity.Period, now time.Time) *entity.Period {
	start := p.EndDate.AddDate(0, 0, 1)
	end := start.Add(p.EndDate.Sub(p.StartDate))
	return &entity.Period{
		ID:        uuid.New().String(),
		Name:      start.Format("2006-01"),
		StartDate: start,
		EndDate:   end,
		Status:    entity.PeriodStatusOpen,
		CreatedAt: now,
	}
}
