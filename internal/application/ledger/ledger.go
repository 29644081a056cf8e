package ledger

import (
	"context"
	"time"

	"github.com/alkholigroup2020/stock-management-system-sub010/internal/application/ports"
	"github.com/alkholigroup2020/stock-management-system-sub010/internal/domain"
	"github.com/alkholigroup2020/stock-management-system-sub010/internal/domain/entity"
	"github.com/alkholigroup2020/stock-management-system-sub010/pkg/logger"
)

// guardPeriod verifica que el período exista, esté abierto y que la locación
// no esté marcada lista para cierre. Una locación lista no admite más
// registros: es la exclusividad entre procesadores y el cierre de período.
// La fila de estado se lee bajo bloqueo para serializar con MarkLocationReady:
// nadie contabiliza contra una marca de lista obsoleta.
func guardPeriod(r ports.Repos, periodID, locationID string) (*entity.Period, error) {
	period, err := r.Periods.GetByID(periodID)
	if err != nil {
		return nil, err
	}
	if period == nil {
		return nil, domain.ErrNotFound
	}
	if period.Status != entity.PeriodStatusOpen {
		return nil, domain.ErrPeriodClosed
	}
	pl, err := r.Periods.GetLocationStatusForUpdate(periodID, locationID)
	if err != nil {
		return nil, err
	}
	if pl != nil && pl.Ready {
		return nil, domain.ErrPeriodClosed
	}
	return period, nil
}

// notify envía la notificación en background. Un fallo se registra en el log
// y jamás afecta la transacción que lo originó.
func notify(log *logger.Logger, notifier ports.Notifier, n ports.Notification) {
	if notifier == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := notifier.Send(ctx, n); err != nil && log != nil {
			log.Error().Err(err).
				Str("event", n.Event).
				Str("entity_id", n.EntityID).
				Msg("notificación fallida (no bloqueante)")
		}
	}()
}
