package ledger_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alkholigroup2020/stock-management-system-sub010/internal/application/ledger"
	"github.com/alkholigroup2020/stock-management-system-sub010/internal/domain"
	"github.com/alkholigroup2020/stock-management-system-sub010/internal/domain/entity"
)

// ─────────────────────────────────────────────────────────────────────────────
// Procesador de conciliación
// ─────────────────────────────────────────────────────────────────────────────

func TestSaveReconciliation_AcumulaTotalesSinTocarLotes(t *testing.T) {
	// Caso 1: los ajustes acumulan por clase, marcan la conciliación guardada
	// y jamás mueven la cantidad en mano.
	s := newFakeStore()
	seedOpenPeriod(s, "p1")
	seedLot(s, "loc1", "cemento", "100", "10.00")

	uc := ledger.NewReconciliationUseCase(&fakeRunner{store: s}, nil)
	tx, err := uc.SaveReconciliation(context.Background(), ledger.SaveReconciliationInput{
		LocationID: "loc1",
		PeriodID:   "p1",
		ActorID:    "u1",
		Date:       time.Now(),
		Lines: []ledger.ReconciliationLineInput{
			{ItemID: "cemento", Kind: entity.AdjustmentBackCharge, Amount: dec("120.50")},
			{ItemID: "cemento", Kind: entity.AdjustmentCredit, Amount: dec("-40.00")},
			{ItemID: "arena", Kind: entity.AdjustmentCondemnation, Amount: dec("-15.25")},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, entity.TxStatusPosted, tx.Status)
	assert.True(t, dec("65.25").Equal(tx.TotalValue), "total esperado 65.25, obtuvo %s", tx.TotalValue)

	totals := s.recTotals[plKey("p1", "loc1")]
	require.NotNil(t, totals)
	assert.True(t, dec("120.50").Equal(totals.BackCharges))
	assert.True(t, dec("-40.00").Equal(totals.Credits))
	assert.True(t, dec("-15.25").Equal(totals.Condemnation))
	assert.True(t, dec("65.25").Equal(totals.Net()))

	// El lote no se toca: la conciliación ajusta la cifra de consumo
	// derivada, no las existencias.
	lot := s.lots[lotKey("loc1", "cemento")]
	assert.True(t, dec("100").Equal(lot.Quantity))
	assert.True(t, dec("10.00").Equal(lot.UnitCost))

	pl := s.periodLocs[plKey("p1", "loc1")]
	require.NotNil(t, pl)
	assert.NotNil(t, pl.ReconciliationSavedAt)
	assert.False(t, pl.Ready, "guardar conciliación no marca la locación lista")
}

func TestSaveReconciliation_GuardadosSucesivosAcumulan(t *testing.T) {
	// Caso 2: un segundo guardado suma sobre los totales existentes.
	s := newFakeStore()
	seedOpenPeriod(s, "p1")

	uc := ledger.NewReconciliationUseCase(&fakeRunner{store: s}, nil)
	save := func(amount string) {
		_, err := uc.SaveReconciliation(context.Background(), ledger.SaveReconciliationInput{
			LocationID: "loc1",
			PeriodID:   "p1",
			ActorID:    "u1",
			Date:       time.Now(),
			Lines: []ledger.ReconciliationLineInput{
				{ItemID: "cemento", Kind: entity.AdjustmentBackCharge, Amount: dec(amount)},
			},
		})
		require.NoError(t, err)
	}
	save("100.00")
	save("30.00")

	totals := s.recTotals[plKey("p1", "loc1")]
	assert.True(t, dec("130.00").Equal(totals.BackCharges))
}

func TestSaveReconciliation_LineasInvalidasSeReportanJuntas(t *testing.T) {
	// Caso 3: clase inválida, monto cero e ítem faltante se reportan juntos.
	s := newFakeStore()
	seedOpenPeriod(s, "p1")

	uc := ledger.NewReconciliationUseCase(&fakeRunner{store: s}, nil)
	_, err := uc.SaveReconciliation(context.Background(), ledger.SaveReconciliationInput{
		LocationID: "loc1",
		PeriodID:   "p1",
		ActorID:    "u1",
		Date:       time.Now(),
		Lines: []ledger.ReconciliationLineInput{
			{ItemID: "cemento", Kind: "DESCUENTO", Amount: dec("10")},
			{ItemID: "arena", Kind: entity.AdjustmentCredit, Amount: dec("0")},
			{Kind: entity.AdjustmentBackCharge, Amount: dec("5")},
		},
	})
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	names := fieldNames(ve)
	assert.Contains(t, names, "lines[0].kind")
	assert.Contains(t, names, "lines[1].amount")
	assert.Contains(t, names, "lines[2].item_id")
}
