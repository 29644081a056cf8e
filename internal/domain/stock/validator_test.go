package stock_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alkholigroup2020/stock-management-system-sub010/internal/domain"
	"github.com/alkholigroup2020/stock-management-system-sub010/internal/domain/stock"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Caso 1: Disponible cubre lo solicitado → nil.
func TestCheckSufficiency_Suficiente(t *testing.T) {
	assert.NoError(t, stock.CheckSufficiency("item-1", dec("120"), dec("120")),
		"solicitar exactamente lo disponible es válido")
	assert.NoError(t, stock.CheckSufficiency("item-1", dec("120"), dec("30")))
}

// Caso 2: Faltante → error con el detalle del ítem.
func TestCheckSufficiency_Insuficiente(t *testing.T) {
	err := stock.CheckSufficiency("item-1", dec("120"), dec("200"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))

	var ise *domain.InsufficientStockError
	require.True(t, errors.As(err, &ise))
	require.Len(t, ise.Shortfalls, 1)
	assert.Equal(t, "item-1", ise.Shortfalls[0].ItemID)
	assert.True(t, dec("200").Equal(ise.Shortfalls[0].Requested))
	assert.True(t, dec("120").Equal(ise.Shortfalls[0].Available))
}

// Caso 3: CheckBulk enumera TODOS los insuficientes, no solo el primero.
func TestCheckBulk_EnumeraTodosLosFaltantes(t *testing.T) {
	available := map[string]decimal.Decimal{
		"arroz":  dec("10"),
		"frijol": dec("5"),
		"aceite": dec("100"),
	}
	err := stock.CheckBulk(available, []stock.LineRequest{
		{ItemID: "arroz", Requested: dec("20")},
		{ItemID: "aceite", Requested: dec("50")},
		{ItemID: "frijol", Requested: dec("8")},
	})
	require.Error(t, err)

	var ise *domain.InsufficientStockError
	require.True(t, errors.As(err, &ise))
	require.Len(t, ise.Shortfalls, 2, "debe reportar los dos faltantes")
	assert.Equal(t, "arroz", ise.Shortfalls[0].ItemID, "en orden de solicitud")
	assert.Equal(t, "frijol", ise.Shortfalls[1].ItemID)
}

// Caso 4: Las solicitudes del mismo ítem se agregan antes de comparar.
func TestCheckBulk_AgregaMismoItem(t *testing.T) {
	available := map[string]decimal.Decimal{"arroz": dec("10")}

	// 6 + 6 = 12 > 10 aunque cada línea por sí sola cabría.
	err := stock.CheckBulk(available, []stock.LineRequest{
		{ItemID: "arroz", Requested: dec("6")},
		{ItemID: "arroz", Requested: dec("6")},
	})
	require.Error(t, err)

	var ise *domain.InsufficientStockError
	require.True(t, errors.As(err, &ise))
	require.Len(t, ise.Shortfalls, 1)
	assert.True(t, dec("12").Equal(ise.Shortfalls[0].Requested), "la cantidad comparada es la agregada")
}

// Caso 5: Ítem sin lote (no aparece en el mapa) se trata como disponible cero.
func TestCheckBulk_ItemSinLote(t *testing.T) {
	err := stock.CheckBulk(map[string]decimal.Decimal{}, []stock.LineRequest{
		{ItemID: "nuevo", Requested: dec("1")},
	})
	require.Error(t, err)

	var ise *domain.InsufficientStockError
	require.True(t, errors.As(err, &ise))
	assert.True(t, ise.Shortfalls[0].Available.IsZero())
}
