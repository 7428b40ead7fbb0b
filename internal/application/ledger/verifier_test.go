package ledger_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ledger "github.com/economato/stock-ledger/internal/application/ledger"
	"github.com/economato/stock-ledger/internal/domain/entity"
	hashchain "github.com/economato/stock-ledger/internal/domain/ledger"
)

// buildChain registra n movimientos sobre el producto y devuelve el servicio
// junto con el store para poder manipular filas "por debajo" del motor.
func buildChain(t *testing.T, deltas ...string) (*ledger.Service, *memoryStore) {
	t.Helper()
	store := newMemoryStore()
	store.seedProduct(productHarina, "Harina de trigo", "100.000")
	svc := newTestService(store)

	for _, d := range deltas {
		mt := entity.MovementEntrada
		if d[0] == '-' {
			mt = entity.MovementSalida
		}
		_, err := svc.RecordMovement(context.Background(), ledger.MovementInput{
			ProductID:     productHarina,
			QuantityDelta: dec(d),
			MovementType:  mt,
		})
		require.NoError(t, err)
	}
	return svc, store
}

func TestVerifyChain_CadenaIntegra(t *testing.T) {
	svc, store := buildChain(t, "50", "-3", "-20", "10.500")
	ctx := context.Background()

	result, err := svc.VerifyChain(ctx, productHarina)
	require.NoError(t, err)

	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)
	assert.Equal(t, 4, result.TotalEntries)
	assert.Equal(t, "Cadena íntegra: 4 transacciones verificadas", result.Message)

	// La verificación con éxito marca todas las entradas y el snapshot.
	for _, e := range store.entries[productHarina] {
		assert.True(t, e.Verified)
	}
	snap := store.snapshots[productHarina]
	assert.Equal(t, entity.IntegrityValid, snap.IntegrityStatus)
	require.NotNil(t, snap.LastVerified)
}

func TestVerifyChain_ProductoSinTransacciones(t *testing.T) {
	store := newMemoryStore()
	store.seedProduct(productHarina, "Harina de trigo", "100.000")
	svc := newTestService(store)

	result, err := svc.VerifyChain(context.Background(), productHarina)
	require.NoError(t, err)

	assert.True(t, result.Valid)
	assert.Zero(t, result.TotalEntries)
	assert.Equal(t, "No hay transacciones para este producto", result.Message)
}

// Escenario clásico: alguien edita resultingStock directamente en la base. El
// hash recalculado ya no coincide y la cadena queda CORRUPTED.
func TestVerifyChain_StockManipuladoDetectado(t *testing.T) {
	svc, store := buildChain(t, "50", "-3", "-10")
	ctx := context.Background()

	store.entries[productHarina][1].ResultingStock = dec("9999")

	result, err := svc.VerifyChain(ctx, productHarina)
	require.NoError(t, err)

	assert.False(t, result.Valid)
	assert.Equal(t, 3, result.TotalEntries)
	assert.Contains(t, result.Message, "CORRUPCIÓN DETECTADA")
	require.NotEmpty(t, result.Errors)
	assert.Contains(t, result.Errors[0], "TX#2: hash corrupto")

	snap := store.snapshots[productHarina]
	assert.Equal(t, entity.IntegrityCorrupted, snap.IntegrityStatus)
	for _, e := range store.entries[productHarina] {
		assert.False(t, e.Verified, "una cadena corrupta no marca nada como verificado")
	}
}

// Manipulación sofisticada: se reescribe una entrada Y se recalcula su hash.
// El enlace con la entrada siguiente se rompe (previousHash ya no coincide) y
// además la continuidad aritmética delata el stock inventado.
func TestVerifyChain_HashRecalculadoRompeElEnlace(t *testing.T) {
	svc, store := buildChain(t, "50", "-3", "-10")
	ctx := context.Background()

	tampered := store.entries[productHarina][1]
	tampered.ResultingStock = dec("9999")
	tampered.CurrentHash = hashchain.RecomputeHash(tampered)

	result, err := svc.VerifyChain(ctx, productHarina)
	require.NoError(t, err)

	assert.False(t, result.Valid)
	joined := ""
	for _, e := range result.Errors {
		joined += e + "\n"
	}
	assert.Contains(t, joined, "TX#3: previousHash incorrecto")
	assert.Contains(t, joined, "continuidad aritmética rota")
}

func TestVerifyChain_SecuenciaRota(t *testing.T) {
	svc, store := buildChain(t, "50", "-3")
	ctx := context.Background()

	store.entries[productHarina][1].SequenceNumber = 5

	result, err := svc.VerifyChain(ctx, productHarina)
	require.NoError(t, err)

	assert.False(t, result.Valid)
	joined := ""
	for _, e := range result.Errors {
		joined += e + "\n"
	}
	assert.Contains(t, joined, "secuencia rota")
}

// El verificador no se detiene en el primer error: acumula todas las
// discrepancias de la cadena.
func TestVerifyChain_AcumulaTodosLosErrores(t *testing.T) {
	svc, store := buildChain(t, "50", "-3", "-10", "5")
	ctx := context.Background()

	store.entries[productHarina][0].ResultingStock = dec("123")
	store.entries[productHarina][2].QuantityDelta = dec("-99")

	result, err := svc.VerifyChain(ctx, productHarina)
	require.NoError(t, err)

	assert.False(t, result.Valid)
	assert.GreaterOrEqual(t, len(result.Errors), 2)
}

func TestVerifyChain_ReverificarDespuesDeCorrupcion(t *testing.T) {
	svc, store := buildChain(t, "50")
	ctx := context.Background()

	original := store.entries[productHarina][0].ResultingStock
	store.entries[productHarina][0].ResultingStock = dec("777")

	result, err := svc.VerifyChain(ctx, productHarina)
	require.NoError(t, err)
	require.False(t, result.Valid)

	// Se restaura el dato y la siguiente verificación vuelve a VALID.
	store.entries[productHarina][0].ResultingStock = original

	result, err = svc.VerifyChain(ctx, productHarina)
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Equal(t, entity.IntegrityValid, store.snapshots[productHarina].IntegrityStatus)
}

func TestVerifyAllChains_UnResultadoPorProducto(t *testing.T) {
	store := newMemoryStore()
	store.seedProduct(productHarina, "Harina de trigo", "100.000")
	store.seedProduct(productAceite, "Aceite de oliva", "40.000")
	svc := newTestService(store)
	ctx := context.Background()

	for _, pid := range []string{productHarina, productAceite} {
		_, err := svc.RecordMovement(ctx, ledger.MovementInput{
			ProductID:     pid,
			QuantityDelta: dec("5"),
			MovementType:  entity.MovementEntrada,
		})
		require.NoError(t, err)
	}

	// Se corrompe solo la cadena de aceite.
	store.entries[productAceite][0].ResultingStock = dec("9999")

	results, err := svc.VerifyAllChains(ctx)
	require.NoError(t, err)
	require.Len(t, results, 2)

	byProduct := map[string]bool{}
	for _, r := range results {
		byProduct[r.ProductID] = r.Valid
	}
	assert.True(t, byProduct[productHarina])
	assert.False(t, byProduct[productAceite])
}
