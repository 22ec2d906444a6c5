package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"modastock/internal/domain"
)

func produtoSimples(stock int) *domain.Product {
	return &domain.Product{ID: 1, Name: "Camisa Slim", Stock: stock}
}

// TestEvaluateStockAlert_LowStockOnce testa que a entrada na zona de estoque
// baixo emite low_stock uma única vez, mesmo com quedas sucessivas.
func TestEvaluateStockAlert_LowStockOnce(t *testing.T) {
	p := produtoSimples(6)

	// 6 → 5: entrou na zona baixa.
	p.Stock = 5
	alert := domain.EvaluateStockAlert(p, 6)
	assert.NotNil(t, alert)
	assert.Equal(t, domain.AlertLowStock, alert.Type)
	assert.Equal(t, int64(1), alert.ProductID)
	assert.Equal(t, "Camisa Slim", alert.Name)
	assert.Equal(t, 5, alert.Stock)
	assert.True(t, p.LowStockNotified)

	// 5 → 3: continua na zona, já notificado.
	p.Stock = 3
	assert.Nil(t, domain.EvaluateStockAlert(p, 5))
}

// TestEvaluateStockAlert_OutOfStockOnce testa que chegar a zero emite
// out_of_stock uma única vez por excursão.
func TestEvaluateStockAlert_OutOfStockOnce(t *testing.T) {
	p := produtoSimples(2)
	p.LowStockNotified = true // já estava na zona baixa

	p.Stock = 0
	alert := domain.EvaluateStockAlert(p, 2)
	assert.NotNil(t, alert)
	assert.Equal(t, domain.AlertOutOfStock, alert.Type)
	assert.Equal(t, 0, alert.Stock)
	assert.True(t, p.OutOfStockNotified)

	// Nova avaliação com o estoque ainda em zero: silêncio.
	assert.Nil(t, domain.EvaluateStockAlert(p, 0))
}

// TestEvaluateStockAlert_DirectToZero testa a queda direta de estoque alto
// para zero: apenas out_of_stock, sem low_stock intermediário.
func TestEvaluateStockAlert_DirectToZero(t *testing.T) {
	p := produtoSimples(10)

	p.Stock = 0
	alert := domain.EvaluateStockAlert(p, 10)
	assert.NotNil(t, alert)
	assert.Equal(t, domain.AlertOutOfStock, alert.Type)
	assert.False(t, p.LowStockNotified)
	assert.True(t, p.OutOfStockNotified)
}

// TestEvaluateStockAlert_RestockResetsFlags testa que a reposição acima do
// limite zera as flags e permite uma nova excursão de alertas.
func TestEvaluateStockAlert_RestockResetsFlags(t *testing.T) {
	p := produtoSimples(0)
	p.LowStockNotified = true
	p.OutOfStockNotified = true

	// Reposição: 0 → 20.
	p.Stock = 20
	assert.Nil(t, domain.EvaluateStockAlert(p, 0))
	assert.False(t, p.LowStockNotified)
	assert.False(t, p.OutOfStockNotified)

	// Nova queda para a zona baixa alerta de novo.
	p.Stock = 4
	alert := domain.EvaluateStockAlert(p, 20)
	assert.NotNil(t, alert)
	assert.Equal(t, domain.AlertLowStock, alert.Type)
}

// TestEvaluateStockAlert_IncreaseWithinZone testa que qualquer subida zera
// as flags, mesmo que o estoque continue dentro da zona baixa.
func TestEvaluateStockAlert_IncreaseWithinZone(t *testing.T) {
	p := produtoSimples(1)
	p.LowStockNotified = true

	// Devolução parcial: 1 → 3, ainda <= limite, mas subiu.
	p.Stock = 3
	assert.Nil(t, domain.EvaluateStockAlert(p, 1))
	assert.False(t, p.LowStockNotified)

	// Próxima queda volta a alertar.
	p.Stock = 2
	alert := domain.EvaluateStockAlert(p, 3)
	assert.NotNil(t, alert)
	assert.Equal(t, domain.AlertLowStock, alert.Type)
}

// TestEvaluateStockAlert_AboveThresholdStaysQuiet testa quedas que terminam
// acima do limite: nenhum alerta, flags zeradas.
func TestEvaluateStockAlert_AboveThresholdStaysQuiet(t *testing.T) {
	p := produtoSimples(20)

	p.Stock = 6
	assert.Nil(t, domain.EvaluateStockAlert(p, 20))
	assert.False(t, p.LowStockNotified)
	assert.False(t, p.OutOfStockNotified)
}
