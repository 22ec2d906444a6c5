package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"modastock/internal/domain"
)

func camisaComVariantes() *domain.Product {
	return &domain.Product{
		ID:    1,
		SKU:   "CAM-001",
		Name:  "Camisa Slim",
		Price: 99.90,
		Stock: 5,
		Variants: []domain.VariantStock{
			{ID: 10, Size: "M", Color: "Black", Stock: 3},
			{ID: 11, Size: "L", Color: "Black", Stock: 2},
		},
	}
}

// TestFindVariant_NormalizedMatch testa que a busca por variante ignora
// caixa e espaços nas bordas dos rótulos.
func TestFindVariant_NormalizedMatch(t *testing.T) {
	p := camisaComVariantes()

	v := p.FindVariant("  m ", "BLACK")
	assert.NotNil(t, v)
	assert.Equal(t, int64(10), v.ID)
	assert.Equal(t, 3, v.Stock)

	assert.Nil(t, p.FindVariant("XL", "Black"))
	assert.Nil(t, p.FindVariant("M", "White"))
}

// TestFindVariant_UnicodeLabels testa rótulos fora do ASCII (e.g. cores em
// outros idiomas), que devem comparar igual após normalização.
func TestFindVariant_UnicodeLabels(t *testing.T) {
	p := &domain.Product{
		ID: 2,
		Variants: []domain.VariantStock{
			{ID: 20, Size: "M", Color: "Đen", Stock: 4},
		},
	}

	v := p.FindVariant("m", " đen ")
	assert.NotNil(t, v)
	assert.Equal(t, 4, v.Stock)
}

// TestApplyStockDelta_VariantDecrement testa a baixa em uma variante e a
// manutenção do agregado.
func TestApplyStockDelta_VariantDecrement(t *testing.T) {
	p := camisaComVariantes()

	err := p.ApplyStockDelta("M", "Black", -2)

	assert.NoError(t, err)
	assert.Equal(t, 1, p.FindVariant("M", "Black").Stock)
	assert.Equal(t, 2, p.FindVariant("L", "Black").Stock)
	assert.Equal(t, 3, p.Stock) // agregado == soma das variantes
}

// TestApplyStockDelta_InsufficientStock testa que um delta que deixaria o
// contador negativo não altera nada.
func TestApplyStockDelta_InsufficientStock(t *testing.T) {
	p := camisaComVariantes()

	err := p.ApplyStockDelta("L", "Black", -3)

	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 2, p.FindVariant("L", "Black").Stock)
	assert.Equal(t, 5, p.Stock)
}

// TestApplyStockDelta_VariantNotFound testa o par (tamanho, cor) inexistente.
func TestApplyStockDelta_VariantNotFound(t *testing.T) {
	p := camisaComVariantes()

	err := p.ApplyStockDelta("XL", "Black", -1)

	assert.ErrorIs(t, err, domain.ErrVariantNotFound)
	assert.Equal(t, 5, p.Stock)
}

// TestApplyStockDelta_SemVariantes testa produtos com estoque único (sem
// variantes): o delta opera direto no agregado.
func TestApplyStockDelta_SemVariantes(t *testing.T) {
	p := &domain.Product{ID: 3, Name: "Cinto", Stock: 4}

	assert.NoError(t, p.ApplyStockDelta("", "", -4))
	assert.Equal(t, 0, p.Stock)

	assert.ErrorIs(t, p.ApplyStockDelta("", "", -1), domain.ErrInsufficientStock)
	assert.Equal(t, 0, p.Stock)

	assert.NoError(t, p.ApplyStockDelta("", "", 2))
	assert.Equal(t, 2, p.Stock)
}

// TestAvailableStock testa a leitura do disponível por item.
func TestAvailableStock(t *testing.T) {
	p := camisaComVariantes()

	assert.Equal(t, 3, p.AvailableStock("M", "Black"))
	assert.Equal(t, 0, p.AvailableStock("XL", "Black")) // par inexistente

	semVariantes := &domain.Product{Stock: 7}
	assert.Equal(t, 7, semVariantes.AvailableStock("", ""))
}

// TestClone_DeepCopy testa que o clone não compartilha o slice de variantes.
func TestClone_DeepCopy(t *testing.T) {
	p := camisaComVariantes()
	clone := p.Clone()

	clone.Variants[0].Stock = 0
	clone.RecomputeStock()

	assert.Equal(t, 3, p.Variants[0].Stock)
	assert.Equal(t, 5, p.Stock)
	assert.Equal(t, 2, clone.Stock)
}

// TestRecomputeStock testa a derivação do agregado.
func TestRecomputeStock(t *testing.T) {
	p := camisaComVariantes()
	p.Stock = 999 // valor inválido, deve ser refeito
	p.RecomputeStock()
	assert.Equal(t, 5, p.Stock)

	semVariantes := &domain.Product{Stock: 9}
	semVariantes.RecomputeStock()
	assert.Equal(t, 9, semVariantes.Stock) // sem variantes, Stock é autoritativo
}
