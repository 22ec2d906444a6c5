package domain

import (
	"strings"
	"time"
)

// Product representa o produto do catálogo e é a raiz de agregação do
// estoque. O campo Stock é o total vendável: quando o produto possui
// variantes, Stock deve ser sempre igual à soma dos estoques das variantes;
// quando não possui (ex: acessórios), Stock é o próprio contador.
type Product struct {
	ID        int64     `json:"id"`
	SKU       string    `json:"sku"` // Stock Keeping Unit (código único de produto)
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	Stock     int       `json:"stock"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Flags do alerta de estoque. Vivem junto do Stock para que nunca
	// fiquem fora de sincronia com o valor que elas vigiam (mesma
	// fronteira transacional).
	LowStockNotified   bool `json:"low_stock_notified"`
	OutOfStockNotified bool `json:"out_of_stock_notified"`

	Variants []VariantStock `json:"variants"`
}

// VariantStock representa o contador de estoque de uma combinação
// (tamanho, cor) do produto. Size e Color são texto livre (e.g. "M",
// "Đen") e a comparação é sempre normalizada: trim + lower-case.
type VariantStock struct {
	ID    int64  `json:"id"`
	Size  string `json:"size"`
	Color string `json:"color"`
	Stock int    `json:"stock"`
}

// NormalizeLabel aplica a regra de comparação de rótulos de variante.
func NormalizeLabel(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}

// HasVariants informa se o estoque deste produto é controlado por variantes.
func (p *Product) HasVariants() bool {
	return len(p.Variants) > 0
}

// FindVariant localiza a variante (size, color) com comparação normalizada.
// Retorna nil quando o par não existe ou quando o produto não tem variantes.
func (p *Product) FindVariant(size, color string) *VariantStock {
	wantSize := NormalizeLabel(size)
	wantColor := NormalizeLabel(color)

	for i := range p.Variants {
		v := &p.Variants[i]
		if NormalizeLabel(v.Size) == wantSize && NormalizeLabel(v.Color) == wantColor {
			return v
		}
	}
	return nil
}

// RecomputeStock refaz o agregado a partir das variantes.
// Sem variantes, o campo Stock é autoritativo e nada muda.
func (p *Product) RecomputeStock() {
	if !p.HasVariants() {
		return
	}
	total := 0
	for i := range p.Variants {
		total += p.Variants[i].Stock
	}
	p.Stock = total
}

// ApplyStockDelta aplica o delta de um único item de pedido (negativo para
// venda, positivo para devolução) ao contador correto e mantém o agregado
// consistente. A operação é tudo-ou-nada: em caso de erro nada muda.
//
// Erros possíveis (sentinelas, traduzidos pelas camadas acima):
//   - ErrVariantNotFound: o produto tem variantes e o par (size, color) não existe;
//   - ErrInsufficientStock: o resultado ficaria negativo.
func (p *Product) ApplyStockDelta(size, color string, delta int) error {
	if p.HasVariants() {
		variant := p.FindVariant(size, color)
		if variant == nil {
			return ErrVariantNotFound
		}
		if variant.Stock+delta < 0 {
			return ErrInsufficientStock
		}
		variant.Stock += delta
		p.RecomputeStock()
		return nil
	}

	if p.Stock+delta < 0 {
		return ErrInsufficientStock
	}
	p.Stock += delta
	return nil
}

// AvailableStock devolve quanto há disponível para o item informado:
// o contador da variante quando ela existe, ou o agregado.
func (p *Product) AvailableStock(size, color string) int {
	if p.HasVariants() {
		if v := p.FindVariant(size, color); v != nil {
			return v.Stock
		}
		return 0
	}
	return p.Stock
}

// Clone devolve uma cópia profunda do produto (variantes incluídas).
// Usado pelo motor de mutação para preparar o estado sem tocar o original.
func (p *Product) Clone() *Product {
	clone := *p
	clone.Variants = make([]VariantStock, len(p.Variants))
	copy(clone.Variants, p.Variants)
	return &clone
}

// ProductFilter define os parâmetros de busca e paginação do catálogo.
type ProductFilter struct {
	Page       int
	Limit      int
	Name       string
	SKU        string
	ActiveOnly bool
}
