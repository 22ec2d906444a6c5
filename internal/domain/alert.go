package domain

// LowStockThreshold é o limite fixo do alerta de estoque baixo, em unidades.
const LowStockThreshold = 5

// AlertType identifica o tipo de alerta de estoque.
type AlertType string

const (
	AlertLowStock   AlertType = "low_stock"
	AlertOutOfStock AlertType = "out_of_stock"
)

// StockAlert é o registro efêmero produzido pelo motor de mutação e
// entregue ao Notifier. Não é persistido por este serviço.
type StockAlert struct {
	Type      AlertType `json:"type"`
	ProductID int64     `json:"product_id"`
	Name      string    `json:"name"`  // nome de exibição do produto no momento do alerta
	Stock     int       `json:"stock"` // agregado resultante após a mutação
}

// EvaluateStockAlert roda a máquina de estados de alerta após uma mutação de
// estoque, usando o agregado anterior (previousStock) e o atual (p.Stock).
// Atualiza as flags de notificação no próprio produto e devolve o alerta a
// emitir, ou nil.
//
// Regras (uma avaliação por item de pedido, com o antes/depois daquele item):
//  1. subiu ou ficou acima do limite → zera as duas flags, sem alerta
//     (o produto saiu das duas zonas; uma nova excursão poderá alertar de novo);
//  2. chegou a zero → out_of_stock, no máximo uma vez por excursão;
//  3. ficou entre 1 e o limite → low_stock, no máximo uma vez por excursão.
func EvaluateStockAlert(p *Product, previousStock int) *StockAlert {
	next := p.Stock

	if next > previousStock || next > LowStockThreshold {
		p.LowStockNotified = false
		p.OutOfStockNotified = false
		return nil
	}

	if next == 0 {
		if p.OutOfStockNotified {
			return nil // já notificado nesta excursão
		}
		p.OutOfStockNotified = true
		return &StockAlert{
			Type:      AlertOutOfStock,
			ProductID: p.ID,
			Name:      p.Name,
			Stock:     next,
		}
	}

	// Aqui 0 < next <= LowStockThreshold.
	if p.LowStockNotified {
		return nil
	}
	p.LowStockNotified = true
	return &StockAlert{
		Type:      AlertLowStock,
		ProductID: p.ID,
		Name:      p.Name,
		Stock:     next,
	}
}
