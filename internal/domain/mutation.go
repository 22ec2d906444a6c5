package domain

import (
	"errors"
	"fmt"
)

// Erros sentinela do motor de mutação de estoque. As camadas de serviço e
// API os traduzem para os erros tipados de aplicação (HTTP).
var (
	ErrProductNotFound   = errors.New("produto não encontrado")
	ErrVariantNotFound   = errors.New("variante não encontrada")
	ErrInsufficientStock = errors.New("estoque insuficiente")
)

// StockMutationRequest é um item de pedido a ser aplicado ao estoque.
// Size e Color são opcionais: vazios significam "sem variante, usar o
// estoque do produto".
type StockMutationRequest struct {
	ProductID int64  `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Size      string `json:"size,omitempty"`
	Color     string `json:"color,omitempty"`
}

// MutationDirection indica o sentido da mutação de um lote.
type MutationDirection int

const (
	DirectionDecrement MutationDirection = iota // confirmação de pedido
	DirectionIncrement                          // cancelamento/devolução
)

// Delta converte a quantidade de um item no delta com sinal correto.
func (d MutationDirection) Delta(quantity int) int {
	if d == DirectionDecrement {
		return -quantity
	}
	return quantity
}

// StockBatchRequest é o payload de um lote de mutação vindo do subsistema
// de Pedidos: os itens de um pedido, mutados como uma unidade atômica.
// OperationID é opcional; quando presente (UUID), deduplica resubmissões.
type StockBatchRequest struct {
	OperationID string                 `json:"operation_id,omitempty"`
	Items       []StockMutationRequest `json:"items"`
}

// StockUpdate é o resultado por produto de um lote aplicado com sucesso.
type StockUpdate struct {
	ProductID int64 `json:"product_id"`
	Stock     int   `json:"stock"`
}

// MutationResult agrega os dois artefatos que os consumidores precisam:
// a lista de estoques atualizados (para o subsistema de Pedidos) e a lista
// de alertas emitidos (para o Notifier), na ordem em que foram gerados.
type MutationResult struct {
	UpdatedProducts []StockUpdate `json:"updated_products"`
	Alerts          []StockAlert  `json:"alerts"`
}

// BatchItemError descreve a falha de um item específico do lote. O índice e
// o contexto (produto, pedido vs. disponível) permitem ao chamador montar
// uma mensagem acionável em vez de uma falha genérica.
type BatchItemError struct {
	Index       int
	ProductID   int64
	ProductName string
	Size        string
	Color       string
	Requested   int
	Available   int
	Reason      error
}

func (e *BatchItemError) Error() string {
	switch {
	case errors.Is(e.Reason, ErrInsufficientStock):
		return fmt.Sprintf("item %d: estoque insuficiente para o produto '%s' (id %d): pedido %d, disponível %d",
			e.Index, e.ProductName, e.ProductID, e.Requested, e.Available)
	case errors.Is(e.Reason, ErrVariantNotFound):
		return fmt.Sprintf("item %d: o produto '%s' (id %d) não possui a variante (tamanho '%s', cor '%s')",
			e.Index, e.ProductName, e.ProductID, e.Size, e.Color)
	case errors.Is(e.Reason, ErrProductNotFound):
		return fmt.Sprintf("item %d: produto %d não encontrado", e.Index, e.ProductID)
	}
	return fmt.Sprintf("item %d: %v", e.Index, e.Reason)
}

func (e *BatchItemError) Unwrap() error { return e.Reason }

// ApplyBatch aplica um lote de mutações sobre o estado carregado (e já
// travado) dos produtos, sem tocar os originais: cada produto é clonado no
// primeiro toque e o resultado devolve os clones prontos para persistência.
// É a metade pura do motor — a transação e os locks ficam no repositório.
//
// Semântica:
//   - itens aplicados na ordem submetida; itens do mesmo produto compartilham
//     o mesmo estado preparado (e as flags de alerta evoluem entre eles);
//   - decremento: qualquer falha aborta o lote inteiro (nada é devolvido);
//   - incremento: item de produto (ou variante) que deixou de existir é
//     pulado — a devolução é best-effort e não pode bloquear um cancelamento;
//   - a máquina de alertas roda uma vez por item, com o agregado
//     anterior/posterior daquele item.
//
// O lote já deve ter passado pela validação de payload (serviço).
func ApplyBatch(products map[int64]*Product, batch []StockMutationRequest, direction MutationDirection) (*MutationResult, []*Product, error) {
	staged := make(map[int64]*Product, len(batch))
	order := make([]int64, 0, len(batch))
	alerts := []StockAlert{}

	for i, item := range batch {
		p, touched := staged[item.ProductID]
		if !touched {
			original, found := products[item.ProductID]
			if !found {
				if direction == DirectionIncrement {
					continue // produto sumiu do catálogo: devolução segue sem ele
				}
				return nil, nil, &BatchItemError{
					Index:     i,
					ProductID: item.ProductID,
					Reason:    ErrProductNotFound,
				}
			}
			p = original.Clone()
			staged[item.ProductID] = p
			order = append(order, item.ProductID)
		}

		previous := p.Stock
		if err := p.ApplyStockDelta(item.Size, item.Color, direction.Delta(item.Quantity)); err != nil {
			if direction == DirectionIncrement && errors.Is(err, ErrVariantNotFound) {
				continue // mesma regra best-effort: a variante foi removida do catálogo
			}
			return nil, nil, &BatchItemError{
				Index:       i,
				ProductID:   p.ID,
				ProductName: p.Name,
				Size:        item.Size,
				Color:       item.Color,
				Requested:   item.Quantity,
				Available:   p.AvailableStock(item.Size, item.Color),
				Reason:      err,
			}
		}

		if alert := EvaluateStockAlert(p, previous); alert != nil {
			alerts = append(alerts, *alert)
		}
	}

	result := &MutationResult{
		UpdatedProducts: make([]StockUpdate, 0, len(order)),
		Alerts:          alerts,
	}
	stagedList := make([]*Product, 0, len(order))
	for _, id := range order {
		p := staged[id]
		result.UpdatedProducts = append(result.UpdatedProducts, StockUpdate{ProductID: id, Stock: p.Stock})
		stagedList = append(stagedList, p)
	}
	return result, stagedList, nil
}
