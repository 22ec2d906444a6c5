package inventoryrepo

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"github.com/lib/pq"

	"modastock/internal/domain"
	"modastock/internal/errors"
	"modastock/internal/pkg/cache"
	"modastock/internal/pkg/logger"
)

// InventoryRepository é a metade transacional do motor de mutação de
// estoque: uma transação por lote, lock exclusivo por linha de produto
// (SELECT ... FOR UPDATE) e persistência conjunta do estado preparado.
// A lógica de negócio do lote (deltas, agregado, alertas) fica em
// domain.ApplyBatch — aqui só entram locks, leitura e escrita.
type InventoryRepository struct {
	DB        *sql.DB
	Cache     cache.Client
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewInventoryRepository cria e retorna uma nova instância do Repositório de Estoque.
func NewInventoryRepository(db *sql.DB, cacheClient cache.Client, dbTimeout time.Duration, logger logger.Logger) *InventoryRepository {
	return &InventoryRepository{
		DB:        db,
		Cache:     cacheClient,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

// Código de erro do PostgreSQL para violação de chave única.
const pqUniqueViolation = "23505"

// ApplyMutation aplica um lote inteiro como uma unidade atômica.
//
// Os locks de produto são adquiridos em ordem crescente de id,
// independentemente da ordem dos itens no lote: dois lotes concorrentes que
// tocam o mesmo conjunto de produtos sempre travam na mesma ordem, o que
// elimina deadlock entre eles. Os itens em si são aplicados na ordem
// submetida (domain.ApplyBatch).
//
// operationID, quando presente, é registrado em stock_operations dentro da
// mesma transação: uma resubmissão do mesmo lote falha com ConflictError em
// vez de decrementar duas vezes.
func (r *InventoryRepository) ApplyMutation(ctx context.Context, operationID string, batch []domain.StockMutationRequest, direction domain.MutationDirection) (*domain.MutationResult, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	tx, err := r.DB.BeginTx(ctxTimeout, nil)
	if err != nil {
		r.logger.Error("Falha ao iniciar transação para mutação de estoque.", err)
		return nil, errors.NewDBError("Falha ao iniciar transação", err)
	}
	defer tx.Rollback() // Rollback em caso de erro (no-op após Commit)

	// 1. Idempotência: registra a operação antes de tocar o estoque.
	if operationID != "" {
		_, err = tx.ExecContext(ctxTimeout,
			`INSERT INTO stock_operations (operation_id, direction, applied_at) VALUES ($1, $2, $3)`,
			operationID, directionLabel(direction), time.Now().UTC(),
		)
		if err != nil {
			if pqErr, ok := err.(*pq.Error); ok && string(pqErr.Code) == pqUniqueViolation {
				r.logger.Warn("Operação de estoque duplicada rejeitada.", map[string]interface{}{
					"operation_id": operationID,
				})
				return nil, errors.NewConflictError("A operação de estoque já foi aplicada. Resubmissão ignorada.")
			}
			r.logger.Error("Falha ao registrar operação de estoque.", err)
			return nil, errors.NewDBError("Falha ao registrar operação", err)
		}
	}

	// 2. Travar e carregar cada produto afetado, em ordem crescente de id.
	products, err := r.lockAndLoadProducts(ctxTimeout, tx, batch)
	if err != nil {
		return nil, err
	}

	// 3. Aplicar o lote (lógica pura: deltas, agregado, máquina de alertas).
	result, staged, err := domain.ApplyBatch(products, batch, direction)
	if err != nil {
		// Erro de negócio do lote (item inválido): a transação é desfeita
		// pelo defer e o serviço traduz o BatchItemError.
		return nil, err
	}

	// 4. Persistir o estado preparado de todos os produtos juntos.
	for _, p := range staged {
		if err := r.persistProduct(ctxTimeout, tx, p); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		r.logger.Error("Falha ao commitar transação de mutação de estoque.", err)
		return nil, errors.NewDBError("Falha ao commitar transação", err)
	}

	// 5. Invalidação de cache fora da transação: a leitura do catálogo não
	// pode servir um agregado velho. Falha aqui só gera log (o TTL cobre).
	for _, p := range staged {
		if cacheErr := r.Cache.Delete(ctx, cache.ProductKey(p.ID)); cacheErr != nil {
			r.logger.Warn("Falha ao invalidar cache do produto.", map[string]interface{}{
				"product_id": p.ID,
				"error":      cacheErr.Error(),
			})
		}
	}

	r.logger.Info("Lote de mutação de estoque aplicado.", map[string]interface{}{
		"direction":    directionLabel(direction),
		"items":        len(batch),
		"products":     len(staged),
		"alerts":       len(result.Alerts),
		"operation_id": operationID,
	})
	return result, nil
}

// lockAndLoadProducts adquire o lock de linha de cada produto distinto do
// lote (ordem crescente de id) e carrega produto + variantes dentro da
// transação. Produto inexistente simplesmente não entra no mapa — a
// semântica (abortar vs. pular) é decidida por domain.ApplyBatch.
func (r *InventoryRepository) lockAndLoadProducts(ctx context.Context, tx *sql.Tx, batch []domain.StockMutationRequest) (map[int64]*domain.Product, error) {
	seen := make(map[int64]bool, len(batch))
	ids := make([]int64, 0, len(batch))
	for _, item := range batch {
		if !seen[item.ProductID] {
			seen[item.ProductID] = true
			ids = append(ids, item.ProductID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	const productSQL = `
        SELECT id, sku, name, price, stock, is_active, low_stock_notified, out_of_stock_notified, created_at, updated_at
        FROM products
        WHERE id = $1 FOR UPDATE`

	const variantSQL = `
        SELECT id, size, color, stock
        FROM product_variants
        WHERE product_id = $1
        ORDER BY id`

	products := make(map[int64]*domain.Product, len(ids))
	for _, id := range ids {
		var p domain.Product
		err := tx.QueryRowContext(ctx, productSQL, id).Scan(
			&p.ID, &p.SKU, &p.Name, &p.Price, &p.Stock, &p.IsActive,
			&p.LowStockNotified, &p.OutOfStockNotified, &p.CreatedAt, &p.UpdatedAt,
		)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			r.logger.Error("Falha ao travar/carregar produto para mutação.", err)
			return nil, errors.NewDBError("Falha ao carregar produto", err)
		}

		rows, err := tx.QueryContext(ctx, variantSQL, id)
		if err != nil {
			r.logger.Error("Falha ao carregar variantes do produto.", err)
			return nil, errors.NewDBError("Falha ao carregar variantes", err)
		}
		for rows.Next() {
			var v domain.VariantStock
			if err := rows.Scan(&v.ID, &v.Size, &v.Color, &v.Stock); err != nil {
				rows.Close()
				return nil, errors.NewDBError("Falha ao ler variante", err)
			}
			p.Variants = append(p.Variants, v)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, errors.NewDBError("Falha ao iterar variantes", err)
		}
		rows.Close()

		products[id] = &p
	}
	return products, nil
}

// persistProduct grava o agregado, as flags de alerta e os contadores de
// variante do estado preparado.
func (r *InventoryRepository) persistProduct(ctx context.Context, tx *sql.Tx, p *domain.Product) error {
	const updateProductSQL = `
        UPDATE products
        SET stock = $1, low_stock_notified = $2, out_of_stock_notified = $3, updated_at = $4
        WHERE id = $5`

	if _, err := tx.ExecContext(ctx, updateProductSQL,
		p.Stock, p.LowStockNotified, p.OutOfStockNotified, time.Now().UTC(), p.ID,
	); err != nil {
		r.logger.Error("Falha ao atualizar produto na mutação de estoque.", err)
		return errors.NewDBError("Falha ao atualizar produto", err)
	}

	const updateVariantSQL = `UPDATE product_variants SET stock = $1 WHERE id = $2`
	for i := range p.Variants {
		v := &p.Variants[i]
		if _, err := tx.ExecContext(ctx, updateVariantSQL, v.Stock, v.ID); err != nil {
			r.logger.Error("Falha ao atualizar variante na mutação de estoque.", err)
			return errors.NewDBError("Falha ao atualizar variante", err)
		}
	}
	return nil
}

func directionLabel(direction domain.MutationDirection) string {
	if direction == domain.DirectionDecrement {
		return "decrement"
	}
	return "increment"
}
