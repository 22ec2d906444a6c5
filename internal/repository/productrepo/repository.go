package productrepo

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"modastock/internal/domain"
	"modastock/internal/errors"
	"modastock/internal/pkg/cache"
	"modastock/internal/pkg/logger"
)

// ProductRepository é a camada de acesso a dados do catálogo.
// Leituras usam a estratégia Cache-Aside (Redis); escritas invalidam a chave.
type ProductRepository struct {
	DB        *sql.DB
	Cache     cache.Client
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewProductRepository cria e retorna uma nova instância do Repositório.
func NewProductRepository(db *sql.DB, cacheClient cache.Client, dbTimeout time.Duration, logger logger.Logger) *ProductRepository {
	return &ProductRepository{
		DB:        db,
		Cache:     cacheClient,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

// TTL do cache de produto. Curto de propósito: o estoque muda a cada pedido.
const productCacheTTL = 2 * time.Minute

// Save persiste um novo Produto e suas variantes de estoque em uma única
// transação. Os ids (serial) são preenchidos no retorno.
func (r *ProductRepository) Save(ctx context.Context, product domain.Product) (domain.Product, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	tx, err := r.DB.BeginTx(ctxTimeout, nil)
	if err != nil {
		return domain.Product{}, errors.NewDBError("Falha ao iniciar transação", err)
	}
	defer tx.Rollback()

	const productSQL = `
        INSERT INTO products (sku, name, price, stock, is_active, low_stock_notified, out_of_stock_notified, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING id`

	err = tx.QueryRowContext(ctxTimeout, productSQL,
		product.SKU,
		product.Name,
		product.Price,
		product.Stock,
		product.IsActive,
		product.LowStockNotified,
		product.OutOfStockNotified,
		product.CreatedAt,
		product.UpdatedAt,
	).Scan(&product.ID)
	if err != nil {
		return domain.Product{}, errors.NewDBError("Falha ao inserir produto", err)
	}

	const variantSQL = `
        INSERT INTO product_variants (product_id, size, color, stock)
        VALUES ($1, $2, $3, $4)
        RETURNING id`

	for i := range product.Variants {
		v := &product.Variants[i]
		if err = tx.QueryRowContext(ctxTimeout, variantSQL, product.ID, v.Size, v.Color, v.Stock).Scan(&v.ID); err != nil {
			return domain.Product{}, errors.NewDBError("Falha ao inserir variante", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return domain.Product{}, errors.NewDBError("Falha ao commitar transação", err)
	}

	return product, nil
}

// FindByID busca um produto (com variantes) pelo ID, usando Cache-Aside.
func (r *ProductRepository) FindByID(ctx context.Context, id int64) (domain.Product, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	key := cache.ProductKey(id)
	var product domain.Product

	// 1. Tentar o cache primeiro.
	cachedData, err := r.Cache.Get(ctxTimeout, key)
	if err == nil {
		if json.Unmarshal([]byte(cachedData), &product) == nil {
			return product, nil
		}
		// Cache corrompido: segue para o DB e reescreve.
	} else if err != cache.ErrCacheMiss {
		// Erro real de cache (conexão, etc.): logamos e seguimos para o DB.
		r.logger.Warn("Falha ao ler do cache Redis.", map[string]interface{}{"key": key, "error": err.Error()})
	}

	// 2. Banco de dados.
	const productSQL = `
        SELECT id, sku, name, price, stock, is_active, low_stock_notified, out_of_stock_notified, created_at, updated_at
        FROM products
        WHERE id = $1`

	err = r.DB.QueryRowContext(ctxTimeout, productSQL, id).Scan(
		&product.ID,
		&product.SKU,
		&product.Name,
		&product.Price,
		&product.Stock,
		&product.IsActive,
		&product.LowStockNotified,
		&product.OutOfStockNotified,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return domain.Product{}, errors.NewNotFoundError("Produto não encontrado.")
	}
	if err != nil {
		return domain.Product{}, errors.NewDBError("Falha ao buscar produto", err)
	}

	const variantSQL = `
        SELECT id, size, color, stock
        FROM product_variants
        WHERE product_id = $1
        ORDER BY id`

	rows, err := r.DB.QueryContext(ctxTimeout, variantSQL, id)
	if err != nil {
		return domain.Product{}, errors.NewDBError("Falha ao buscar variantes", err)
	}
	defer rows.Close()

	for rows.Next() {
		var v domain.VariantStock
		if err := rows.Scan(&v.ID, &v.Size, &v.Color, &v.Stock); err != nil {
			return domain.Product{}, errors.NewDBError("Falha ao ler variante", err)
		}
		product.Variants = append(product.Variants, v)
	}
	if err := rows.Err(); err != nil {
		return domain.Product{}, errors.NewDBError("Falha ao iterar variantes", err)
	}

	// 3. Popular o cache para as próximas leituras (best-effort).
	if jsonBytes, jsonErr := json.Marshal(product); jsonErr == nil {
		if cacheErr := r.Cache.Set(ctxTimeout, key, jsonBytes, productCacheTTL); cacheErr != nil {
			r.logger.Warn("Falha ao popular cache do produto.", map[string]interface{}{"key": key, "error": cacheErr.Error()})
		}
	}

	return product, nil
}
