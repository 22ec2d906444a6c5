package productservice

import (
	"context"
	"fmt"
	"time"

	"modastock/internal/domain"
	apperror "modastock/internal/errors"
	"modastock/internal/pkg/logger"
)

// ProductRepository define o contrato (interface) que este Serviço espera
// da camada de Persistência (DB, Cache).
type ProductRepository interface {
	Save(ctx context.Context, product domain.Product) (domain.Product, error)
	FindByID(ctx context.Context, id int64) (domain.Product, error)
}

// Service é a camada de lógica de negócio do catálogo. O CRUD completo da
// loja vive em outro sistema; aqui entra só o necessário para que as linhas
// de produto/variante que o motor de mutação opera sejam criadas e lidas
// com as invariantes corretas.
type Service struct {
	repo   ProductRepository
	logger logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Produto.
func NewService(repo ProductRepository, logger logger.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// CreateProduct valida e persiste um novo produto com suas variantes.
//
// A lista de variantes é a coleção tipada do estoque: cada par
// (tamanho, cor) normalizado deve ser único e os contadores não podem ser
// negativos. O agregado Stock é derivado aqui — nunca aceito do chamador
// quando há variantes.
func (s *Service) CreateProduct(ctx context.Context, product domain.Product) (domain.Product, error) {
	if product.Name == "" || product.SKU == "" {
		return domain.Product{}, apperror.NewValidationError("Nome e SKU são obrigatórios para o produto.")
	}
	if product.Price <= 0 {
		return domain.Product{}, apperror.NewValidationError("O preço do produto deve ser positivo.")
	}
	if product.Stock < 0 {
		return domain.Product{}, apperror.NewValidationError("O estoque do produto não pode ser negativo.")
	}

	seen := make(map[string]bool, len(product.Variants))
	for i := range product.Variants {
		v := &product.Variants[i]
		if v.Stock < 0 {
			return domain.Product{}, apperror.NewValidationError(fmt.Sprintf("Variante %d: o estoque não pode ser negativo.", i+1))
		}
		pair := domain.NormalizeLabel(v.Size) + "|" + domain.NormalizeLabel(v.Color)
		if seen[pair] {
			return domain.Product{}, apperror.NewValidationError(
				fmt.Sprintf("Variante duplicada: (tamanho '%s', cor '%s') já existe neste produto.", v.Size, v.Color))
		}
		seen[pair] = true
	}

	// Invariante do agregado: com variantes, Stock == soma das variantes.
	product.RecomputeStock()
	product.IsActive = true
	product.LowStockNotified = false
	product.OutOfStockNotified = false
	now := time.Now().UTC()
	product.CreatedAt = now
	product.UpdatedAt = now

	createdProduct, err := s.repo.Save(ctx, product)
	if err != nil {
		s.logger.Error("Falha ao salvar produto no repositório.", err)
		if _, ok := err.(apperror.AppError); ok {
			return domain.Product{}, err
		}
		return domain.Product{}, apperror.NewInternalError("Falha interna ao criar produto.", err)
	}

	s.logger.Info("Produto criado com sucesso.", map[string]interface{}{
		"product_id": createdProduct.ID,
		"sku":        createdProduct.SKU,
		"variants":   len(createdProduct.Variants),
		"stock":      createdProduct.Stock,
	})
	return createdProduct, nil
}

// GetProductByID busca um produto pelo ID após validação de formato.
func (s *Service) GetProductByID(ctx context.Context, id int64) (domain.Product, error) {
	if id <= 0 {
		return domain.Product{}, apperror.NewValidationError("O ID do produto deve ser um inteiro positivo.")
	}

	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		// Erros do repositório já são NotFoundError ou DBError.
		return domain.Product{}, err
	}

	return product, nil
}
