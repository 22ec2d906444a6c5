package inventoryservice

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"modastock/internal/domain"
	apperror "modastock/internal/errors"
	"modastock/internal/pkg/logger"
	"modastock/internal/pkg/notifier"
)

// InventoryRepository define o contrato que o Serviço de Estoque espera da
// camada de Persistência: aplicar um lote como unidade atômica.
type InventoryRepository interface {
	ApplyMutation(ctx context.Context, operationID string, batch []domain.StockMutationRequest, direction domain.MutationDirection) (*domain.MutationResult, error)
}

// Service orquestra o motor de mutação de estoque: valida o payload,
// delega a transação ao repositório, traduz os erros do lote e repassa os
// alertas emitidos ao Notifier.
type Service struct {
	repo     InventoryRepository
	notifier notifier.Notifier
	logger   logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Estoque.
func NewService(repo InventoryRepository, n notifier.Notifier, logger logger.Logger) *Service {
	return &Service{repo: repo, notifier: n, logger: logger}
}

// Decrement aplica a baixa de estoque de um pedido confirmado.
// Qualquer item inválido aborta o lote inteiro (rollback total).
func (s *Service) Decrement(ctx context.Context, batch domain.StockBatchRequest) (*domain.MutationResult, error) {
	return s.apply(ctx, batch, domain.DirectionDecrement)
}

// Increment devolve o estoque de um pedido cancelado/devolvido.
// Best-effort: itens de produtos que deixaram de existir são pulados.
func (s *Service) Increment(ctx context.Context, batch domain.StockBatchRequest) (*domain.MutationResult, error) {
	return s.apply(ctx, batch, domain.DirectionIncrement)
}

func (s *Service) apply(ctx context.Context, batch domain.StockBatchRequest, direction domain.MutationDirection) (*domain.MutationResult, error) {
	s.logger.Debug("Iniciando mutação de estoque no serviço.", map[string]interface{}{
		"items":        len(batch.Items),
		"operation_id": batch.OperationID,
	})

	if err := validateBatch(batch); err != nil {
		s.logger.Warn("Lote de mutação rejeitado na validação.", map[string]interface{}{"error": err.Error()})
		return nil, err
	}

	result, err := s.repo.ApplyMutation(ctx, batch.OperationID, batch.Items, direction)
	if err != nil {
		return nil, s.translateError(err)
	}

	// Os alertas seguem para o Notifier depois do commit. Falha de entrega
	// não desfaz o lote: o estoque já mudou, e é isso que o chamador vê.
	if len(result.Alerts) > 0 {
		if notifyErr := s.notifier.NotifyStockAlerts(ctx, result.Alerts); notifyErr != nil {
			s.logger.Error("Falha ao repassar alertas de estoque ao Notifier.", notifyErr)
		}
	}

	s.logger.Info("Mutação de estoque concluída.", map[string]interface{}{
		"products": len(result.UpdatedProducts),
		"alerts":   len(result.Alerts),
	})
	return result, nil
}

// validateBatch rejeita payloads malformados antes de tocar o storage.
func validateBatch(batch domain.StockBatchRequest) error {
	if len(batch.Items) == 0 {
		return apperror.NewValidationError("O lote de mutação não pode ser vazio.")
	}
	if batch.OperationID != "" {
		if _, err := uuid.Parse(batch.OperationID); err != nil {
			return apperror.NewValidationError("O operation_id deve ser um UUID válido.")
		}
	}
	for i, item := range batch.Items {
		if item.ProductID <= 0 {
			return apperror.NewValidationError(fmt.Sprintf("Item %d: product_id deve ser um inteiro positivo.", i))
		}
		if item.Quantity <= 0 {
			return apperror.NewValidationError(fmt.Sprintf("Item %d: quantity deve ser um inteiro positivo.", i))
		}
	}
	return nil
}

// translateError converte os erros do lote (domínio) nos erros tipados da
// aplicação. Erros já tipados (DB, conflito de idempotência) passam direto.
func (s *Service) translateError(err error) error {
	var itemErr *domain.BatchItemError
	if errors.As(err, &itemErr) {
		switch {
		case errors.Is(itemErr.Reason, domain.ErrInsufficientStock):
			s.logger.Info("Lote abortado por estoque insuficiente.", map[string]interface{}{
				"item":       itemErr.Index,
				"product_id": itemErr.ProductID,
				"requested":  itemErr.Requested,
				"available":  itemErr.Available,
			})
			return apperror.NewInsufficientStockError(itemErr.Index, itemErr.ProductID, itemErr.ProductName, itemErr.Requested, itemErr.Available)
		case errors.Is(itemErr.Reason, domain.ErrVariantNotFound):
			return apperror.NewVariantNotFoundError(itemErr.Index, itemErr.ProductID, itemErr.Size, itemErr.Color, itemErr.Error())
		case errors.Is(itemErr.Reason, domain.ErrProductNotFound):
			return apperror.NewNotFoundError(itemErr.Error())
		}
		return apperror.NewInternalError("Falha inesperada no lote de mutação.", itemErr)
	}

	if _, ok := err.(apperror.AppError); ok {
		return err
	}

	s.logger.Error("Falha interna ao aplicar mutação de estoque.", err)
	return apperror.NewInternalError("Falha interna ao aplicar mutação de estoque.", err)
}
