package inventoryservice_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"modastock/internal/domain"
	apperror "modastock/internal/errors"
	"modastock/internal/pkg/logger"
	"modastock/internal/service/inventoryservice"
)

// MockInventoryRepository é uma implementação mock da interface InventoryRepository
type MockInventoryRepository struct {
	mock.Mock
}

func (m *MockInventoryRepository) ApplyMutation(ctx context.Context, operationID string, batch []domain.StockMutationRequest, direction domain.MutationDirection) (*domain.MutationResult, error) {
	args := m.Called(ctx, operationID, batch, direction)
	if result := args.Get(0); result != nil {
		return result.(*domain.MutationResult), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockNotifier é uma implementação mock da interface Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyStockAlerts(ctx context.Context, alerts []domain.StockAlert) error {
	args := m.Called(ctx, alerts)
	return args.Error(0)
}

func lotePadrao() domain.StockBatchRequest {
	return domain.StockBatchRequest{
		Items: []domain.StockMutationRequest{
			{ProductID: 1, Quantity: 2, Size: "M", Color: "Black"},
			{ProductID: 2, Quantity: 1},
		},
	}
}

// TestDecrement_Success testa a baixa de um lote válido sem alertas.
func TestDecrement_Success(t *testing.T) {
	mockRepo := new(MockInventoryRepository)
	mockNotifier := new(MockNotifier)
	mockLogger := logger.NewLogger("debug")

	svc := inventoryservice.NewService(mockRepo, mockNotifier, mockLogger)

	batch := lotePadrao()
	expected := &domain.MutationResult{
		UpdatedProducts: []domain.StockUpdate{
			{ProductID: 1, Stock: 10},
			{ProductID: 2, Stock: 7},
		},
	}

	mockRepo.On("ApplyMutation", mock.AnythingOfType("context.backgroundCtx"), "", batch.Items, domain.DirectionDecrement).
		Return(expected, nil)

	result, err := svc.Decrement(context.Background(), batch)

	assert.NoError(t, err)
	assert.Equal(t, expected, result)
	mockNotifier.AssertNotCalled(t, "NotifyStockAlerts", mock.Anything, mock.Anything)
	mockRepo.AssertExpectations(t)
}

// TestDecrement_ForwardsAlertsToNotifier testa que os alertas emitidos pelo
// lote são repassados ao Notifier após o sucesso.
func TestDecrement_ForwardsAlertsToNotifier(t *testing.T) {
	mockRepo := new(MockInventoryRepository)
	mockNotifier := new(MockNotifier)
	mockLogger := logger.NewLogger("debug")

	svc := inventoryservice.NewService(mockRepo, mockNotifier, mockLogger)

	batch := lotePadrao()
	alerts := []domain.StockAlert{
		{Type: domain.AlertLowStock, ProductID: 1, Name: "Camisa Slim", Stock: 3},
	}
	expected := &domain.MutationResult{
		UpdatedProducts: []domain.StockUpdate{{ProductID: 1, Stock: 3}},
		Alerts:          alerts,
	}

	mockRepo.On("ApplyMutation", mock.AnythingOfType("context.backgroundCtx"), "", batch.Items, domain.DirectionDecrement).
		Return(expected, nil)
	mockNotifier.On("NotifyStockAlerts", mock.AnythingOfType("context.backgroundCtx"), alerts).
		Return(nil)

	result, err := svc.Decrement(context.Background(), batch)

	assert.NoError(t, err)
	assert.Equal(t, alerts, result.Alerts)
	mockRepo.AssertExpectations(t)
	mockNotifier.AssertExpectations(t)
}

// TestDecrement_NotifierFailureDoesNotFailBatch testa que falha na entrega
// dos alertas não desfaz um lote já aplicado.
func TestDecrement_NotifierFailureDoesNotFailBatch(t *testing.T) {
	mockRepo := new(MockInventoryRepository)
	mockNotifier := new(MockNotifier)
	mockLogger := logger.NewLogger("debug")

	svc := inventoryservice.NewService(mockRepo, mockNotifier, mockLogger)

	batch := lotePadrao()
	expected := &domain.MutationResult{
		UpdatedProducts: []domain.StockUpdate{{ProductID: 1, Stock: 0}},
		Alerts: []domain.StockAlert{
			{Type: domain.AlertOutOfStock, ProductID: 1, Name: "Camisa Slim", Stock: 0},
		},
	}

	mockRepo.On("ApplyMutation", mock.AnythingOfType("context.backgroundCtx"), "", batch.Items, domain.DirectionDecrement).
		Return(expected, nil)
	mockNotifier.On("NotifyStockAlerts", mock.AnythingOfType("context.backgroundCtx"), expected.Alerts).
		Return(errors.New("redis indisponível"))

	result, err := svc.Decrement(context.Background(), batch)

	assert.NoError(t, err)
	assert.Equal(t, expected, result)
	mockNotifier.AssertExpectations(t)
}

// TestDecrement_Fail_EmptyBatch testa a rejeição do lote vazio sem tocar o
// repositório.
func TestDecrement_Fail_EmptyBatch(t *testing.T) {
	mockRepo := new(MockInventoryRepository)
	mockNotifier := new(MockNotifier)
	mockLogger := logger.NewLogger("debug")

	svc := inventoryservice.NewService(mockRepo, mockNotifier, mockLogger)

	_, err := svc.Decrement(context.Background(), domain.StockBatchRequest{})

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	assert.Contains(t, err.Error(), "vazio")
	mockRepo.AssertNotCalled(t, "ApplyMutation", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// TestDecrement_Fail_InvalidPayload testa ids e quantidades não positivos.
func TestDecrement_Fail_InvalidPayload(t *testing.T) {
	mockRepo := new(MockInventoryRepository)
	mockNotifier := new(MockNotifier)
	mockLogger := logger.NewLogger("debug")

	svc := inventoryservice.NewService(mockRepo, mockNotifier, mockLogger)

	casos := []domain.StockBatchRequest{
		{Items: []domain.StockMutationRequest{{ProductID: 0, Quantity: 1}}},
		{Items: []domain.StockMutationRequest{{ProductID: 1, Quantity: 0}}},
		{Items: []domain.StockMutationRequest{{ProductID: 1, Quantity: -2}}},
	}

	for _, batch := range casos {
		_, err := svc.Decrement(context.Background(), batch)
		assert.Error(t, err)
		assert.IsType(t, &apperror.ValidationError{}, err)
	}
	mockRepo.AssertNotCalled(t, "ApplyMutation", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// TestDecrement_Fail_InvalidOperationID testa o operation_id malformado.
func TestDecrement_Fail_InvalidOperationID(t *testing.T) {
	mockRepo := new(MockInventoryRepository)
	mockNotifier := new(MockNotifier)
	mockLogger := logger.NewLogger("debug")

	svc := inventoryservice.NewService(mockRepo, mockNotifier, mockLogger)

	batch := lotePadrao()
	batch.OperationID = "nao-e-um-uuid"

	_, err := svc.Decrement(context.Background(), batch)

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	assert.Contains(t, err.Error(), "operation_id")
	mockRepo.AssertNotCalled(t, "ApplyMutation", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// TestDecrement_Fail_InsufficientStock testa a tradução do erro de item do
// lote para o erro tipado de estoque insuficiente (HTTP 409).
func TestDecrement_Fail_InsufficientStock(t *testing.T) {
	mockRepo := new(MockInventoryRepository)
	mockNotifier := new(MockNotifier)
	mockLogger := logger.NewLogger("debug")

	svc := inventoryservice.NewService(mockRepo, mockNotifier, mockLogger)

	batch := lotePadrao()
	itemErr := &domain.BatchItemError{
		Index:       1,
		ProductID:   2,
		ProductName: "Cinto Couro",
		Requested:   5,
		Available:   1,
		Reason:      domain.ErrInsufficientStock,
	}

	mockRepo.On("ApplyMutation", mock.AnythingOfType("context.backgroundCtx"), "", batch.Items, domain.DirectionDecrement).
		Return(nil, itemErr)

	_, err := svc.Decrement(context.Background(), batch)

	assert.Error(t, err)
	var stockErr *apperror.InsufficientStockError
	assert.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 1, stockErr.ItemIndex)
	assert.Equal(t, 5, stockErr.Requested)
	assert.Equal(t, 1, stockErr.Available)
	mockNotifier.AssertNotCalled(t, "NotifyStockAlerts", mock.Anything, mock.Anything)
}

// TestDecrement_Fail_VariantNotFound testa a tradução do par (tamanho, cor)
// inexistente para o erro tipado (HTTP 404).
func TestDecrement_Fail_VariantNotFound(t *testing.T) {
	mockRepo := new(MockInventoryRepository)
	mockNotifier := new(MockNotifier)
	mockLogger := logger.NewLogger("debug")

	svc := inventoryservice.NewService(mockRepo, mockNotifier, mockLogger)

	batch := lotePadrao()
	itemErr := &domain.BatchItemError{
		Index:       0,
		ProductID:   1,
		ProductName: "Camisa Slim",
		Size:        "XL",
		Color:       "White",
		Reason:      domain.ErrVariantNotFound,
	}

	mockRepo.On("ApplyMutation", mock.AnythingOfType("context.backgroundCtx"), "", batch.Items, domain.DirectionDecrement).
		Return(nil, itemErr)

	_, err := svc.Decrement(context.Background(), batch)

	assert.Error(t, err)
	var variantErr *apperror.VariantNotFoundError
	assert.ErrorAs(t, err, &variantErr)
	assert.Equal(t, "XL", variantErr.Size)
	assert.Equal(t, "White", variantErr.Color)
}

// TestDecrement_Fail_ProductNotFound testa a tradução do produto inexistente.
func TestDecrement_Fail_ProductNotFound(t *testing.T) {
	mockRepo := new(MockInventoryRepository)
	mockNotifier := new(MockNotifier)
	mockLogger := logger.NewLogger("debug")

	svc := inventoryservice.NewService(mockRepo, mockNotifier, mockLogger)

	batch := lotePadrao()
	itemErr := &domain.BatchItemError{Index: 0, ProductID: 99, Reason: domain.ErrProductNotFound}

	mockRepo.On("ApplyMutation", mock.AnythingOfType("context.backgroundCtx"), "", batch.Items, domain.DirectionDecrement).
		Return(nil, itemErr)

	_, err := svc.Decrement(context.Background(), batch)

	assert.Error(t, err)
	assert.IsType(t, &apperror.NotFoundError{}, err)
}

// TestDecrement_Fail_DuplicateOperation testa que o conflito de idempotência
// do repositório passa direto (já é um erro tipado).
func TestDecrement_Fail_DuplicateOperation(t *testing.T) {
	mockRepo := new(MockInventoryRepository)
	mockNotifier := new(MockNotifier)
	mockLogger := logger.NewLogger("debug")

	svc := inventoryservice.NewService(mockRepo, mockNotifier, mockLogger)

	batch := lotePadrao()
	batch.OperationID = uuid.New().String()

	mockRepo.On("ApplyMutation", mock.AnythingOfType("context.backgroundCtx"), batch.OperationID, batch.Items, domain.DirectionDecrement).
		Return(nil, apperror.NewConflictError("Esta operação já foi aplicada."))

	_, err := svc.Decrement(context.Background(), batch)

	assert.Error(t, err)
	assert.IsType(t, &apperror.ConflictError{}, err)
	assert.Contains(t, err.Error(), "já foi aplicada")
}

// TestDecrement_Fail_InternalError testa que erros não tipados do
// repositório viram InternalError.
func TestDecrement_Fail_InternalError(t *testing.T) {
	mockRepo := new(MockInventoryRepository)
	mockNotifier := new(MockNotifier)
	mockLogger := logger.NewLogger("debug")

	svc := inventoryservice.NewService(mockRepo, mockNotifier, mockLogger)

	batch := lotePadrao()
	mockRepo.On("ApplyMutation", mock.AnythingOfType("context.backgroundCtx"), "", batch.Items, domain.DirectionDecrement).
		Return(nil, errors.New("falha de conexão com o DB"))

	_, err := svc.Decrement(context.Background(), batch)

	assert.Error(t, err)
	assert.IsType(t, &apperror.InternalError{}, err)
}

// TestIncrement_Success testa a devolução de estoque na direção correta.
func TestIncrement_Success(t *testing.T) {
	mockRepo := new(MockInventoryRepository)
	mockNotifier := new(MockNotifier)
	mockLogger := logger.NewLogger("debug")

	svc := inventoryservice.NewService(mockRepo, mockNotifier, mockLogger)

	batch := lotePadrao()
	expected := &domain.MutationResult{
		UpdatedProducts: []domain.StockUpdate{
			{ProductID: 1, Stock: 12},
			{ProductID: 2, Stock: 9},
		},
	}

	mockRepo.On("ApplyMutation", mock.AnythingOfType("context.backgroundCtx"), "", batch.Items, domain.DirectionIncrement).
		Return(expected, nil)

	result, err := svc.Increment(context.Background(), batch)

	assert.NoError(t, err)
	assert.Equal(t, expected, result)
	mockRepo.AssertExpectations(t)
}
