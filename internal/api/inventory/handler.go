package inventory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"modastock/internal/domain"
	apperror "modastock/internal/errors"
	"modastock/internal/pkg/logger"
)

// InventoryService define o contrato que o Handler espera da camada de Serviço.
type InventoryService interface {
	Decrement(ctx context.Context, batch domain.StockBatchRequest) (*domain.MutationResult, error)
	Increment(ctx context.Context, batch domain.StockBatchRequest) (*domain.MutationResult, error)
}

// Handler agrupa os endpoints de mutação de estoque chamados pelo
// subsistema de Pedidos (confirmação, cancelamento, devolução).
type Handler struct {
	Service InventoryService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc InventoryService, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Logger:  log,
	}
}

// handleServiceResponse processa erros de serviço e envia respostas padronizadas ao cliente.
func (h *Handler) handleServiceResponse(w http.ResponseWriter, r *http.Request, data interface{}, err error, successStatus int) {
	if err == nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(successStatus)
		if data != nil {
			if jsonErr := json.NewEncoder(w).Encode(data); jsonErr != nil {
				h.Logger.Error("Falha ao codificar JSON de resposta", jsonErr)
				http.Error(w, "Erro ao codificar resposta", http.StatusInternalServerError)
			}
		}
		return
	}

	status, category, message := apperror.MapToHTTPStatus(err)

	if status >= 500 {
		h.Logger.Error(fmt.Sprintf("Erro de Servidor: %s", category), err)
	} else {
		h.Logger.Debug(fmt.Sprintf("Requisição rejeitada com status %d. Categoria: %s", status, category), map[string]interface{}{"path": r.URL.Path})
	}

	errorResponse := domain.ErrorResponse{
		Code:     status,
		Category: category,
		Message:  message,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse)
}

// DecrementHandler lida com POST /v1/stock/decrement: baixa de estoque de
// um pedido confirmado, lote inteiro ou nada.
func (h *Handler) DecrementHandler(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.Service.Decrement)
}

// IncrementHandler lida com POST /v1/stock/increment: devolução de estoque
// de um pedido cancelado/devolvido (best-effort).
func (h *Handler) IncrementHandler(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.Service.Increment)
}

func (h *Handler) mutate(w http.ResponseWriter, r *http.Request, op func(context.Context, domain.StockBatchRequest) (*domain.MutationResult, error)) {
	if r.Method != http.MethodPost {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()

	var batch domain.StockBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&batch); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), http.StatusBadRequest)
		return
	}

	result, err := op(ctx, batch)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	h.handleServiceResponse(w, r, result, nil, http.StatusOK)
}
