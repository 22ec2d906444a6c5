package errors

import (
	"fmt"
	"net/http"
)

// AppError é a interface central para todos os erros customizados do
// modastock. Ela permite que o código externo (Handler) acesse a Categoria
// e a Mensagem do erro.
type AppError interface {
	Error() string    // Implementa a interface error padrão do Go
	Category() string // Categoria do erro (e.g., "VALIDATION", "NOT_FOUND", "INTERNAL")
	HTTPStatus() int  // Código HTTP sugerido para o Handler
	Unwrap() error    // Permite encapsular erros subjacentes (original error)
}

// --- Tipos de Erro Específicos (Erros de Domínio) ---

// ValidationError representa falhas de validação de dados de entrada
// (payload inválido: ids/quantidades não positivos, lote vazio, etc.).
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string    { return fmt.Sprintf("Erro de Validação: %s", e.Msg) }
func (e *ValidationError) Category() string { return "VALIDATION_ERROR" }
func (e *ValidationError) HTTPStatus() int  { return http.StatusBadRequest } // 400
func (e *ValidationError) Unwrap() error    { return nil }

// NewValidationError cria um novo erro de validação.
func NewValidationError(msg string) AppError {
	return &ValidationError{Msg: msg}
}

// NotFoundError representa a ausência de um recurso solicitado.
type NotFoundError struct {
	Msg string
}

func (e *NotFoundError) Error() string    { return fmt.Sprintf("Recurso não encontrado: %s", e.Msg) }
func (e *NotFoundError) Category() string { return "NOT_FOUND" }
func (e *NotFoundError) HTTPStatus() int  { return http.StatusNotFound } // 404
func (e *NotFoundError) Unwrap() error    { return nil }

// NewNotFoundError cria um novo erro de recurso não encontrado.
func NewNotFoundError(msg string) AppError {
	return &NotFoundError{Msg: msg}
}

// VariantNotFoundError indica que o par (tamanho, cor) pedido não existe no
// produto. É um descompasso entre chamador e catálogo, não uma condição
// transitória — em um decremento, aborta o lote inteiro.
type VariantNotFoundError struct {
	ItemIndex int
	ProductID int64
	Size      string
	Color     string
	Msg       string
}

func (e *VariantNotFoundError) Error() string    { return fmt.Sprintf("Variante não encontrada: %s", e.Msg) }
func (e *VariantNotFoundError) Category() string { return "VARIANT_NOT_FOUND" }
func (e *VariantNotFoundError) HTTPStatus() int  { return http.StatusNotFound } // 404
func (e *VariantNotFoundError) Unwrap() error    { return nil }

// NewVariantNotFoundError cria o erro com o contexto do item que falhou.
func NewVariantNotFoundError(itemIndex int, productID int64, size, color, msg string) AppError {
	return &VariantNotFoundError{ItemIndex: itemIndex, ProductID: productID, Size: size, Color: color, Msg: msg}
}

// InsufficientStockError indica que o decremento deixaria o contador
// negativo. Frequente e esperado sob concorrência — não é um bug. Carrega
// o pedido vs. disponível para a mensagem voltada ao usuário.
type InsufficientStockError struct {
	ItemIndex   int
	ProductID   int64
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("Estoque insuficiente: produto '%s' (item %d): pedido %d, disponível %d",
		e.ProductName, e.ItemIndex, e.Requested, e.Available)
}
func (e *InsufficientStockError) Category() string { return "INSUFFICIENT_STOCK" }
func (e *InsufficientStockError) HTTPStatus() int  { return http.StatusConflict } // 409
func (e *InsufficientStockError) Unwrap() error    { return nil }

// NewInsufficientStockError cria o erro com o contexto do item que falhou.
func NewInsufficientStockError(itemIndex int, productID int64, productName string, requested, available int) AppError {
	return &InsufficientStockError{
		ItemIndex:   itemIndex,
		ProductID:   productID,
		ProductName: productName,
		Requested:   requested,
		Available:   available,
	}
}

// ConflictError representa um conflito na regra de negócio (e.g., operação
// já aplicada, recurso duplicado).
type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string    { return fmt.Sprintf("Conflito de estado: %s", e.Msg) }
func (e *ConflictError) Category() string { return "CONFLICT" }
func (e *ConflictError) HTTPStatus() int  { return http.StatusConflict } // 409
func (e *ConflictError) Unwrap() error    { return nil }

// NewConflictError cria um novo erro de conflito.
func NewConflictError(msg string) AppError {
	return &ConflictError{Msg: msg}
}

// UnauthorizedError representa falhas de autenticação/autorização.
type UnauthorizedError struct {
	Msg string
}

func (e *UnauthorizedError) Error() string    { return fmt.Sprintf("Não autorizado: %s", e.Msg) }
func (e *UnauthorizedError) Category() string { return "UNAUTHORIZED" }
func (e *UnauthorizedError) HTTPStatus() int  { return http.StatusUnauthorized } // 401
func (e *UnauthorizedError) Unwrap() error    { return nil }

// NewUnauthorizedError cria um novo erro de autenticação.
func NewUnauthorizedError(msg string) AppError {
	return &UnauthorizedError{Msg: msg}
}

// --- Tipos de Erro de Infraestrutura (Encapsulamento) ---

// InternalError representa falhas inesperadas no servidor, serviço ou repositório.
type InternalError struct {
	Msg string
	Err error // Erro original subjacente (e.g., erro do driver SQL)
}

func (e *InternalError) Error() string    { return fmt.Sprintf("Erro Interno: %s", e.Msg) }
func (e *InternalError) Category() string { return "INTERNAL_ERROR" }
func (e *InternalError) HTTPStatus() int  { return http.StatusInternalServerError } // 500
func (e *InternalError) Unwrap() error    { return e.Err }

// NewInternalError cria um erro de servidor (para falhas de lógica ou código não esperado).
func NewInternalError(msg string, err error) AppError {
	return &InternalError{Msg: msg, Err: err}
}

// NewDBError é um atalho para criar um InternalError específico de falhas no DB.
func NewDBError(msg string, err error) AppError {
	return NewInternalError(fmt.Sprintf("%s (DB): %s", msg, err.Error()), err)
}

// --- Helper para o Handler (Tradução Final) ---

// MapToHTTPStatus recebe um erro e o traduz para o código HTTP e corpo de resposta.
func MapToHTTPStatus(err error) (int, string, string) {
	if appErr, ok := err.(AppError); ok {
		return appErr.HTTPStatus(), appErr.Category(), appErr.Error()
	}

	// Erro não tipado: tratar como erro interno genérico.
	return http.StatusInternalServerError, "UNKNOWN_ERROR", "Ocorreu um erro inesperado."
}
