package router

import (
	"net/http"
	"time"

	"modastock/internal/api/inventory"
	"modastock/internal/api/product"
	"modastock/internal/api/user"
	"modastock/internal/domain"
	"modastock/internal/pkg/cache"
	"modastock/internal/pkg/middleware"
	"modastock/internal/pkg/token"
)

// NewRouter configura e retorna o roteador HTTP principal.
// Recebe os Handlers já inicializados por injeção de dependências.
func NewRouter(
	inventoryHandler *inventory.Handler,
	productHandler *product.Handler,
	userHandler *user.Handler,
	tokenSvc token.TokenService,
	cacheClient cache.Client,
	rateLimitMax int,
	rateLimitPeriod time.Duration,
) http.Handler {

	// Usamos o ServeMux padrão do net/http para roteamento
	// Em projetos maiores, pode-se usar um mux de terceiros (e.g., gorilla/mux, chi)
	mux := http.NewServeMux()

	auth := middleware.NewAuthMiddleware(tokenSvc)
	// Mutação de estoque: apenas o serviço de Pedidos e administradores.
	mutationOnly := middleware.PermissionMiddleware(domain.RoleAdmin, domain.RoleService)
	adminOnly := middleware.PermissionMiddleware(domain.RoleAdmin)

	// --- 1. Rotas de Health Check ---
	mux.HandleFunc("/ping", PingHandler)

	// --- 2. Rotas de Autenticação ---
	mux.HandleFunc("/v1/register", userHandler.RegisterUserHandler)
	mux.HandleFunc("/v1/login", userHandler.LoginUserHandler)

	// --- 3. Rotas do Motor de Mutação de Estoque ---
	// POST /v1/stock/decrement (confirmação de pedido)
	mux.HandleFunc("/v1/stock/decrement", auth(mutationOnly(inventoryHandler.DecrementHandler)))
	// POST /v1/stock/increment (cancelamento/devolução)
	mux.HandleFunc("/v1/stock/increment", auth(mutationOnly(inventoryHandler.IncrementHandler)))

	// --- 4. Rotas do Catálogo (v1) ---
	// POST /v1/products (Criar Produto com variantes)
	mux.HandleFunc("/v1/products", auth(adminOnly(productHandler.CreateProductHandler)))
	// GET /v1/products/{id} (Buscar Produto por ID)
	mux.HandleFunc("/v1/products/", productHandler.GetProductByIDHandler)

	// --- 5. Middlewares Globais ---
	return middleware.RateLimiter(cacheClient, rateLimitMax, rateLimitPeriod)(mux)
}

// PingHandler é uma função utilitária para o health check.
func PingHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}
