package main

import (
	"context"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	// Nossos pacotes de infraestrutura e utilitários
	"modastock/config"
	"modastock/internal/pkg/cache"
	"modastock/internal/pkg/database"
	"modastock/internal/pkg/logger"
	"modastock/internal/pkg/notifier"
	"modastock/internal/pkg/token"

	// Camadas para Injeção de Dependências
	"modastock/internal/api/inventory"
	"modastock/internal/api/product"
	"modastock/internal/api/router"
	"modastock/internal/api/user"
	"modastock/internal/repository/inventoryrepo"
	"modastock/internal/repository/productrepo"
	"modastock/internal/repository/userrepo"
	"modastock/internal/service/inventoryservice"
	"modastock/internal/service/productservice"
	"modastock/internal/service/userservice"
)

func main() {
	// 1. Configuração e Inicialização
	stdlog.Println("⚡ Inicializando serviço modastock...")

	// O godotenv.Load() procura por um arquivo chamado .env na raiz.
	if err := godotenv.Load(); err != nil {
		// Sem .env seguimos em frente: as variáveis essenciais podem
		// estar no ambiente do sistema (ex: Docker).
		stdlog.Println("⚠️ Aviso: Arquivo .env não encontrado ou erro de leitura. Carregando configs apenas do ambiente do sistema.")
	}

	cfg := config.LoadConfig()
	log := logger.NewLogger(cfg.LogLevel)
	log.Info("Configurações carregadas.", nil)

	// 2. Conexão com Recursos de Infraestrutura

	// A. Banco de Dados (PostgreSQL)
	db, err := database.NewPostgresDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Falha ao conectar ao banco de dados.", err)
	}
	defer db.Close()
	log.Info("Conexão PostgreSQL estabelecida.", nil)

	// B. Cache (Redis)
	cacheClient := cache.NewRedisClient(cfg.RedisAddr)
	log.Info("Conexão Redis estabelecida.", nil)

	// C. Notifier de alertas de estoque (canal Pub/Sub no mesmo Redis)
	alertNotifier := notifier.NewRedisNotifier(cfg.RedisAddr, cfg.AlertChannel)
	log.Info("Notifier de alertas de estoque inicializado.", map[string]interface{}{"channel": cfg.AlertChannel})

	// 3. INJEÇÃO DE DEPENDÊNCIAS
	// Ordem: Repository -> Service -> Handler

	// A. Motor de Mutação de Estoque (o núcleo do serviço)
	inventoryRepo := inventoryrepo.NewInventoryRepository(db, cacheClient, cfg.DBTimeout, log)
	inventorySvc := inventoryservice.NewService(inventoryRepo, alertNotifier, log)
	inventoryHandler := inventory.NewHandler(inventorySvc, log)
	log.Debug("Motor de mutação de estoque inicializado.", nil)

	// B. Catálogo (suporte: cria e lê as linhas que o motor opera)
	productRepo := productrepo.NewProductRepository(db, cacheClient, cfg.DBTimeout, log)
	productSvc := productservice.NewService(productRepo, log)
	productHandler := product.NewHandler(productSvc, log)
	log.Debug("Camadas de Produto inicializadas.", nil)

	// C. Autenticação (JWT)
	tokenSvc := token.NewService(cfg.JWTSecretKey, cfg.TokenExpiry)
	userRepo := userrepo.NewUserRepository(db, cfg.DBTimeout, log)
	userSvc := userservice.NewService(userRepo, tokenSvc)
	userHandler := user.NewHandler(userSvc, log)
	log.Debug("Camadas de Usuário/Autenticação inicializadas.", nil)

	// 4. Configuração e Início do Roteador/Servidor
	r := router.NewRouter(inventoryHandler, productHandler, userHandler, tokenSvc, cacheClient, cfg.RateLimitMaxRequests, cfg.RateLimitPeriod)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 5. Execução e Graceful Shutdown
	go func() {
		log.Info("Servidor modastock ouvindo.", map[string]interface{}{"port": cfg.Port})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Servidor falhou.", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Info("Sinal de encerramento recebido. Desligando servidor...", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Desligamento do servidor forçado.", err)
	}

	log.Info("Servidor encerrado com sucesso.", nil)
}
