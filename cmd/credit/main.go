// cmd/credit/main.go
package main

import (
	"log"

	"credit-service/internal/api/handlers"
	"credit-service/internal/api/responses"
	"credit-service/internal/config"
	"credit-service/internal/core/credit"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatal("Falha ao carregar configuração: ", err)
	}

	logger := responses.InitLogger(cfg.Log.Level, cfg.Log.Development)
	defer logger.Sync()

	// valores monetários saem como números no JSON
	decimal.MarshalJSONWithoutQuotes = true

	gin.SetMode(cfg.Server.Mode)

	creditService := credit.NewService(cfg, logger)
	creditHandler := handlers.NewCreditHandler(creditService, cfg.Server.MaxUploadMB<<20)

	router := gin.Default()

	apiV1 := router.Group("/api/v1")
	{
		// Sem Middleware -- Gateway lida com isso
		creditHandler.Register(apiV1)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP", "service": "credit-service"})
	})

	port := cfg.Server.Port
	logger.Info("Credit Service iniciado", zap.String("port", port))
	log.Printf("🚀 Credit Service (Go) iniciado e escutando na porta %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Falha ao iniciar o servidor de crédito: ", err)
	}
}
