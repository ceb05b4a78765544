package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"invoiceflow/internal/api"
	"invoiceflow/internal/api/handlers"
	"invoiceflow/internal/browser"
	"invoiceflow/internal/llm"
	"invoiceflow/internal/repository"
	"invoiceflow/internal/service"
	"invoiceflow/pkg/auth"
	"invoiceflow/pkg/config"
	"invoiceflow/pkg/logger"
	"invoiceflow/pkg/postgres"
	"invoiceflow/pkg/secrets"

	stripeclient "github.com/stripe/stripe-go/v79/client"
	"go.uber.org/zap"
)

// @title InvoiceFlow API
// @version 1.0
// @description Invoice management service: document extraction, anomaly detection, payments and portal automation

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	if err := logger.Init(cfg.Logger.Level); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()
	appLogger.Info("Starting InvoiceFlow service")

	// Initialize database
	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Initialize repositories
	userRepo := repository.NewUserRepository(db, appLogger)
	invoiceRepo := repository.NewInvoiceRepository(db, appLogger)
	paymentRepo := repository.NewPaymentRepository(db, appLogger)
	reminderRepo := repository.NewReminderRepository(db, appLogger)
	connectionRepo := repository.NewConnectionRepository(db, appLogger)

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(cfg.JWT.SecretKey, cfg.JWT.Expiration, cfg.JWT.RefreshExp)

	// Credentials cipher
	cipher, err := secrets.NewCipher(cfg.Secrets.CredentialsKey)
	if err != nil {
		appLogger.Fatal("Failed to initialize credentials cipher", zap.Error(err))
	}

	// LLM client
	llmClient, err := llm.NewOpenAIClient(&cfg.OpenAI)
	if err != nil {
		appLogger.Fatal("Failed to initialize LLM client", zap.Error(err))
	}

	// Stripe client
	sc := &stripeclient.API{}
	sc.Init(cfg.Stripe.SecretKey, nil)

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtManager, appLogger)
	extractionService := service.NewExtractionService(llmClient, appLogger)
	anomalyService := service.NewAnomalyService(invoiceRepo, llmClient, appLogger)
	emailService := service.NewEmailService(llmClient, appLogger)

	uploadDir := "uploads"
	invoiceService := service.NewInvoiceService(invoiceRepo, extractionService, uploadDir, appLogger)
	paymentService := service.NewPaymentService(sc.PaymentIntents, invoiceRepo, paymentRepo, reminderRepo, appLogger)
	connectionService := service.NewConnectionService(connectionRepo, cipher, appLogger)

	// Browser automation
	sessionClient := browser.NewSessionClient(&cfg.Browser)
	driver := browser.NewDriver(sessionClient, connectionService, &cfg.Browser, appLogger)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, appLogger)
	invoiceHandler := handlers.NewInvoiceHandler(invoiceService, appLogger)
	paymentHandler := handlers.NewPaymentHandler(paymentService, appLogger)
	connectionHandler := handlers.NewConnectionHandler(connectionService, appLogger)
	automationHandler := handlers.NewAutomationHandler(driver, invoiceService, appLogger)
	agentHandler := handlers.NewAgentHandler(invoiceService, anomalyService, emailService, appLogger)

	// Setup router
	app := api.SetupRouter(
		authHandler,
		invoiceHandler,
		paymentHandler,
		connectionHandler,
		automationHandler,
		agentHandler,
		jwtManager,
		appLogger,
	)

	// Start server
	go func() {
		addr := ":" + cfg.Server.Port
		appLogger.Info("Server starting", zap.String("address", addr))
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	if err := app.Shutdown(); err != nil {
		appLogger.Error("Server shutdown error", zap.Error(err))
	}
}
