package api

import (
	"invoiceflow/internal/api/handlers"
	"invoiceflow/pkg/auth"
	"invoiceflow/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

func SetupRouter(
	authHandler *handlers.AuthHandler,
	invoiceHandler *handlers.InvoiceHandler,
	paymentHandler *handlers.PaymentHandler,
	connectionHandler *handlers.ConnectionHandler,
	automationHandler *handlers.AutomationHandler,
	agentHandler *handlers.AgentHandler,
	jwtManager *auth.JWTManager,
	appLogger *zap.Logger,
) *fiber.App {
	app := fiber.New(fiber.Config{
		BodyLimit: 20 * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))
	app.Use(logger.New())

	// Public agent routes
	agent := app.Group("/api/agent")
	agent.Post("/process-invoice", agentHandler.ProcessInvoice)
	agent.Post("/detect-anomaly", agentHandler.DetectAnomalies)
	agent.Post("/email-reminder", agentHandler.GenerateEmailReminder)

	// Auth routes (public)
	authGroup := app.Group("/user/auth")
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/refresh", authHandler.RefreshToken)

	// Protected routes
	protected := app.Group("/api/v1", middleware.AuthMiddleware(jwtManager, appLogger))

	invoices := protected.Group("/invoices")
	invoices.Post("/upload", invoiceHandler.UploadInvoice)
	invoices.Get("", invoiceHandler.ListInvoices)
	invoices.Post("", invoiceHandler.CreateInvoice)
	invoices.Get("/:id", invoiceHandler.GetInvoice)
	invoices.Put("/:id/status", invoiceHandler.UpdateInvoiceStatus)

	payments := protected.Group("/payments")
	payments.Post("/process", paymentHandler.ProcessPayment)
	payments.Post("/reminders", paymentHandler.ScheduleReminder)
	payments.Get("/report", paymentHandler.PaymentReport)

	connections := protected.Group("/connections")
	connections.Put("", connectionHandler.UpsertConnection)
	connections.Get("", connectionHandler.ListConnections)
	connections.Delete("/:provider", connectionHandler.DeleteConnection)

	automation := protected.Group("/automation")
	automation.Post("/import/:provider", automationHandler.ImportDocuments)
	automation.Post("/export/:provider", automationHandler.ExportInvoice)

	return app
}
