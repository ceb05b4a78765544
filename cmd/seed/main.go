package main

import (
	"context"
	"log"
	"time"

	"invoiceflow/internal/models"
	"invoiceflow/internal/repository"
	"invoiceflow/pkg/auth"
	"invoiceflow/pkg/config"
	"invoiceflow/pkg/logger"
	"invoiceflow/pkg/postgres"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	demoEmail    = "demo@invoiceflow.local"
	demoPassword = "demo-password"
)

// Seeds a demo user with enough invoice history for the anomaly detector
// to have a baseline.
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logger.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	appLogger := logger.Get()

	// Connect to database
	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	userRepo := repository.NewUserRepository(db, appLogger)
	invoiceRepo := repository.NewInvoiceRepository(db, appLogger)

	appLogger.Info("Starting database seeding...")

	user, err := seedDemoUser(ctx, userRepo, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to seed demo user", zap.Error(err))
	}

	if err := seedInvoiceHistory(ctx, invoiceRepo, user.ID, appLogger); err != nil {
		appLogger.Fatal("Failed to seed invoice history", zap.Error(err))
	}

	appLogger.Info("Database seeding completed successfully!")
}

func seedDemoUser(ctx context.Context, repo *repository.UserRepository, logger *zap.Logger) (*models.User, error) {
	if existing, err := repo.GetByEmail(ctx, demoEmail); err == nil {
		logger.Info("Demo user already exists", zap.String("email", demoEmail))
		return existing, nil
	}

	hashed, err := auth.HashPassword(demoPassword)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &models.User{
		ID:        uuid.New(),
		Username:  "demo",
		Email:     demoEmail,
		Password:  hashed,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := repo.Create(ctx, user); err != nil {
		return nil, err
	}

	logger.Info("Demo user created", zap.String("email", demoEmail))
	return user, nil
}

func seedInvoiceHistory(ctx context.Context, repo *repository.InvoiceRepository, userID uuid.UUID, logger *zap.Logger) error {
	existing, err := repo.ListByUserID(ctx, userID)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		logger.Info("Invoice history already present, skipping", zap.Int("invoices", len(existing)))
		return nil
	}

	seedInvoices := []struct {
		vendor   string
		number   string
		amount   float64
		tax      float64
		category string
		status   models.InvoiceStatus
	}{
		{"Acme Office Supply", "AOS-1041", 214.50, 17.16, "Office Supplies", models.InvoiceStatusPaid},
		{"Cloudline Hosting", "CLH-2203", 89.00, 0, "Software/SaaS", models.InvoiceStatusPaid},
		{"Metro Utilities", "MU-77812", 132.75, 10.62, "Utilities", models.InvoiceStatusPaid},
		{"Cloudline Hosting", "CLH-2298", 89.00, 0, "Software/SaaS", models.InvoiceStatusPaid},
		{"Brightside Marketing", "BM-5530", 450.00, 36.00, "Marketing", models.InvoiceStatusPending},
		{"Acme Office Supply", "AOS-1108", 198.20, 15.86, "Office Supplies", models.InvoiceStatusPending},
	}

	now := time.Now()
	for i, s := range seedInvoices {
		issue := now.AddDate(0, -(len(seedInvoices) - i), 0)
		inv := &models.Invoice{
			ID:            uuid.New(),
			UserID:        userID,
			Vendor:        s.vendor,
			InvoiceNumber: s.number,
			IssueDate:     issue,
			DueDate:       issue.AddDate(0, 0, 30),
			Amount:        s.amount,
			Tax:           s.tax,
			Currency:      "USD",
			Category:      s.category,
			Status:        s.status,
			CreatedAt:     issue,
			UpdatedAt:     issue,
		}
		if err := repo.Create(ctx, inv); err != nil {
			return err
		}
	}

	logger.Info("Invoice history seeded", zap.Int("invoices", len(seedInvoices)))
	return nil
}
