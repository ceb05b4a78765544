package handlers

import (
	"errors"

	"invoiceflow/internal/browser"
	"invoiceflow/internal/dto"
	"invoiceflow/internal/models"
	"invoiceflow/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AutomationHandler drives the headless-browser flows against external
// portals.
type AutomationHandler struct {
	driver         *browser.Driver
	invoiceService *service.InvoiceService
	logger         *zap.Logger
}

func NewAutomationHandler(driver *browser.Driver, invoiceService *service.InvoiceService, logger *zap.Logger) *AutomationHandler {
	return &AutomationHandler{
		driver:         driver,
		invoiceService: invoiceService,
		logger:         logger,
	}
}

// ImportDocuments godoc
// @Summary Fetch invoice documents from an email portal
// @Description Logs into the connected mailbox and downloads invoice attachments; items that failed are reported alongside the files that were fetched
// @Tags automation
// @Produce json
// @Param provider path string true "Email provider (gmail or outlook)"
// @Security Bearer
// @Success 200 {object} dto.ImportResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/automation/import/{provider} [post]
func (h *AutomationHandler) ImportDocuments(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	provider := models.Provider(c.Params("provider"))
	if !models.ValidProvider(provider) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unknown provider",
		})
	}

	resp, err := h.driver.ImportDocuments(c.Context(), userID, provider)
	if err != nil {
		switch {
		case errors.Is(err, browser.ErrUnsupportedProvider):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		case errors.Is(err, service.ErrNoConnection):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "No connection for provider",
			})
		}
		h.logger.Error("Document import failed", zap.Error(err))
		body := fiber.Map{"error": "Document import failed"}
		if resp != nil {
			// Report what was fetched before the run failed.
			body["files"] = resp.Files
			body["failures"] = resp.Failures
		}
		return c.Status(fiber.StatusInternalServerError).JSON(body)
	}

	return c.JSON(resp)
}

// ExportInvoice godoc
// @Summary File an invoice in an accounting portal
// @Description Logs into the connected accounting software and submits the invoice with its stored document
// @Tags automation
// @Accept json
// @Produce json
// @Param provider path string true "Accounting provider (quickbooks or xero)"
// @Param request body dto.ExportRequest true "Invoice reference"
// @Security Bearer
// @Success 200 {object} dto.ExportResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/automation/export/{provider} [post]
func (h *AutomationHandler) ExportInvoice(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	provider := models.Provider(c.Params("provider"))
	if !models.ValidProvider(provider) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unknown provider",
		})
	}

	var req dto.ExportRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	invoiceID, err := uuid.Parse(req.InvoiceID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Valid invoiceId is required",
		})
	}

	inv, err := h.invoiceService.GetOwned(c.Context(), userID, invoiceID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Invoice not found",
			})
		}
		h.logger.Error("Failed to load invoice", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load invoice",
		})
	}

	if err := h.driver.ExportInvoice(c.Context(), userID, provider, inv); err != nil {
		switch {
		case errors.Is(err, browser.ErrUnsupportedProvider):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		case errors.Is(err, service.ErrNoConnection):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "No connection for provider",
			})
		}
		h.logger.Error("Invoice export failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Invoice export failed",
		})
	}

	return c.JSON(dto.ExportResponse{
		Success:  true,
		Provider: string(provider),
	})
}
