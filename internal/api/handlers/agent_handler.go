package handlers

import (
	"errors"

	"invoiceflow/internal/dto"
	"invoiceflow/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AgentHandler serves the public automation endpoints used by external
// agents and integrations. These routes carry the user id in the request
// instead of a JWT.
type AgentHandler struct {
	invoiceService *service.InvoiceService
	anomalyService *service.AnomalyService
	emailService   *service.EmailService
	logger         *zap.Logger
}

func NewAgentHandler(
	invoiceService *service.InvoiceService,
	anomalyService *service.AnomalyService,
	emailService *service.EmailService,
	logger *zap.Logger,
) *AgentHandler {
	return &AgentHandler{
		invoiceService: invoiceService,
		anomalyService: anomalyService,
		emailService:   emailService,
		logger:         logger,
	}
}

// ProcessInvoice godoc
// @Summary Process an uploaded invoice document
// @Description Extract fields from the document, categorize it and store the invoice
// @Tags agent
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Invoice document"
// @Param userId formData string true "User ID"
// @Success 200 {object} dto.ProcessInvoiceResponse
// @Failure 400 {object} map[string]string
// @Router /api/agent/process-invoice [post]
func (h *AgentHandler) ProcessInvoice(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "File is required",
		})
	}

	userID, err := uuid.Parse(c.FormValue("userId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Valid userId is required",
		})
	}

	data, err := readFormFile(file)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to read file",
		})
	}

	resp, err := h.invoiceService.ProcessUpload(c.Context(), userID, file.Filename, data)
	if err != nil {
		h.logger.Error("Failed to process invoice", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to process invoice",
		})
	}

	return c.JSON(resp)
}

// DetectAnomalies godoc
// @Summary Judge a new invoice against the user's history
// @Tags agent
// @Accept json
// @Produce json
// @Param request body dto.DetectAnomalyRequest true "Candidate invoice"
// @Success 200 {object} dto.DetectAnomalyResponse
// @Failure 400 {object} map[string]string
// @Router /api/agent/detect-anomaly [post]
func (h *AgentHandler) DetectAnomalies(c *fiber.Ctx) error {
	var req dto.DetectAnomalyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Valid userId is required",
		})
	}
	if req.InvoiceData == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invoiceData is required",
		})
	}

	isAnomaly, err := h.anomalyService.DetectAnomalies(c.Context(), userID, req.InvoiceData)
	if err != nil {
		h.logger.Error("Anomaly detection failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Anomaly detection failed",
		})
	}

	message := "No anomalies detected."
	if isAnomaly {
		message = "This invoice appears unusual compared to your history. Please review carefully."
	}

	return c.JSON(dto.DetectAnomalyResponse{
		IsAnomaly: isAnomaly,
		Message:   message,
	})
}

// GenerateEmailReminder godoc
// @Summary Draft a payment reminder email for an invoice
// @Tags agent
// @Accept json
// @Produce json
// @Param request body dto.EmailReminderRequest true "Invoice reference"
// @Success 200 {object} dto.EmailReminderResponse
// @Failure 404 {object} map[string]string
// @Router /api/agent/email-reminder [post]
func (h *AgentHandler) GenerateEmailReminder(c *fiber.Ctx) error {
	var req dto.EmailReminderRequest
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

	inv, err := h.invoiceService.GetByID(c.Context(), invoiceID)
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

	content, err := h.emailService.DraftReminderEmail(c.Context(), inv)
	if err != nil {
		h.logger.Error("Failed to draft reminder email", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to draft reminder email",
		})
	}

	return c.JSON(dto.EmailReminderResponse{
		Success:      true,
		EmailContent: content,
	})
}
