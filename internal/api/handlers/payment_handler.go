package handlers

import (
	"errors"
	"time"

	"invoiceflow/internal/dto"
	"invoiceflow/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type PaymentHandler struct {
	paymentService *service.PaymentService
	logger         *zap.Logger
}

func NewPaymentHandler(paymentService *service.PaymentService, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		logger:         logger,
	}
}

// ProcessPayment godoc
// @Summary Start a card payment for an invoice
// @Description Creates a payment intent and returns the client secret for checkout
// @Tags payments
// @Accept json
// @Produce json
// @Param request body dto.ProcessPaymentRequest true "Invoice reference"
// @Security Bearer
// @Success 200 {object} dto.ProcessPaymentResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/payments/process [post]
func (h *PaymentHandler) ProcessPayment(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	var req dto.ProcessPaymentRequest
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

	resp, err := h.paymentService.ProcessPayment(c.Context(), userID, invoiceID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Invoice not found",
			})
		}
		h.logger.Error("Failed to process payment", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to process payment",
		})
	}

	return c.JSON(resp)
}

// ScheduleReminder godoc
// @Summary Schedule a payment reminder for an invoice
// @Tags payments
// @Accept json
// @Produce json
// @Param request body dto.ScheduleReminderRequest true "Reminder details"
// @Security Bearer
// @Success 201 {object} dto.ReminderResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/payments/reminders [post]
func (h *PaymentHandler) ScheduleReminder(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	var req dto.ScheduleReminderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	resp, err := h.paymentService.ScheduleReminder(c.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		case errors.Is(err, service.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Invoice not found",
			})
		}
		h.logger.Error("Failed to schedule reminder", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to schedule reminder",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

// PaymentReport godoc
// @Summary Payment totals over a date range
// @Description Aggregates invoiced, paid and outstanding totals for invoices issued in the range
// @Tags payments
// @Produce json
// @Param start query string true "Range start (YYYY-MM-DD)"
// @Param end query string true "Range end (YYYY-MM-DD)"
// @Security Bearer
// @Success 200 {object} dto.PaymentReportResponse
// @Failure 400 {object} map[string]string
// @Router /api/v1/payments/report [get]
func (h *PaymentHandler) PaymentReport(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	start, err := time.Parse("2006-01-02", c.Query("start"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "start must be YYYY-MM-DD",
		})
	}
	end, err := time.Parse("2006-01-02", c.Query("end"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "end must be YYYY-MM-DD",
		})
	}
	if end.Before(start) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "end must be on or after start",
		})
	}

	report, err := h.paymentService.Report(c.Context(), userID, start, end)
	if err != nil {
		h.logger.Error("Failed to build payment report", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to build payment report",
		})
	}

	return c.JSON(report)
}
