package handlers

import (
	"errors"

	"invoiceflow/internal/dto"
	"invoiceflow/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type ConnectionHandler struct {
	connectionService *service.ConnectionService
	logger            *zap.Logger
}

func NewConnectionHandler(connectionService *service.ConnectionService, logger *zap.Logger) *ConnectionHandler {
	return &ConnectionHandler{
		connectionService: connectionService,
		logger:            logger,
	}
}

// UpsertConnection godoc
// @Summary Save portal credentials for a provider
// @Description Stores encrypted credentials; one connection per user and provider
// @Tags connections
// @Accept json
// @Produce json
// @Param request body dto.UpsertConnectionRequest true "Provider credentials"
// @Security Bearer
// @Success 200 {object} dto.ConnectionResponse
// @Failure 400 {object} map[string]string
// @Router /api/v1/connections [put]
func (h *ConnectionHandler) UpsertConnection(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	var req dto.UpsertConnectionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	resp, err := h.connectionService.Upsert(c.Context(), userID, &req)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		h.logger.Error("Failed to save connection", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to save connection",
		})
	}

	return c.JSON(resp)
}

// ListConnections godoc
// @Summary List the user's portal connections
// @Description Returns providers and timestamps only, never credentials
// @Tags connections
// @Produce json
// @Security Bearer
// @Success 200 {array} dto.ConnectionResponse
// @Router /api/v1/connections [get]
func (h *ConnectionHandler) ListConnections(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	connections, err := h.connectionService.List(c.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to list connections", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list connections",
		})
	}

	return c.JSON(connections)
}

// DeleteConnection godoc
// @Summary Delete a portal connection
// @Tags connections
// @Produce json
// @Param provider path string true "Provider name"
// @Security Bearer
// @Success 200 {object} map[string]bool
// @Failure 400 {object} map[string]string
// @Router /api/v1/connections/{provider} [delete]
func (h *ConnectionHandler) DeleteConnection(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	if err := h.connectionService.Delete(c.Context(), userID, c.Params("provider")); err != nil {
		if errors.Is(err, service.ErrValidation) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		h.logger.Error("Failed to delete connection", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete connection",
		})
	}

	return c.JSON(fiber.Map{"success": true})
}
