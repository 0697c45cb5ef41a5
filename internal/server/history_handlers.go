package server

import (
	"engage/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetHistory handles GET /api/history
func (s *Server) GetHistory(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	p := parsePagination(c, 20)

	records, err := s.historyService.List(c.Context(), userID, p.Limit, p.Offset)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	if records == nil {
		records = []*models.HistoryRecord{}
	}

	return c.JSON(fiber.Map{
		"history": records,
		"limit":   p.Limit,
		"offset":  p.Offset,
	})
}

// SetHistoryFeedback handles POST /api/history/:id/feedback
func (s *Server) SetHistoryFeedback(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	recordID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Action string `json:"action"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	record, err := s.historyService.SetFeedback(c.Context(), userID, recordID, req.Action)
	if err != nil {
		return s.respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{"record": record})
}
