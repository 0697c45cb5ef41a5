package server

import (
	"engage/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetTokens handles GET /api/tokens
func (s *Server) GetTokens(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	account, err := s.ledgerService.Balance(c.Context(), userID)
	if err != nil {
		return s.respondServiceError(c, err)
	}

	plan, _ := models.PlanByID(account.PlanID)
	return c.JSON(fiber.Map{
		"tokens_remaining": account.TokensRemaining,
		"tokens_limit":     account.TokensLimit,
		"plan":             plan,
	})
}

// ResetTokens handles POST /api/tokens/reset, refilling the balance to the
// plan limit as the monthly reset job does.
func (s *Server) ResetTokens(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	account, err := s.ledgerService.ResetToPlanLimit(c.Context(), userID)
	if err != nil {
		return s.respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"tokens_remaining": account.TokensRemaining,
		"tokens_limit":     account.TokensLimit,
	})
}

// ChangePlan handles POST /api/plan
func (s *Server) ChangePlan(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req struct {
		PlanID string `json:"plan_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	account, err := s.ledgerService.ChangePlan(c.Context(), userID, req.PlanID)
	if err != nil {
		return s.respondServiceError(c, err)
	}

	plan, _ := models.PlanByID(account.PlanID)
	return c.JSON(fiber.Map{
		"tokens_remaining": account.TokensRemaining,
		"plan":             plan,
	})
}

// GetPlans handles GET /api/plans
func (s *Server) GetPlans(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"plans": models.Plans()})
}
