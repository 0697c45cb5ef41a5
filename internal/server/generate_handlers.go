package server

import (
	"engage/internal/models"
	"engage/internal/persona"
	"engage/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GenerateComment handles POST /api/generate-comment. It produces three
// comment suggestions for the submitted post, spending one token.
func (s *Server) GenerateComment(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req struct {
		PostContent string `json:"post_content"`
		Persona     string `json:"persona"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if req.PostContent == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("post_content is required"))
	}

	personaName, err := s.effectivePersona(c, userID, req.Persona)
	if err != nil {
		return s.respondServiceError(c, err)
	}

	result, err := s.generationService.Generate(c.Context(), service.GenerateInput{
		UserID:      userID,
		PostContent: req.PostContent,
		Persona:     personaName,
	})
	if err != nil {
		return s.respondServiceError(c, err)
	}

	comments := make([]fiber.Map, 0, len(result.Suggestions))
	for i, sug := range result.Suggestions {
		entry := fiber.Map{
			"text":       sug.Text,
			"confidence": sug.Confidence,
		}
		if i < len(result.Records) {
			entry["id"] = result.Records[i].ID
		}
		comments = append(comments, entry)
	}

	return c.JSON(fiber.Map{
		"comments":         comments,
		"persona":          personaName,
		"tokens_remaining": result.TokensRemaining,
	})
}

// effectivePersona resolves the requested persona against the bank and the
// user's plan. Plans without the personas feature silently get the default
// rather than an error, so the extension works the same on every tier.
func (s *Server) effectivePersona(c *fiber.Ctx, userID uint, requested string) (string, error) {
	resolved := s.bank.Resolve(requested)
	if resolved == persona.Default {
		return resolved, nil
	}

	ok, err := s.ledgerService.HasFeature(c.Context(), userID, models.FeaturePersonas)
	if err != nil {
		return "", err
	}
	if !ok {
		return persona.Default, nil
	}
	return resolved, nil
}

// GetPersonas handles GET /api/personas
func (s *Server) GetPersonas(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"personas": s.bank.Names(),
		"default":  persona.Default,
	})
}
