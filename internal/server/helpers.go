package server

import (
	"errors"

	"engage/internal/models"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper.  Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// Pagination holds parsed limit/offset query parameters.
type Pagination struct {
	Limit  int
	Offset int
}

const (
	maxPaginationLimit = 100
)

// parsePagination extracts limit and offset query parameters with the given default limit.
func parsePagination(c *fiber.Ctx, defaultLimit int) Pagination {
	limit := c.QueryInt("limit", defaultLimit)
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxPaginationLimit {
		limit = maxPaginationLimit
	}

	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	return Pagination{
		Limit:  limit,
		Offset: offset,
	}
}

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid ID"))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// statusForCode maps AppError codes to HTTP statuses.
var statusForCode = map[string]int{
	"VALIDATION_ERROR":    fiber.StatusBadRequest,
	"UNAUTHORIZED":        fiber.StatusUnauthorized,
	"INSUFFICIENT_TOKENS": fiber.StatusPaymentRequired,
	"NOT_FOUND":           fiber.StatusNotFound,
	"REQUEST_IN_FLIGHT":   fiber.StatusTooManyRequests,
}

// respondServiceError writes the HTTP response for a service-layer error.
func (s *Server) respondServiceError(c *fiber.Ctx, err error) error {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		if status, ok := statusForCode[appErr.Code]; ok {
			return models.RespondWithError(c, status, appErr)
		}
	}
	return models.RespondWithError(c, fiber.StatusInternalServerError, err)
}
