package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Sean-323/LinkCare-sub001/internal/httpx"
	"github.com/Sean-323/LinkCare-sub001/internal/service"
)

type StatHandler struct {
	statService *service.StatService
}

func NewStatHandler(statService *service.StatService) *StatHandler {
	return &StatHandler{statService: statService}
}

// RecordStat ingests one day of activity for the authenticated user.
// Posting the same date again replaces the previous sample.
func (h *StatHandler) RecordStat(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	var input service.RecordStatInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}

	if err := h.statService.RecordStat(userID, input); err != nil {
		return httpx.BadRequest(c, "record_stat_failed", err.Error())
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Recorded",
	})
}
