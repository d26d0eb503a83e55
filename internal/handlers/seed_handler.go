package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/mcontreras/contact-form-api/internal/dto"
	"github.com/mcontreras/contact-form-api/internal/services"
)

type SeedHandler struct {
	seedService *services.SeedService
}

func NewSeedHandler(seedService *services.SeedService) *SeedHandler {
	return &SeedHandler{seedService: seedService}
}

func (h *SeedHandler) Run(c *fiber.Ctx) error {
	var req dto.SeedRequest
	// Empty body means defaults.
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("Invalid request body"))
		}
	}

	result, err := h.seedService.Run(&req)
	if err != nil {
		slog.Error("seed run failed", "error", err, "action", "seed_run")
		return c.Status(fiber.StatusInternalServerError).JSON(dto.Fail("Internal server error"))
	}

	return c.JSON(dto.OK("Demo data generated successfully", result))
}

func (h *SeedHandler) Clear(c *fiber.Ctx) error {
	result, err := h.seedService.Clear()
	if err != nil {
		slog.Error("seed clear failed", "error", err, "action", "seed_clear")
		return c.Status(fiber.StatusInternalServerError).JSON(dto.Fail("Internal server error"))
	}

	return c.JSON(dto.OK("Data cleared successfully", result))
}

func (h *SeedHandler) Status(c *fiber.Ctx) error {
	status, err := h.seedService.Status()
	if err != nil {
		slog.Error("seed status failed", "error", err, "action", "seed_status")
		return c.Status(fiber.StatusInternalServerError).JSON(dto.Fail("Internal server error"))
	}

	return c.JSON(dto.OK("Statistics retrieved successfully", status))
}

func (h *SeedHandler) CreateTables(c *fiber.Ctx) error {
	if err := h.seedService.EnsureTables(); err != nil {
		slog.Error("table creation failed", "error", err, "action", "seed_create_tables")
		return c.Status(fiber.StatusInternalServerError).JSON(dto.Fail("Internal server error"))
	}

	return c.JSON(dto.OK("Tables verified/created successfully", fiber.Map{
		"tables": []string{"users", "refresh_tokens", "contact_forms"},
	}))
}
