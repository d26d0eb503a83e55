package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/mcontreras/contact-form-api/internal/dto"
	"github.com/mcontreras/contact-form-api/internal/middleware"
	"github.com/mcontreras/contact-form-api/internal/services"
	"github.com/mcontreras/contact-form-api/internal/validation"
)

type FormHandler struct {
	formService *services.FormService
}

func NewFormHandler(formService *services.FormService) *FormHandler {
	return &FormHandler{formService: formService}
}

// Create accepts submissions from anonymous and authenticated callers alike;
// the optional auth gate attaches the submitter id when one is resolved.
func (h *FormHandler) Create(c *fiber.Ctx) error {
	var req dto.ContactFormRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("Invalid request body"))
	}
	if errs := validation.Struct(&req); errs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("Invalid or missing data", errs...))
	}

	var submitterID *uint
	if ident, ok := middleware.IdentityFromCtx(c); ok {
		submitterID = &ident.ID
	}

	form, err := h.formService.Create(&req, submitterID)
	if err != nil {
		slog.Error("form submission failed", "error", err, "action", "create_form")
		return c.Status(fiber.StatusInternalServerError).JSON(dto.Fail("Internal server error"))
	}

	return c.Status(fiber.StatusCreated).JSON(dto.OK("Contact form received and saved successfully", form))
}

func (h *FormHandler) List(c *fiber.Ctx) error {
	forms, total, err := h.formService.List()
	if err != nil {
		slog.Error("form listing failed", "error", err, "action", "list_forms")
		return c.Status(fiber.StatusInternalServerError).JSON(dto.Fail("Internal server error"))
	}

	return c.JSON(dto.OK("Contact forms retrieved successfully", dto.FormListData{
		Forms: forms,
		Total: total,
	}))
}
