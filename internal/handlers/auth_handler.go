package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/mcontreras/contact-form-api/internal/dto"
	"github.com/mcontreras/contact-form-api/internal/middleware"
	"github.com/mcontreras/contact-form-api/internal/services"
	"github.com/mcontreras/contact-form-api/internal/token"
	"github.com/mcontreras/contact-form-api/internal/validation"
)

type AuthHandler struct {
	authService *services.AuthService
	tokens      *token.Service
}

func NewAuthHandler(authService *services.AuthService, tokens *token.Service) *AuthHandler {
	return &AuthHandler{authService: authService, tokens: tokens}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("Invalid request body"))
	}
	if errs := validation.Struct(&req); errs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("Invalid input data", errs...))
	}

	data, err := h.authService.Register(&req)
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.Fail(err.Error()))
		}
		slog.Error("register failed", "error", err, "action", "register")
		return c.Status(fiber.StatusInternalServerError).JSON(dto.Fail("Internal server error"))
	}

	return c.Status(fiber.StatusCreated).JSON(dto.OK("User registered successfully", data))
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("Invalid request body"))
	}
	if errs := validation.Struct(&req); errs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("Invalid input data", errs...))
	}

	data, err := h.authService.Login(&req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.Fail("Invalid credentials"))
		}
		slog.Error("login failed", "error", err, "action", "login")
		return c.Status(fiber.StatusInternalServerError).JSON(dto.Fail("Internal server error"))
	}

	return c.JSON(dto.OK("Login successful", data))
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req dto.RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("Invalid request body"))
	}
	if errs := validation.Struct(&req); errs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("Invalid input data", errs...))
	}

	data, err := h.authService.Refresh(req.RefreshToken)
	if err != nil {
		if errors.Is(err, services.ErrInvalidRefreshToken) {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.Fail("Invalid or expired refresh token"))
		}
		slog.Error("refresh failed", "error", err, "action", "refresh")
		return c.Status(fiber.StatusInternalServerError).JSON(dto.Fail("Internal server error"))
	}

	return c.JSON(dto.OK("Token refreshed successfully", data))
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	var req dto.LogoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("Invalid request body"))
	}
	if errs := validation.Struct(&req); errs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("Invalid input data", errs...))
	}

	if err := h.authService.Logout(req.RefreshToken); err != nil {
		slog.Error("logout failed", "error", err, "action", "logout")
		return c.Status(fiber.StatusInternalServerError).JSON(dto.Fail("Internal server error"))
	}

	return c.JSON(dto.OK("Logged out successfully", nil))
}

func (h *AuthHandler) LogoutAll(c *fiber.Ctx) error {
	ident, ok := middleware.IdentityFromCtx(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.Fail("Not authenticated"))
	}

	if err := h.authService.LogoutAll(ident.ID); err != nil {
		slog.Error("logout-all failed", "error", err, "action", "logout_all")
		return c.Status(fiber.StatusInternalServerError).JSON(dto.Fail("Internal server error"))
	}

	return c.JSON(dto.OK("All sessions closed successfully", nil))
}

func (h *AuthHandler) Profile(c *fiber.Ctx) error {
	ident, ok := middleware.IdentityFromCtx(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.Fail("Not authenticated"))
	}

	user, err := h.authService.Profile(ident.ID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.Fail("User not found"))
		}
		slog.Error("profile lookup failed", "error", err, "action", "profile")
		return c.Status(fiber.StatusInternalServerError).JSON(dto.Fail("Internal server error"))
	}

	return c.JSON(dto.OK("Profile retrieved successfully", fiber.Map{"user": user}))
}

func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	ident, ok := middleware.IdentityFromCtx(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.Fail("Not authenticated"))
	}

	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("Invalid request body"))
	}
	if errs := validation.Struct(&req); errs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("Invalid input data", errs...))
	}

	user, err := h.authService.UpdateProfile(ident.ID, &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmailTaken):
			return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("Email is already in use"))
		case errors.Is(err, services.ErrNothingToUpdate):
			return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("No fields to update"))
		case errors.Is(err, services.ErrUserNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.Fail("User not found"))
		}
		slog.Error("profile update failed", "error", err, "action", "update_profile")
		return c.Status(fiber.StatusInternalServerError).JSON(dto.Fail("Internal server error"))
	}

	return c.JSON(dto.OK("Profile updated successfully", fiber.Map{"user": user}))
}

func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	ident, ok := middleware.IdentityFromCtx(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.Fail("Not authenticated"))
	}

	var req dto.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("Invalid request body"))
	}
	if errs := validation.Struct(&req); errs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("Invalid input data", errs...))
	}

	if err := h.authService.ChangePassword(ident.ID, &req); err != nil {
		switch {
		case errors.Is(err, services.ErrWrongPassword):
			return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("Current password is incorrect"))
		case errors.Is(err, services.ErrUserNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.Fail("User not found"))
		}
		slog.Error("password change failed", "error", err, "action", "change_password")
		return c.Status(fiber.StatusInternalServerError).JSON(dto.Fail("Internal server error"))
	}

	return c.JSON(dto.OK("Password changed successfully. Please log in again.", nil))
}

func (h *AuthHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.authService.ListUsers()
	if err != nil {
		slog.Error("user list failed", "error", err, "action", "list_users")
		return c.Status(fiber.StatusInternalServerError).JSON(dto.Fail("Internal server error"))
	}

	return c.JSON(dto.OK("Users retrieved successfully", fiber.Map{"users": users}))
}

func (h *AuthHandler) ToggleUserStatus(c *fiber.Ctx) error {
	ident, ok := middleware.IdentityFromCtx(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.Fail("Not authenticated"))
	}

	targetID, err := c.ParamsInt("id")
	if err != nil || targetID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("Invalid user id"))
	}

	user, err := h.authService.ToggleStatus(ident.ID, uint(targetID))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSelfToggle):
			return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("You cannot toggle your own status"))
		case errors.Is(err, services.ErrUserNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.Fail("User not found"))
		}
		slog.Error("status toggle failed", "error", err, "action", "toggle_status")
		return c.Status(fiber.StatusInternalServerError).JSON(dto.Fail("Internal server error"))
	}

	message := "User deactivated successfully"
	if user.IsActive {
		message = "User activated successfully"
	}
	return c.JSON(dto.OK(message, fiber.Map{"user": user}))
}

func (h *AuthHandler) CleanupTokens(c *fiber.Ctx) error {
	deleted, err := h.tokens.CleanupExpired()
	if err != nil {
		slog.Error("token cleanup failed", "error", err, "action", "cleanup_tokens")
		return c.Status(fiber.StatusInternalServerError).JSON(dto.Fail("Internal server error"))
	}

	return c.JSON(dto.OK("Expired tokens cleaned up successfully", fiber.Map{"deleted": deleted}))
}
