package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/havenwelfare/haven-backend/internal/dto"
	"github.com/havenwelfare/haven-backend/internal/middleware"
	"github.com/havenwelfare/haven-backend/internal/services"
)

const forgotPasswordMessage = "If email exists, password reset link will be sent"

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}

	resp, err := h.authService.Register(c.UserContext(), &req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}

	resp, err := h.authService.Login(c.UserContext(), &req, c.IP())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(resp)
}

// ForgotPassword answers the same way whether or not the email exists.
func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var req dto.ForgotPasswordRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}

	if err := h.authService.ForgotPassword(c.UserContext(), &req); err != nil {
		slog.Error("forgot password failed", "error", err, "request_id", requestID(c))
	}
	return message(c, forgotPasswordMessage)
}

func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req dto.ResetPasswordRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}

	if err := h.authService.ResetPassword(c.UserContext(), &req); err != nil {
		return fail(c, err)
	}
	return message(c, "Password reset successfully")
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	resp, err := h.authService.Me(c.UserContext(), middleware.CurrentIdentity(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(resp)
}

func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	var req dto.UpdateProfileRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}

	resp, err := h.authService.UpdateProfile(c.UserContext(), middleware.CurrentIdentity(c), &req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(resp)
}

func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	var req dto.ChangePasswordRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}

	if err := h.authService.ChangePassword(c.UserContext(), middleware.CurrentIdentity(c), &req); err != nil {
		return fail(c, err)
	}
	return message(c, "Password changed successfully")
}
