package handlers

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/havenwelfare/haven-backend/internal/dto"
	"github.com/havenwelfare/haven-backend/internal/middleware"
	"github.com/havenwelfare/haven-backend/internal/models"
	"github.com/havenwelfare/haven-backend/internal/repository"
	"github.com/havenwelfare/haven-backend/internal/services"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type AdminHandler struct {
	users     *services.UserService
	analytics *services.AnalyticsService
	settings  *services.SettingsService
	donations *services.DonationService
}

func NewAdminHandler(
	users *services.UserService,
	analytics *services.AnalyticsService,
	settings *services.SettingsService,
	donations *services.DonationService,
) *AdminHandler {
	return &AdminHandler{users: users, analytics: analytics, settings: settings, donations: donations}
}

func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	filter := repository.UserFilter{
		Role:   models.Role(c.Query("role")),
		Status: models.UserStatus(c.Query("status")),
	}
	users, err := h.users.ListUsers(c.UserContext(), middleware.CurrentIdentity(c), filter)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(users)
}

func (h *AdminHandler) UpdateUserStatus(c *fiber.Ctx) error {
	var req dto.UserStatusRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}

	if err := h.users.SetStatus(c.UserContext(), middleware.CurrentIdentity(c), c.Params("id"), &req); err != nil {
		return fail(c, err)
	}
	return message(c, "User status updated to "+req.Status)
}

func (h *AdminHandler) Analytics(c *fiber.Ctx) error {
	resp, err := h.analytics.Summary(c.UserContext(), middleware.CurrentIdentity(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(resp)
}

func (h *AdminHandler) AuditLogs(c *fiber.Ctx) error {
	logs, err := h.analytics.AuditLogs(c.UserContext(), middleware.CurrentIdentity(c), c.QueryInt("limit", 0))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(logs)
}

func (h *AdminHandler) PaymentSettings(c *fiber.Ctx) error {
	setting, err := h.settings.Payment(c.UserContext(), middleware.CurrentIdentity(c))
	if err != nil {
		return fail(c, err)
	}
	if setting == nil {
		return c.JSON(fiber.Map{"type": models.SettingPayment})
	}
	return c.JSON(setting)
}

func (h *AdminHandler) UpdatePaymentSettings(c *fiber.Ctx) error {
	var req dto.PaymentSettingsRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}

	if err := h.settings.UpdatePayment(c.UserContext(), middleware.CurrentIdentity(c), &req); err != nil {
		return fail(c, err)
	}
	return message(c, "Payment settings updated")
}

func (h *AdminHandler) UploadQRCode(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "file is required")
	}

	resp, err := h.settings.UploadQRCode(c.UserContext(), middleware.CurrentIdentity(c), file)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(resp)
}

func (h *AdminHandler) SMTPSettings(c *fiber.Ctx) error {
	setting, err := h.settings.SMTP(c.UserContext(), middleware.CurrentIdentity(c))
	if err != nil {
		return fail(c, err)
	}
	if setting == nil {
		return c.JSON(fiber.Map{"type": models.SettingSMTP})
	}
	return c.JSON(setting)
}

func (h *AdminHandler) UpdateSMTPSettings(c *fiber.Ctx) error {
	var req dto.SMTPSettingsRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}

	if err := h.settings.UpdateSMTP(c.UserContext(), middleware.CurrentIdentity(c), &req); err != nil {
		return fail(c, err)
	}
	return message(c, "SMTP settings updated")
}

// ExportDonations streams the donation workbook as an attachment.
func (h *AdminHandler) ExportDonations(c *fiber.Ctx) error {
	data, err := h.donations.ExportDonations(c.UserContext(), middleware.CurrentIdentity(c), models.DonationStatus(c.Query("status")))
	if err != nil {
		return fail(c, err)
	}

	filename := fmt.Sprintf("donations_%s.xlsx", time.Now().UTC().Format("20060102_150405"))
	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(data)
}
