package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/havenwelfare/haven-backend/internal/dto"
	"github.com/havenwelfare/haven-backend/internal/middleware"
	"github.com/havenwelfare/haven-backend/internal/models"
	"github.com/havenwelfare/haven-backend/internal/services"
)

type DonationHandler struct {
	donations *services.DonationService
	settings  *services.SettingsService
}

func NewDonationHandler(donations *services.DonationService, settings *services.SettingsService) *DonationHandler {
	return &DonationHandler{donations: donations, settings: settings}
}

// Submit accepts multipart form fields and an optional "screenshot" file.
func (h *DonationHandler) Submit(c *fiber.Ctx) error {
	var req dto.SubmitDonationRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}

	screenshot, err := c.FormFile("screenshot")
	if err != nil {
		screenshot = nil
	}

	donation, err := h.donations.Submit(c.UserContext(), &req, screenshot)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(donation)
}

func (h *DonationHandler) List(c *fiber.Ctx) error {
	donations, err := h.donations.List(c.UserContext(), middleware.CurrentIdentity(c), models.DonationStatus(c.Query("status")))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(donations)
}

func (h *DonationHandler) Get(c *fiber.Ctx) error {
	donation, err := h.donations.Get(c.UserContext(), middleware.CurrentIdentity(c), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(donation)
}

func (h *DonationHandler) Track(c *fiber.Ctx) error {
	resp, err := h.donations.Track(c.UserContext(), c.Params("transactionId"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(resp)
}

func (h *DonationHandler) Approve(c *fiber.Ctx) error {
	var req dto.DonationReviewRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}

	donation, err := h.donations.Review(c.UserContext(), middleware.CurrentIdentity(c), c.Params("id"), &req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(donation)
}

func (h *DonationHandler) Receipt(c *fiber.Ctx) error {
	resp, err := h.donations.Receipt(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(resp)
}

func (h *DonationHandler) PaymentInfo(c *fiber.Ctx) error {
	info, ok, err := h.settings.PaymentInfo(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	if !ok {
		return message(c, "Payment details not configured yet")
	}
	return c.JSON(info)
}

func (h *DonationHandler) Patients(c *fiber.Ctx) error {
	patients, err := h.donations.ListDonatablePatients(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(patients)
}
