package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/havenwelfare/haven-backend/internal/middleware"
	"github.com/havenwelfare/haven-backend/internal/services"
)

type DoctorHandler struct {
	users *services.UserService
}

func NewDoctorHandler(users *services.UserService) *DoctorHandler {
	return &DoctorHandler{users: users}
}

func (h *DoctorHandler) List(c *fiber.Ctx) error {
	doctors, err := h.users.ListApprovedDoctors(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(doctors)
}

func (h *DoctorHandler) UploadVerificationDocument(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "file is required")
	}

	resp, err := h.users.UploadVerificationDocument(c.UserContext(), middleware.CurrentIdentity(c), file)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(resp)
}

func (h *DoctorHandler) UpdateProfileData(c *fiber.Ctx) error {
	var data map[string]any
	if err := c.BodyParser(&data); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if err := h.users.UpdateDoctorProfileData(c.UserContext(), middleware.CurrentIdentity(c), data); err != nil {
		return fail(c, err)
	}
	return message(c, "Profile data updated")
}
