package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/havenwelfare/haven-backend/internal/dto"
	"github.com/havenwelfare/haven-backend/internal/middleware"
	"github.com/havenwelfare/haven-backend/internal/models"
	"github.com/havenwelfare/haven-backend/internal/services"
)

type TreatmentHandler struct {
	treatments *services.TreatmentService
}

func NewTreatmentHandler(treatments *services.TreatmentService) *TreatmentHandler {
	return &TreatmentHandler{treatments: treatments}
}

func (h *TreatmentHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateTreatmentRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}

	treatment, err := h.treatments.Create(c.UserContext(), middleware.CurrentIdentity(c), &req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(treatment)
}

func (h *TreatmentHandler) List(c *fiber.Ctx) error {
	requests, err := h.treatments.List(c.UserContext(), middleware.CurrentIdentity(c), models.TreatmentStatus(c.Query("status")))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(requests)
}

// Respond reads the outcome from ?response= or, failing that, the JSON body.
func (h *TreatmentHandler) Respond(c *fiber.Ctx) error {
	var req dto.RespondTreatmentRequest
	if err := c.QueryParser(&req); err != nil {
		return badRequest(c, "Invalid query")
	}
	if req.Response == "" && len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request body")
		}
	}

	status, err := h.treatments.Respond(c.UserContext(), middleware.CurrentIdentity(c), c.Params("id"), req.Response)
	if err != nil {
		return fail(c, err)
	}
	return message(c, "Treatment request "+string(status))
}

func (h *TreatmentHandler) UpdateNotes(c *fiber.Ctx) error {
	var req dto.TreatmentNotesRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}

	if err := h.treatments.UpdateNotes(c.UserContext(), middleware.CurrentIdentity(c), c.Params("id"), &req); err != nil {
		return fail(c, err)
	}
	return message(c, "Treatment notes updated")
}
