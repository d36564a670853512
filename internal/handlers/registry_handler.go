package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/havenwelfare/haven-backend/internal/dto"
	"github.com/havenwelfare/haven-backend/internal/middleware"
	"github.com/havenwelfare/haven-backend/internal/models"
	"github.com/havenwelfare/haven-backend/internal/services"
)

// RegistryHandler serves rehab centers and addiction types.
type RegistryHandler struct {
	registry *services.RegistryService
}

func NewRegistryHandler(registry *services.RegistryService) *RegistryHandler {
	return &RegistryHandler{registry: registry}
}

func (h *RegistryHandler) CreateRehabCenter(c *fiber.Ctx) error {
	var req dto.RehabCenterRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}

	center, err := h.registry.CreateRehabCenter(c.UserContext(), middleware.CurrentIdentity(c), &req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(center)
}

func (h *RegistryHandler) ListRehabCenters(c *fiber.Ctx) error {
	centers, err := h.registry.ListRehabCenters(c.UserContext(), middleware.CurrentIdentity(c), models.RehabCenterStatus(c.Query("status")))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(centers)
}

func (h *RegistryHandler) GetRehabCenter(c *fiber.Ctx) error {
	center, err := h.registry.GetRehabCenter(c.UserContext(), middleware.CurrentIdentity(c), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(center)
}

func (h *RegistryHandler) UpdateRehabCenter(c *fiber.Ctx) error {
	var req dto.RehabCenterRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}

	center, err := h.registry.UpdateRehabCenter(c.UserContext(), middleware.CurrentIdentity(c), c.Params("id"), &req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(center)
}

func (h *RegistryHandler) DeleteRehabCenter(c *fiber.Ctx) error {
	if err := h.registry.DeleteRehabCenter(c.UserContext(), middleware.CurrentIdentity(c), c.Params("id")); err != nil {
		return fail(c, err)
	}
	return message(c, "Rehab center deleted")
}

func (h *RegistryHandler) CreateAddictionType(c *fiber.Ctx) error {
	var req dto.AddictionTypeRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}

	at, err := h.registry.CreateAddictionType(c.UserContext(), middleware.CurrentIdentity(c), &req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(at)
}

func (h *RegistryHandler) ListAddictionTypes(c *fiber.Ctx) error {
	types, err := h.registry.ListAddictionTypes(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(types)
}

func (h *RegistryHandler) UpdateAddictionType(c *fiber.Ctx) error {
	var req dto.AddictionTypeRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}

	at, err := h.registry.UpdateAddictionType(c.UserContext(), middleware.CurrentIdentity(c), c.Params("id"), &req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(at)
}

func (h *RegistryHandler) DeleteAddictionType(c *fiber.Ctx) error {
	if err := h.registry.DeleteAddictionType(c.UserContext(), middleware.CurrentIdentity(c), c.Params("id")); err != nil {
		return fail(c, err)
	}
	return message(c, "Addiction type deleted")
}
