package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/havenwelfare/haven-backend/internal/apperr"
	"github.com/havenwelfare/haven-backend/internal/dto"
)

// fail renders err as dto.ErrorResponse with the typed error's message.
// Untyped errors become a generic 500; those and outages are logged.
func fail(c *fiber.Ctx, err error) error {
	appErr, ok := apperr.As(err)
	if !ok || appErr.Kind == apperr.KindUnavailable {
		slog.Error("request failed",
			"method", c.Method(),
			"path", c.Path(),
			"request_id", requestID(c),
			"error", err,
		)
	}
	if !ok {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Internal server error",
		})
	}
	return c.Status(apperr.HTTPStatus(appErr.Kind)).JSON(dto.ErrorResponse{
		Error: true, Message: appErr.Message,
	})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Error: true, Message: message,
	})
}

// bind parses the body into req and runs its validate tags.
func bind(c *fiber.Ctx, req any) error {
	if err := c.BodyParser(req); err != nil {
		return apperr.Validation("Invalid request body")
	}
	return dto.Validate(req)
}

func message(c *fiber.Ctx, msg string) error {
	return c.JSON(dto.MessageResponse{Message: msg})
}

func requestID(c *fiber.Ctx) string {
	id, _ := c.Locals("requestid").(string)
	return id
}
