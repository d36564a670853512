package middleware

import (
	"errors"
	"log/slog"

	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/havenwelfare/haven-backend/internal/apperr"
	"github.com/havenwelfare/haven-backend/internal/auth"
	"github.com/havenwelfare/haven-backend/internal/dto"
)

const identityKey = "identity"

// JWTProtected verifies the bearer token and stores it under "user".
func JWTProtected(tokens *auth.TokenIssuer) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{JWTAlg: jwtware.HS256, Key: tokens.SigningKey()},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			message := "Invalid token"
			switch {
			case errors.Is(err, jwtware.ErrJWTMissingOrMalformed):
				message = "Missing or malformed token"
			case errors.Is(err, jwt.ErrTokenExpired):
				message = "Token has expired"
			}
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: message,
			})
		},
	})
}

// Identity loads the caller behind the verified token on every request, so
// a suspension takes effect before the token expires.
func Identity(resolver *auth.Resolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := c.Locals("user").(*jwt.Token)
		if !ok || token == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}
		sub, err := auth.SubjectFromClaims(token.Claims)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Invalid token",
			})
		}

		id, err := resolver.Resolve(c.UserContext(), sub)
		if err != nil {
			appErr, ok := apperr.As(err)
			if !ok || appErr.Kind == apperr.KindUnavailable {
				slog.Error("failed to resolve identity", "error", err, "user_id", sub.String())
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
		c.Locals(identityKey, id)
		return c.Next()
	}
}

// Authenticated chains token verification and identity resolution.
func Authenticated(tokens *auth.TokenIssuer, resolver *auth.Resolver) []fiber.Handler {
	return []fiber.Handler{JWTProtected(tokens), Identity(resolver)}
}

// OptionalAuth authenticates only when an Authorization header is sent.
// Anonymous requests pass through without an identity; a bad token is still
// rejected.
func OptionalAuth(tokens *auth.TokenIssuer, resolver *auth.Resolver) []fiber.Handler {
	verify := JWTProtected(tokens)
	resolve := Identity(resolver)
	return []fiber.Handler{
		func(c *fiber.Ctx) error {
			if anonymous(c) {
				return c.Next()
			}
			return verify(c)
		},
		func(c *fiber.Ctx) error {
			if anonymous(c) {
				return c.Next()
			}
			return resolve(c)
		},
	}
}

func anonymous(c *fiber.Ctx) bool {
	return c.Get(fiber.HeaderAuthorization) == ""
}

// CurrentIdentity returns the caller stored by Identity, or nil.
func CurrentIdentity(c *fiber.Ctx) *auth.Identity {
	id, _ := c.Locals(identityKey).(*auth.Identity)
	return id
}

// Require rejects callers whose role lacks capability.
func Require(capability auth.Capability) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := auth.Authorize(CurrentIdentity(c), capability); err != nil {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Next()
	}
}
