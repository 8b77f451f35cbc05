package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/clinic-service/internal/api/dto"
	"github.com/spec-kit/clinic-service/internal/domain"
	"github.com/spec-kit/clinic-service/internal/service"
)

// Authenticator performs credential checks for each role.
type Authenticator interface {
	LoginAdmin(ctx context.Context, username, password string) (*service.LoginResult, error)
	LoginDoctor(ctx context.Context, email, password string) (*service.LoginResult, error)
	LoginPatient(ctx context.Context, email, password string) (*service.LoginResult, error)
}

// TokenChecker answers whether a token is valid for a role.
type TokenChecker interface {
	Authorize(ctx context.Context, token string, role domain.Role) bool
}

// AuthHandler exposes login and token validation endpoints.
type AuthHandler struct {
	auth   Authenticator
	tokens TokenChecker
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService Authenticator, tokens TokenChecker) *AuthHandler {
	return &AuthHandler{auth: authService, tokens: tokens}
}

// LoginAdmin handles POST /admin/login.
func (h *AuthHandler) LoginAdmin(c *fiber.Ctx) error {
	var req dto.AdminLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		return fiber.NewError(http.StatusBadRequest, "username and password required")
	}

	result, err := h.auth.LoginAdmin(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return mapServiceError(err)
	}
	return loginResponse(c, result)
}

// LoginDoctor handles POST /doctor/login.
func (h *AuthHandler) LoginDoctor(c *fiber.Ctx) error {
	return h.loginByEmail(c, h.auth.LoginDoctor)
}

// LoginPatient handles POST /patient/login.
func (h *AuthHandler) LoginPatient(c *fiber.Ctx) error {
	return h.loginByEmail(c, h.auth.LoginPatient)
}

func (h *AuthHandler) loginByEmail(c *fiber.Ctx, login func(context.Context, string, string) (*service.LoginResult, error)) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return fiber.NewError(http.StatusBadRequest, "email and password required")
	}

	result, err := login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return mapServiceError(err)
	}
	return loginResponse(c, result)
}

// Validate handles GET /:role/validate/:token.
func (h *AuthHandler) Validate(c *fiber.Ctx) error {
	valid := false
	if role, ok := domain.ParseRole(c.Params("role")); ok {
		valid = h.tokens.Authorize(c.UserContext(), c.Params("token"), role)
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"valid": valid}})
}

func loginResponse(c *fiber.Ctx, result *service.LoginResult) error {
	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"user": fiber.Map{
				"id":   result.Identity.ID,
				"role": result.Identity.Role,
			},
			"auth": dto.AuthResponse{Token: result.Token, ExpiresAt: result.ExpiresAt},
		},
	})
}
