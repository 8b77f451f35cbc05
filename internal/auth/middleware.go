package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/clinic-service/internal/domain"
	apperrors "github.com/spec-kit/clinic-service/pkg/util/errorutil"
)

// UnauthorizedMessage is the only message callers see for a rejected token.
const UnauthorizedMessage = "Invalid or expired token."

const principalKey = "auth_principal"

// Principal represents the authenticated caller.
type Principal struct {
	Identity domain.Identity
	Token    string
}

// RequireRole enforces a bearer token authorized for role.
func RequireRole(gate *Gate, role domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := BearerToken(c)
		if !ok {
			return apperrors.NewUnauthorized("missing or invalid authorization header")
		}

		identity, ok := gate.Identity(c.UserContext(), token, role)
		if !ok {
			return apperrors.NewUnauthorized(UnauthorizedMessage)
		}

		c.Locals(principalKey, &Principal{Identity: identity, Token: token})
		return c.Next()
	}
}

// BearerToken extracts the token from the Authorization header.
func BearerToken(c *fiber.Ctx) (string, bool) {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
