package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/commerce-service/internal/domain"
	apperrors "github.com/spec-kit/commerce-service/pkg/util"
)

const principalKey = "auth_principal"

// Principal represents the identity decoded from a verified token. It lives
// for the duration of a single request.
type Principal struct {
	UserID string
	Email  string
	Role   domain.Role
}

// AuthMiddleware gates protected routes: it checks whitelist membership,
// verifies the token and attaches the Principal to the request.
type AuthMiddleware struct {
	tokens    *TokenManager
	whitelist WhitelistStore
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, whitelist WhitelistStore) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, whitelist: whitelist}
}

// Handle enforces authentication for protected routes. Checks run in a fixed
// order and short-circuit on the first failure:
//  1. a token must be supplied,
//  2. the raw value must be whitelisted before any signature work, so a
//     revoked token is rejected even while its own expiry is still valid,
//  3. signature and expiry must verify.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	token := ExtractToken(c.Get("Authorization"))
	if token == "" {
		return apperrors.NewUnauthorized("no token provided")
	}

	whitelisted, err := m.whitelist.Exists(c.UserContext(), token)
	if err != nil {
		return apperrors.NewStoreUnavailable(err)
	}
	if !whitelisted {
		return apperrors.NewTokenNotWhitelisted()
	}

	claims, err := m.tokens.Parse(token)
	if err != nil {
		if errors.Is(err, ErrTokenExpired) {
			return apperrors.NewTokenExpired()
		}
		return apperrors.NewInvalidToken()
	}

	c.Locals(principalKey, &Principal{
		UserID: claims.Subject,
		Email:  claims.Email,
		Role:   claims.Role,
	})
	return c.Next()
}

// ExtractToken returns the raw token from an Authorization header value,
// tolerating both bare tokens and the Bearer scheme.
func ExtractToken(header string) string {
	header = strings.TrimSpace(header)
	// a scheme with an empty credential counts as no token
	if strings.EqualFold(header, "Bearer") {
		return ""
	}
	if parts := strings.SplitN(header, " ", 2); len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return header
}

// PrincipalFromContext retrieves the authenticated identity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
