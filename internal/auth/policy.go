package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/commerce-service/internal/domain"
	apperrors "github.com/spec-kit/commerce-service/pkg/util"
)

// IsAdmin reports whether the principal carries the admin role.
func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == domain.RoleAdmin
}

// CanAccess decides whether the principal may act on a resource owned by
// ownerID. Admins may act on anything; everyone else only on their own.
func (p *Principal) CanAccess(ownerID string) bool {
	if p == nil {
		return false
	}
	if p.IsAdmin() {
		return true
	}
	return ownerID != "" && p.UserID == ownerID
}

// Authorize returns a forbidden error unless CanAccess allows the principal.
func Authorize(p *Principal, ownerID string) error {
	if !p.CanAccess(ownerID) {
		return apperrors.NewForbidden("access denied")
	}
	return nil
}

// RequireAdmin guards admin-only routes behind the auth middleware.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("no token provided")
		}
		if !principal.IsAdmin() {
			return apperrors.NewForbidden("access denied")
		}
		return c.Next()
	}
}
