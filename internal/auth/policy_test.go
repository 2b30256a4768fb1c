package auth

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/commerce-service/internal/domain"
	apperrors "github.com/spec-kit/commerce-service/pkg/util"
)

func TestPrincipal_CanAccess(t *testing.T) {
	user := &Principal{UserID: "U1", Role: domain.RoleUser}
	admin := &Principal{UserID: "A1", Role: domain.RoleAdmin}

	tests := []struct {
		name      string
		principal *Principal
		ownerID   string
		want      bool
	}{
		{"owner allowed", user, "U1", true},
		{"other user denied", user, "U2", false},
		{"empty owner denied", user, "", false},
		{"admin allowed on own", admin, "A1", true},
		{"admin allowed on any", admin, "U2", true},
		{"admin allowed on empty owner", admin, "", true},
		{"nil principal denied", nil, "U1", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.principal.CanAccess(tt.ownerID))
		})
	}
}

func TestAuthorize_DenyCarriesForbiddenStatus(t *testing.T) {
	user := &Principal{UserID: "U1", Role: domain.RoleUser}

	assert.NoError(t, Authorize(user, "U1"))

	err := Authorize(user, "U2")
	assert.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, http.StatusForbidden, domainErr.HTTPStatus)
	assert.Equal(t, "FORBIDDEN", domainErr.Code)
}

func TestPrincipal_IsAdmin(t *testing.T) {
	assert.True(t, (&Principal{Role: domain.RoleAdmin}).IsAdmin())
	assert.False(t, (&Principal{Role: domain.RoleUser}).IsAdmin())
	assert.False(t, (*Principal)(nil).IsAdmin())
}
