package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/commerce-service/internal/auth"
	"github.com/spec-kit/commerce-service/internal/config"
	"github.com/spec-kit/commerce-service/internal/domain"
	"github.com/spec-kit/commerce-service/internal/events"
	apperrors "github.com/spec-kit/commerce-service/pkg/util"
)

type fakeUserRepo struct {
	users map[string]*domain.User
	seq   int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*domain.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.seq++
	user.ID = fmt.Sprintf("U%d", r.seq)
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.users[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *user
	return &clone, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) List(_ context.Context) ([]domain.User, error) {
	users := make([]domain.User, 0, len(r.users))
	for _, user := range r.users {
		users = append(users, *user)
	}
	return users, nil
}

type failingWhitelist struct{}

func (failingWhitelist) Insert(context.Context, string, time.Duration) error {
	return errors.New("store down")
}

func (failingWhitelist) Exists(context.Context, string) (bool, error) {
	return false, errors.New("store down")
}

func (failingWhitelist) Remove(context.Context, string) error {
	return errors.New("store down")
}

type capturingDispatcher struct {
	published []events.Event
}

func (d *capturingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.published = append(d.published, event)
	return nil
}

func (d *capturingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func testConfig() config.Config {
	return config.Config{
		Auth: config.AuthConfig{
			JWTSecret:             "test-secret",
			AccessTokenTTLMinutes: 60,
			BcryptCost:            bcrypt.MinCost,
		},
	}
}

func newAuthFixture(whitelist auth.WhitelistStore) (*AuthService, *fakeUserRepo, *capturingDispatcher) {
	repo := newFakeUserRepo()
	dispatcher := &capturingDispatcher{}
	svc := NewAuthService(testConfig(), AuthDependencies{
		UserRepo:   repo,
		Whitelist:  whitelist,
		Dispatcher: dispatcher,
	})
	return svc, repo, dispatcher
}

func signupDefault(t *testing.T, svc *AuthService) *domain.User {
	t.Helper()
	user, err := svc.Signup(context.Background(), SignupInput{
		Email:     "a@x.com",
		Password:  "abc",
		FirstName: "Ada",
		LastName:  "Byron",
	})
	require.NoError(t, err)
	return user
}

func TestAuthService_Signup(t *testing.T) {
	svc, _, dispatcher := newAuthFixture(auth.NewMemoryWhitelist())

	user := signupDefault(t, svc)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, domain.RoleUser, user.Role)
	assert.NotEqual(t, "abc", user.PasswordHash)
	assert.NoError(t, auth.ComparePassword(user.PasswordHash, "abc"))

	require.Len(t, dispatcher.published, 1)
	assert.Equal(t, events.EventUserRegistered, dispatcher.published[0].Type)
}

func TestAuthService_SignupDuplicateEmail(t *testing.T) {
	svc, _, _ := newAuthFixture(auth.NewMemoryWhitelist())
	signupDefault(t, svc)

	_, err := svc.Signup(context.Background(), SignupInput{
		Email:     "a@x.com",
		Password:  "xyz",
		FirstName: "Other",
		LastName:  "Person",
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, apperrors.ToDomainError(err).HTTPStatus)
}

func TestAuthService_SignupShortPassword(t *testing.T) {
	svc, _, _ := newAuthFixture(auth.NewMemoryWhitelist())

	_, err := svc.Signup(context.Background(), SignupInput{
		Email:     "a@x.com",
		Password:  "ab",
		FirstName: "Ada",
		LastName:  "Byron",
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, apperrors.ToDomainError(err).HTTPStatus)
}

func TestAuthService_SignupUnknownRoleDefaultsToUser(t *testing.T) {
	svc, _, _ := newAuthFixture(auth.NewMemoryWhitelist())

	user, err := svc.Signup(context.Background(), SignupInput{
		Email:     "b@x.com",
		Password:  "abc",
		FirstName: "Bea",
		LastName:  "Lovelace",
		Role:      "superuser",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, user.Role)
}

func TestAuthService_LoginIssuesWhitelistedToken(t *testing.T) {
	ctx := context.Background()
	whitelist := auth.NewMemoryWhitelist()
	svc, _, _ := newAuthFixture(whitelist)
	created := signupDefault(t, svc)

	user, token, expiresAt, err := svc.Login(ctx, "a@x.com", "abc")
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	whitelisted, err := whitelist.Exists(ctx, token)
	require.NoError(t, err)
	assert.True(t, whitelisted)

	claims, err := svc.TokenManager().Parse(token)
	require.NoError(t, err)
	assert.Equal(t, created.ID, claims.Subject)
	assert.Equal(t, "a@x.com", claims.Email)
	assert.Equal(t, domain.RoleUser, claims.Role)

	// the decoded identity drives the ownership policy
	principal := &auth.Principal{UserID: claims.Subject, Email: claims.Email, Role: claims.Role}
	assert.NoError(t, auth.Authorize(principal, created.ID))
	assert.Error(t, auth.Authorize(principal, "U2"))
}

func TestAuthService_LoginRepeatedIssuesIndependentTokens(t *testing.T) {
	ctx := context.Background()
	whitelist := auth.NewMemoryWhitelist()
	svc, _, _ := newAuthFixture(whitelist)
	signupDefault(t, svc)

	_, first, _, err := svc.Login(ctx, "a@x.com", "abc")
	require.NoError(t, err)
	time.Sleep(1100 * time.Millisecond) // distinct iat, distinct token value
	_, second, _, err := svc.Login(ctx, "a@x.com", "abc")
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	for _, token := range []string{first, second} {
		ok, err := whitelist.Exists(ctx, token)
		require.NoError(t, err)
		assert.True(t, ok)
	}
}

func TestAuthService_LoginUnknownEmail(t *testing.T) {
	svc, _, _ := newAuthFixture(auth.NewMemoryWhitelist())

	_, _, _, err := svc.Login(context.Background(), "missing@x.com", "abc")
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, apperrors.ToDomainError(err).HTTPStatus)
}

func TestAuthService_LoginWrongPassword(t *testing.T) {
	svc, _, _ := newAuthFixture(auth.NewMemoryWhitelist())
	signupDefault(t, svc)

	_, _, _, err := svc.Login(context.Background(), "a@x.com", "wrong")
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, apperrors.ToDomainError(err).HTTPStatus)
}

func TestAuthService_LoginFailsClosedOnWhitelistError(t *testing.T) {
	svc, _, _ := newAuthFixture(failingWhitelist{})
	signupDefault(t, svc)

	_, token, _, err := svc.Login(context.Background(), "a@x.com", "abc")
	require.Error(t, err)
	assert.Empty(t, token, "no token may reach the caller when the insert fails")
	assert.Equal(t, "STORE_UNAVAILABLE", apperrors.ToDomainError(err).Code)
}

func TestAuthService_LogoutRevokesToken(t *testing.T) {
	ctx := context.Background()
	whitelist := auth.NewMemoryWhitelist()
	svc, _, _ := newAuthFixture(whitelist)
	signupDefault(t, svc)

	_, token, _, err := svc.Login(ctx, "a@x.com", "abc")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, token))

	ok, err := whitelist.Exists(ctx, token)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAuthService_UpdateProfile(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newAuthFixture(auth.NewMemoryWhitelist())
	created := signupDefault(t, svc)

	newName := "Grace"
	newPassword := "hopper"
	updated, err := svc.UpdateProfile(ctx, created.ID, ProfileUpdateInput{
		FirstName: &newName,
		Password:  &newPassword,
	})
	require.NoError(t, err)
	assert.Equal(t, "Grace", updated.FirstName)
	assert.Equal(t, "Byron", updated.LastName)
	assert.NoError(t, auth.ComparePassword(updated.PasswordHash, "hopper"))

	_, _, _, err = svc.Login(ctx, "a@x.com", "hopper")
	assert.NoError(t, err)
}

func TestAuthService_DeleteUser(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newAuthFixture(auth.NewMemoryWhitelist())
	created := signupDefault(t, svc)

	other := &auth.Principal{UserID: "someone-else", Role: domain.RoleUser}
	err := svc.DeleteUser(ctx, other, created.ID)
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, apperrors.ToDomainError(err).HTTPStatus)

	self := &auth.Principal{UserID: created.ID, Role: domain.RoleUser}
	require.NoError(t, svc.DeleteUser(ctx, self, created.ID))
	assert.Empty(t, repo.users)

	admin := &auth.Principal{UserID: "A1", Role: domain.RoleAdmin}
	err = svc.DeleteUser(ctx, admin, created.ID)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, apperrors.ToDomainError(err).HTTPStatus)
}
