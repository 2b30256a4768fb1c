package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/commerce-service/internal/auth"
	"github.com/spec-kit/commerce-service/internal/config"
	"github.com/spec-kit/commerce-service/internal/domain"
	"github.com/spec-kit/commerce-service/internal/events"
	"github.com/spec-kit/commerce-service/internal/repository"
	apperrors "github.com/spec-kit/commerce-service/pkg/util"
)

const minPasswordLength = 3

// AuthService coordinates signup, login and account management flows.
type AuthService struct {
	users      repository.UserRepository
	whitelist  auth.WhitelistStore
	tokenMgr   *auth.TokenManager
	dispatcher events.Dispatcher
	bcryptCost int
}

// AuthDependencies encapsulates collaborators for the auth service.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	Whitelist  auth.WhitelistStore
	Dispatcher events.Dispatcher
}

// SignupInput describes registration payload.
type SignupInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Age       *int
	Role      string
}

// ProfileUpdateInput describes a partial profile update. Nil fields are
// left untouched.
type ProfileUpdateInput struct {
	Email     *string
	Password  *string
	FirstName *string
	LastName  *string
	Age       *int
	Role      *string
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:      deps.UserRepo,
		whitelist:  deps.Whitelist,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL()),
		dispatcher: deps.Dispatcher,
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// Signup creates a new account. Role defaults to USER when absent or unknown.
func (s *AuthService) Signup(ctx context.Context, input SignupInput) (*domain.User, error) {
	if len(input.Password) < minPasswordLength {
		return nil, apperrors.NewValidationError("password too short", map[string]any{"min_length": minPasswordLength})
	}

	if _, err := s.users.GetByEmail(ctx, input.Email); err == nil {
		return nil, apperrors.NewConflict("email already registered", nil)
	} else if err != pgx.ErrNoRows {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Email:        input.Email,
		PasswordHash: hash,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Age:          input.Age,
		Role:         domain.ParseRole(input.Role),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.Event{
		Type:  events.EventUserRegistered,
		Actor: events.Actor{UserID: user.ID, Role: user.Role},
		Payload: events.UserRegisteredPayload{
			UserID: user.ID,
			Email:  user.Email,
			Role:   user.Role,
		},
	})
	return user, nil
}

// Login checks credentials, issues a token and whitelists it. The token is
// only returned once the whitelist insert is acknowledged; any store failure
// fails the whole login and no token reaches the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, time.Time, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, "", time.Time{}, apperrors.NewNotFound("user", nil)
		}
		return nil, "", time.Time{}, err
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}

	token, expiresAt, err := s.tokenMgr.Generate(user)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if err := s.whitelist.Insert(ctx, token, s.tokenMgr.TTL()); err != nil {
		return nil, "", time.Time{}, apperrors.NewStoreUnavailable(err)
	}
	return user, token, expiresAt, nil
}

// Logout revokes the presented token. Once removed from the whitelist the
// token is rejected on every subsequent request.
func (s *AuthService) Logout(ctx context.Context, rawToken string) error {
	if err := s.whitelist.Remove(ctx, rawToken); err != nil {
		return apperrors.NewStoreUnavailable(err)
	}
	return nil
}

// GetProfile returns the account for the given id.
func (s *AuthService) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("user", nil)
		}
		return nil, err
	}
	return user, nil
}

// UpdateProfile applies a partial update to the caller's account.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, input ProfileUpdateInput) (*domain.User, error) {
	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.Email != nil {
		user.Email = *input.Email
	}
	if input.FirstName != nil {
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		user.LastName = *input.LastName
	}
	if input.Age != nil {
		user.Age = input.Age
	}
	if input.Role != nil {
		user.Role = domain.ParseRole(*input.Role)
	}
	if input.Password != nil {
		if len(*input.Password) < minPasswordLength {
			return nil, apperrors.NewValidationError("password too short", map[string]any{"min_length": minPasswordLength})
		}
		hash, err := auth.HashPassword(*input.Password, s.bcryptCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ListUsers returns all accounts. Admin access is enforced at the route.
func (s *AuthService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.users.List(ctx)
}

// DeleteUser removes an account. Callers may delete themselves; admins may
// delete anyone.
func (s *AuthService) DeleteUser(ctx context.Context, principal *auth.Principal, targetID string) error {
	if err := auth.Authorize(principal, targetID); err != nil {
		return err
	}
	if err := s.users.Delete(ctx, targetID); err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewNotFound("user", nil)
		}
		return err
	}
	return nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
