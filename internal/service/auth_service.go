package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"shelftrack/internal/domain"
	"shelftrack/internal/validation"
	"shelftrack/pkg/logger"
)

type AuthService struct {
	users    domain.UserRepository
	tokens   domain.TokenRepository
	audit    domain.AuditLogService
	tokenTTL time.Duration
	logger   logger.Logger
}

func NewAuthService(users domain.UserRepository, tokens domain.TokenRepository, audit domain.AuditLogService, tokenTTL time.Duration, log logger.Logger) domain.AuthService {
	return &AuthService{
		users:    users,
		tokens:   tokens,
		audit:    audit,
		tokenTTL: tokenTTL,
		logger:   log,
	}
}

func (s *AuthService) Register(ctx context.Context, input domain.RegisterInput) (*domain.User, string, error) {
	v := validation.New()
	v.Check(input.Name != "", "name", "name is required")
	v.Check(validation.MaxChars(input.Name, 255), "name", "name must not exceed 255 characters")
	v.Check(input.Email != "", "email", "email is required")
	v.Check(validation.IsEmail(input.Email), "email", "email must be a valid email address")
	v.Check(validation.MinChars(input.Password, 6), "password", "password must be at least 6 characters")

	if v.Valid() && input.Email != "" {
		taken, err := s.users.EmailTaken(input.Email, 0)
		if err != nil {
			return nil, "", fmt.Errorf("checking email uniqueness: %w", err)
		}
		v.Check(!taken, "email", "email is already in use")
	}
	if !v.Valid() {
		return nil, "", v.Err()
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("hashing password: %w", err)
	}

	user := &domain.User{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: string(hash),
		Role:         domain.RoleMember,
		PhoneNumber:  input.PhoneNumber,
		Address:      input.Address,
	}
	if err := s.users.Create(user); err != nil {
		return nil, "", fmt.Errorf("creating user: %w", err)
	}

	token, err := s.issueToken(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info("User registered", map[string]interface{}{
		"user_id": user.ID,
		"email":   user.Email,
	})

	return user, token, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	user, err := s.users.FindByEmail(email)
	if err != nil {
		return nil, "", fmt.Errorf("looking up user: %w", err)
	}
	if user == nil {
		return nil, "", domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", domain.ErrInvalidCredentials
	}

	token, err := s.issueToken(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info("User logged in", map[string]interface{}{
		"user_id": user.ID,
	})

	return user, token, nil
}

func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.tokens.Delete(ctx, token)
}

func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	userID, err := s.tokens.Resolve(ctx, token)
	if err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(userID)
	if err != nil {
		return nil, fmt.Errorf("looking up token owner: %w", err)
	}
	if user == nil {
		// Account deleted while the token was still live.
		return nil, domain.ErrUnauthenticated
	}
	return user, nil
}

func (s *AuthService) UpdateProfile(actor *domain.User, input domain.UpdateProfileInput) (*domain.User, error) {
	v := validation.New()
	if input.Name != nil {
		v.Check(*input.Name != "", "name", "name is required")
		v.Check(validation.MaxChars(*input.Name, 255), "name", "name must not exceed 255 characters")
	}
	if !v.Valid() {
		return nil, v.Err()
	}

	if input.Name != nil {
		actor.Name = *input.Name
	}
	if input.PhoneNumber != nil {
		actor.PhoneNumber = input.PhoneNumber
	}
	if input.Address != nil {
		actor.Address = input.Address
	}

	if err := s.users.Update(actor); err != nil {
		return nil, fmt.Errorf("updating profile: %w", err)
	}

	s.audit.Record(domain.EntityTypeUser, actor.ID, domain.ActionTypeUpdate, "updated own profile")

	return actor, nil
}

func (s *AuthService) ChangePassword(actor *domain.User, currentPassword, newPassword string) error {
	v := validation.New()
	if err := bcrypt.CompareHashAndPassword([]byte(actor.PasswordHash), []byte(currentPassword)); err != nil {
		v.Check(false, "current_password", "current password is incorrect")
	}
	v.Check(validation.MinChars(newPassword, 6), "new_password", "new password must be at least 6 characters")
	if !v.Valid() {
		return v.Err()
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	actor.PasswordHash = string(hash)

	if err := s.users.Update(actor); err != nil {
		return fmt.Errorf("updating password: %w", err)
	}

	s.logger.Info("Password changed", map[string]interface{}{
		"user_id": actor.ID,
	})

	return nil
}

func (s *AuthService) issueToken(ctx context.Context, userID int64) (string, error) {
	token := uuid.NewString()
	if err := s.tokens.Save(ctx, token, userID, s.tokenTTL); err != nil {
		return "", fmt.Errorf("storing token: %w", err)
	}
	return token, nil
}
