package usecase

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"showcase-cms/internal/auth/config"
	"showcase-cms/internal/auth/domain/model"
	"showcase-cms/internal/auth/domain/repository"
	"showcase-cms/internal/shared/logger"

	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLength = 8
	maxPasswordLength = 72 // bcrypt ignores bytes past 72
)

var (
	emailRegex   = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	upperRegex   = regexp.MustCompile(`[A-Z]`)
	lowerRegex   = regexp.MustCompile(`[a-z]`)
	numberRegex  = regexp.MustCompile(`[0-9]`)
	specialRegex = regexp.MustCompile(`[!@#$%^&*(),.?":{}|<>_\-]`)
)

// AuthUsecaseInterface defines the contract for operator authentication.
type AuthUsecaseInterface interface {
	Register(ctx context.Context, req RegisterRequest) (*model.User, string, error)
	Login(ctx context.Context, req LoginRequest) (*model.User, string, error)
	ValidateToken(ctx context.Context, tokenString string) (*repository.Claims, error)
	RefreshToken(ctx context.Context, tokenString string) (string, error)
	GetUserByID(ctx context.Context, userID string) (*model.User, error)
}

// RegisterRequest represents the registration request
type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

// LoginRequest represents the login request
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthUsecase implements the authentication logic.
type AuthUsecase struct {
	repo     repository.UserRepository
	tokenSvc repository.TokenService
	config   *config.Config
	logger   logger.Logger
}

// NewAuthUsecase creates a new instance of AuthUsecase.
func NewAuthUsecase(
	repo repository.UserRepository,
	tokenSvc repository.TokenService,
	cfg *config.Config,
	log logger.Logger,
) *AuthUsecase {
	return &AuthUsecase{
		repo:     repo,
		tokenSvc: tokenSvc,
		config:   cfg,
		logger:   log.WithComponent("auth"),
	}
}

func validateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email is required")
	}
	if !emailRegex.MatchString(email) {
		return model.ErrInvalidEmailFormat
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return fmt.Errorf("password must be at least %d characters: %w", minPasswordLength, model.ErrWeakPassword)
	}
	if len(password) > maxPasswordLength {
		return fmt.Errorf("password must be at most %d characters: %w", maxPasswordLength, model.ErrWeakPassword)
	}
	if !upperRegex.MatchString(password) || !lowerRegex.MatchString(password) ||
		!numberRegex.MatchString(password) || !specialRegex.MatchString(password) {
		return model.ErrWeakPassword
	}
	return nil
}

// Register creates an operator. Only the first operator may register unless
// ALLOW_REGISTRATION is set.
func (uc *AuthUsecase) Register(ctx context.Context, req RegisterRequest) (*model.User, string, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := validateEmail(email); err != nil {
		return nil, "", err
	}
	if err := validatePassword(req.Password); err != nil {
		return nil, "", err
	}
	displayName := strings.TrimSpace(req.DisplayName)
	if displayName == "" {
		return nil, "", model.ErrDisplayNameRequired
	}

	if !uc.config.AllowRegistration {
		count, err := uc.repo.CountUsers(ctx)
		if err != nil {
			return nil, "", fmt.Errorf("failed to count operators: %w", err)
		}
		if count > 0 {
			return nil, "", model.ErrRegistrationClosed
		}
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Email:        email,
		PasswordHash: string(hashedPassword),
		DisplayName:  displayName,
	}
	if err := uc.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, model.ErrEmailTaken) {
			return nil, "", model.ErrEmailTaken
		}
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	token, err := uc.tokenSvc.GenerateToken(ctx, user.ID, user.Email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	uc.logger.WithContext(ctx).WithFields(map[string]interface{}{"operator_id": user.ID}).Info("Operator registered")
	user.PasswordHash = ""
	return user, token, nil
}

// Login checks the operator's password and issues a token.
func (uc *AuthUsecase) Login(ctx context.Context, req LoginRequest) (*model.User, string, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := validateEmail(email); err != nil {
		return nil, "", err
	}

	user, err := uc.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return nil, "", model.ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		uc.logger.WithContext(ctx).Warnf("Failed login for %s", email)
		return nil, "", model.ErrInvalidCredentials
	}

	token, err := uc.tokenSvc.GenerateToken(ctx, user.ID, user.Email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	user.PasswordHash = ""
	return user, token, nil
}

// ValidateToken validates a JWT string
func (uc *AuthUsecase) ValidateToken(ctx context.Context, tokenString string) (*repository.Claims, error) {
	claims, err := uc.tokenSvc.ValidateToken(ctx, tokenString)
	if err != nil {
		return nil, model.ErrTokenInvalid
	}
	return claims, nil
}

// RefreshToken issues a fresh token while the current one is still valid and its operator exists.
func (uc *AuthUsecase) RefreshToken(ctx context.Context, tokenString string) (string, error) {
	claims, err := uc.tokenSvc.ValidateToken(ctx, tokenString)
	if err != nil {
		return "", model.ErrTokenInvalid
	}

	user, err := uc.repo.GetUserByID(ctx, claims.UserID)
	if err != nil {
		return "", model.ErrUserNotFound
	}

	newToken, err := uc.tokenSvc.GenerateToken(ctx, user.ID, user.Email)
	if err != nil {
		return "", fmt.Errorf("failed to generate new token: %w", err)
	}
	return newToken, nil
}

// GetUserByID retrieves an operator without its password hash.
func (uc *AuthUsecase) GetUserByID(ctx context.Context, userID string) (*model.User, error) {
	if userID == "" {
		return nil, fmt.Errorf("user ID is required")
	}
	user, err := uc.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, model.ErrUserNotFound
	}
	user.PasswordHash = ""
	return user, nil
}

var _ AuthUsecaseInterface = (*AuthUsecase)(nil)
