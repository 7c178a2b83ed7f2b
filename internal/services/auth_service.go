// file: internal/services/auth_service.go
package services

import (
	"context"
	"fmt"
	"time"

	"visualverse/internal/config"
	"visualverse/internal/events"
	"visualverse/internal/models"
	"visualverse/internal/repositories"
	"visualverse/internal/validation"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// authService handles registration, login and JWT verification
type authService struct {
	users  repositories.UserRepository
	cfg    config.AuthConfig
	events events.EventBus
	logger *zap.Logger
}

// NewAuthService creates a new auth service with explicit dependencies
func NewAuthService(users repositories.UserRepository, cfg config.AuthConfig, eventBus events.EventBus, logger *zap.Logger) AuthService {
	return &authService{
		users:  users,
		cfg:    cfg,
		events: eventBus,
		logger: logger,
	}
}

// Register creates an account, hashes the password and issues a token
func (s *authService) Register(ctx context.Context, req *RegisterRequest) (*AuthResult, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("invalid registration request", err)
	}
	if len(req.Password) < s.cfg.MinPasswordLength {
		return nil, NewValidationError(
			fmt.Sprintf("password must be at least %d characters", s.cfg.MinPasswordLength), nil)
	}

	if existing, err := s.users.GetByEmail(ctx, req.Email); err == nil && existing != nil {
		return nil, NewConflictError("email already registered", "EMAIL_TAKEN")
	}
	if existing, err := s.users.GetByUsername(ctx, req.Username); err == nil && existing != nil {
		return nil, NewConflictError("username already taken", "USERNAME_TAKEN")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cfg.BCryptCost)
	if err != nil {
		return nil, NewInternalError("failed to hash password")
	}

	user := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         models.RoleStudent,
		SkillLevel:   models.SkillBeginner,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, NewInternalError("failed to create user")
	}

	s.events.PublishAsync(ctx, events.NewUserRegisteredEvent(user.ID, user.Username, user.Email))
	s.logger.Info("User registered",
		zap.Int64("user_id", user.ID),
		zap.String("username", user.Username),
	)

	return s.issueToken(user)
}

// Login verifies credentials and issues a token
func (s *authService) Login(ctx context.Context, req *LoginRequest) (*AuthResult, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("invalid login request", err)
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, NewInternalError("failed to load user")
	}
	if user == nil || !user.IsActive {
		return nil, NewUnauthorizedError("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, NewUnauthorizedError("invalid credentials")
	}
	return s.issueToken(user)
}

// VerifyToken parses and validates a signed JWT
func (s *authService) VerifyToken(ctx context.Context, tokenString string) (*TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, NewUnauthorizedError("invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, NewUnauthorizedError("invalid token claims")
	}
	userID, ok := claims["user_id"].(float64)
	if !ok {
		return nil, NewUnauthorizedError("invalid token claims")
	}
	role, _ := claims["role"].(string)

	return &TokenClaims{
		UserID: int64(userID),
		Role:   role,
	}, nil
}

func (s *authService) issueToken(user *models.User) (*AuthResult, error) {
	expiresAt := time.Now().Add(s.cfg.JWTExpiry)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"role":    user.Role,
		"iat":     time.Now().Unix(),
		"exp":     expiresAt.Unix(),
	})
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return nil, NewInternalError("failed to sign token")
	}
	return &AuthResult{
		Token:     signed,
		ExpiresAt: expiresAt,
		User:      user,
	}, nil
}
