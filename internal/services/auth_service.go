package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/luckygiving/lottery-backend/internal/config"
	"github.com/luckygiving/lottery-backend/internal/errs"
	"github.com/luckygiving/lottery-backend/internal/models"
	"github.com/luckygiving/lottery-backend/internal/repositories"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/exp/slog"
)

// Compile-time check to ensure AuthServiceImpl implements AuthService
var _ AuthService = (*AuthServiceImpl)(nil)

// AuthService defines the interface for admin authentication operations
type AuthService interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.AdminUser, error)
	Login(ctx context.Context, req *models.LoginRequest) (string, error)
}

// AuthServiceImpl implements AuthService
type AuthServiceImpl struct {
	adminUserRepo repositories.AdminUserRepository
	jwtCfg        config.JWTConfig
}

// NewAuthService creates a new AuthServiceImpl
func NewAuthService(adminUserRepo repositories.AdminUserRepository, jwtCfg config.JWTConfig) *AuthServiceImpl {
	return &AuthServiceImpl{
		adminUserRepo: adminUserRepo,
		jwtCfg:        jwtCfg,
	}
}

// Register creates a new admin user with a bcrypt-hashed password
func (s *AuthServiceImpl) Register(ctx context.Context, req *models.RegisterRequest) (*models.AdminUser, error) {
	existing, err := s.adminUserRepo.FindByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, errs.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("admin with email %s already exists: %w", req.Email, errs.ErrPersistenceConflict)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	role := req.Role
	if role == "" {
		role = "admin"
	}

	adminUser := &models.AdminUser{
		Email:     req.Email,
		Password:  string(hashedPassword),
		Role:      role,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := s.adminUserRepo.Create(ctx, adminUser); err != nil {
		return nil, err
	}

	slog.Info("Admin user registered", "email", adminUser.Email, "role", adminUser.Role)
	adminUser.Password = ""
	return adminUser, nil
}

// Login verifies credentials and returns a signed JWT
func (s *AuthServiceImpl) Login(ctx context.Context, req *models.LoginRequest) (string, error) {
	adminUser, err := s.adminUserRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		// Same answer whether the user is unknown or the password is wrong.
		return "", errors.New("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(adminUser.Password), []byte(req.Password)); err != nil {
		return "", errors.New("invalid credentials")
	}

	if s.jwtCfg.Secret == "" {
		return "", fmt.Errorf("JWT secret is unset: %w", errs.ErrConfiguration)
	}

	claims := jwt.MapClaims{
		"sub":   adminUser.ID.Hex(),
		"email": adminUser.Email,
		"role":  adminUser.Role,
		"exp":   time.Now().Add(time.Duration(s.jwtCfg.ExpiresIn) * time.Second).Unix(),
		"iat":   time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtCfg.Secret))
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}

	slog.Info("Admin logged in", "email", adminUser.Email)
	return tokenString, nil
}
