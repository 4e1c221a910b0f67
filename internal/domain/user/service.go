// internal/domain/user/service.go
package user

import (
	"errors"
	"strings"

	"github.com/ivan22102000/kivo-tienda/internal/config"
	"github.com/ivan22102000/kivo-tienda/internal/pkg/apperror"
	"github.com/ivan22102000/kivo-tienda/internal/pkg/auth"
	"gorm.io/gorm"
)

// Service handles user business logic
type Service struct {
	db              *gorm.DB
	config          *config.Config
	passwordManager *auth.PasswordManager
	jwtManager      *auth.JWTManager
}

// NewService creates a new user service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:              db,
		config:          cfg,
		passwordManager: auth.NewPasswordManager(cfg),
		jwtManager:      auth.NewJWTManager(cfg),
	}
}

// RegisterRequest represents user registration data
type RegisterRequest struct {
	Username        string `json:"username" binding:"required"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirmPassword"`
}

// LoginRequest represents user login data
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	User      *User  `json:"user"`
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
}

// Register creates a new user account
func (s *Service) Register(req *RegisterRequest) (*AuthResponse, error) {
	// The client checks confirmation before submitting; re-check here so the
	// API holds the invariant on its own.
	if req.ConfirmPassword != "" && req.Password != req.ConfirmPassword {
		return nil, apperror.Validation("passwords do not match")
	}

	if _, err := s.GetByUsername(req.Username); err == nil {
		return nil, apperror.Conflict("username %q is already taken", req.Username)
	}

	if _, err := s.GetByEmail(req.Email); err == nil {
		return nil, apperror.Conflict("email %q is already registered", strings.ToLower(req.Email))
	}

	hashedPassword, err := s.passwordManager.HashPassword(req.Password)
	if err != nil {
		return nil, apperror.Validation("%s", err.Error())
	}

	user := User{
		Username: req.Username,
		Email:    req.Email,
		Password: hashedPassword,
		IsAdmin:  false,
	}

	if err := s.db.Create(&user).Error; err != nil {
		return nil, apperror.Internal("failed to create user", err)
	}

	return s.buildAuthResponse(&user)
}

// Login authenticates a user by username and password
func (s *Service) Login(req *LoginRequest) (*AuthResponse, error) {
	var user User
	result := s.db.Where("username = ?", req.Username).First(&user)
	if result.Error != nil {
		return nil, apperror.Authentication("invalid username or password")
	}

	if err := s.passwordManager.VerifyPassword(req.Password, user.Password); err != nil {
		return nil, apperror.Authentication("invalid username or password")
	}

	return s.buildAuthResponse(&user)
}

// GetByID retrieves a user by ID
func (s *Service) GetByID(userID uint) (*User, error) {
	var user User
	result := s.db.First(&user, userID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("user not found")
		}
		return nil, apperror.Internal("failed to retrieve user", result.Error)
	}
	return &user, nil
}

// GetByUsername retrieves a user by username
func (s *Service) GetByUsername(username string) (*User, error) {
	var user User
	result := s.db.Where("username = ?", username).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("user not found")
		}
		return nil, apperror.Internal("failed to retrieve user", result.Error)
	}
	return &user, nil
}

// GetByEmail retrieves a user by email
func (s *Service) GetByEmail(email string) (*User, error) {
	var user User
	result := s.db.Where("email = ?", strings.ToLower(email)).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("user not found")
		}
		return nil, apperror.Internal("failed to retrieve user", result.Error)
	}
	return &user, nil
}

func (s *Service) buildAuthResponse(user *User) (*AuthResponse, error) {
	token, err := s.jwtManager.GenerateAccessToken(user.ID, user.Username, user.IsAdmin)
	if err != nil {
		return nil, apperror.Internal("failed to generate access token", err)
	}

	return &AuthResponse{
		User:      user,
		Token:     token,
		ExpiresIn: int64(s.config.JWT.AccessTokenExpiry.Seconds()),
	}, nil
}
