package service

import (
	"errors"
	"fmt"
	"time"

	"catalog-service/internal/model"
	"catalog-service/pkg/jwtutil"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthService handles registration, credential checks and token issuance.
type AuthService struct {
	db *gorm.DB
}

// NewAuthService returns an AuthService bound to the given database handle.
func NewAuthService(db *gorm.DB) *AuthService {
	return &AuthService{db: db}
}

// RegisterInput carries the attributes for a new account.
type RegisterInput struct {
	Name     string         `json:"name"`
	Email    string         `json:"email"`
	Password string         `json:"password"`
	Role     model.UserRole `json:"role"`
}

// UserSummary is the user representation embedded in auth responses.
type UserSummary struct {
	ID       uint           `json:"id"`
	Name     string         `json:"name"`
	Email    string         `json:"email"`
	Role     model.UserRole `json:"role"`
	IsActive bool           `json:"is_active"`
}

// AuthResponse is the login/register contract: a signed bearer token, its
// lifetime in seconds and a summary of the authenticated user.
type AuthResponse struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	ExpiresIn   int         `json:"expires_in"`
	User        UserSummary `json:"user"`
}

// Register creates an account and signs the caller straight in. The email
// must not be registered yet; the role defaults to "user".
func (s *AuthService) Register(in RegisterInput) (*AuthResponse, error) {
	role := in.Role
	if role == "" {
		role = model.RoleUser
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &model.User{
		Name:     in.Name,
		Email:    in.Email,
		Password: string(hash),
		Role:     role,
		IsActive: true,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.User{}).Where("email = ?", in.Email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("%w: email %q is already registered", ErrConflict, in.Email)
		}
		return tx.Create(user).Error
	})
	if err != nil {
		return nil, err
	}
	return s.tokenResponse(user)
}

// Login checks the credentials, rejects inactive accounts, records the login
// time and returns a fresh token.
func (s *AuthService) Login(email, password string) (*AuthResponse, error) {
	var user model.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrInactiveUser
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := time.Now()
	if err := s.db.Model(&user).Update("last_login_at", now).Error; err != nil {
		return nil, err
	}
	user.LastLoginAt = &now
	return s.tokenResponse(&user)
}

// Profile returns the account behind a user id.
func (s *AuthService) Profile(userID uint) (*model.User, error) {
	var user model.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user %d: %w", userID, ErrNotFound)
		}
		return nil, err
	}
	return &user, nil
}

func (s *AuthService) tokenResponse(user *model.User) (*AuthResponse, error) {
	token, err := jwtutil.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, err
	}
	return &AuthResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(jwtutil.Expiration().Seconds()),
		User: UserSummary{
			ID:       user.ID,
			Name:     user.Name,
			Email:    user.Email,
			Role:     user.Role,
			IsActive: user.IsActive,
		},
	}, nil
}
