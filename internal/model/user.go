package model

import (
	"time"

	"gorm.io/gorm"
)

// UserRole describes the authorization level of an account.
type UserRole string

const (
	RoleAdmin   UserRole = "admin"
	RoleManager UserRole = "manager"
	RoleUser    UserRole = "user"
)

// User represents an account that can authenticate against the API.
type User struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	Name        string         `json:"name" gorm:"type:varchar(100);not null"`
	Email       string         `json:"email" gorm:"type:varchar(100);uniqueIndex"`
	Password    string         `json:"-" gorm:"type:varchar(255)"`
	Role        UserRole       `json:"role" gorm:"type:varchar(20);default:'user'"`
	IsActive    bool           `json:"is_active"`
	LastLoginAt *time.Time     `json:"last_login_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}
