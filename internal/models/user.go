package models

import (
	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"
)

type User struct {
	gorm.Model  `json:"-"`
	ID          uint    `json:"id" gorm:"primaryKey"`
	Name        string  `json:"name"`
	DisplayName string  `json:"display_name" gorm:"index"`
	Email       string  `json:"email" gorm:"uniqueIndex"`
	Password    string  `json:"-"`                                         // Store hashed password, ignore for JSON serialization
	FirebaseUID *string `json:"firebase_uid,omitempty" gorm:"uniqueIndex"` // nil for local accounts
	AvatarKey   string  `json:"avatar_key,omitempty"`                      // Opaque blob store reference
	IsSeed      bool    `json:"-"`
}

type SignupRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=50"`
	DisplayName string `json:"display_name,omitempty" validate:"omitempty,min=2,max=32"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
}

type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type FirebaseLoginRequest struct {
	IDToken string `json:"id_token" validate:"required"`
	Name    string `json:"name,omitempty" validate:"omitempty,min=2,max=50"`
}

type UpdateUserRequest struct {
	Name        string `json:"name,omitempty" validate:"omitempty,min=2,max=50"`
	DisplayName string `json:"display_name,omitempty" validate:"omitempty,min=2,max=32"`
	AvatarKey   string `json:"avatar_key,omitempty"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}
