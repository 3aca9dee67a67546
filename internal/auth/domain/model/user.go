package model

import (
	"errors"
	"time"
)

var (
	ErrEmailTaken          = errors.New("email is already taken")
	ErrUserNotFound        = errors.New("user not found")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrRegistrationClosed  = errors.New("registration is closed")
	ErrInvalidEmailFormat  = errors.New("invalid email format")
	ErrWeakPassword        = errors.New("password does not meet strength requirements")
	ErrTokenInvalid        = errors.New("token is invalid")
	ErrDisplayNameRequired = errors.New("display name is required")
)

// User is a content operator allowed to edit collections.
type User struct {
	ID           string    `json:"id" bson:"_id"`
	Email        string    `json:"email" bson:"email"`
	PasswordHash string    `json:"-" bson:"password_hash"`
	DisplayName  string    `json:"displayName" bson:"display_name"`
	CreatedAt    time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" bson:"updated_at"`
}
