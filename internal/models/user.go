package models

import "time"

// User is a registered account. Email is stored lower-cased and trimmed.
type User struct {
	ID           string    `json:"id" db:"id"`
	Name         *string   `json:"name,omitempty" db:"name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash *string   `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// DisplayName returns the user's name, or an empty string when none was given.
func (u User) DisplayName() string {
	if u.Name == nil {
		return ""
	}
	return *u.Name
}

// RegisterInput is the payload accepted by the registration workflow.
type RegisterInput struct {
	Name     string `json:"name" validate:"min=2"`
	Email    string `json:"email" validate:"email"`
	Password string `json:"password" validate:"min=6,maxbytes=72"`
}

// LoginInput is the payload accepted by the login workflow.
type LoginInput struct {
	Email    string `json:"email" validate:"email"`
	Password string `json:"password" validate:"required"`
}
