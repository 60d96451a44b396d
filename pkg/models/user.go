package models

import "time"

// User is the profile of an authenticated account
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// Credentials are the login form fields
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Registration are the sign up form fields
type Registration struct {
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	Name            string `json:"name" validate:"required"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

// AuthResponse is returned by login and registration
type AuthResponse struct {
	AccessToken string `json:"access_token"`
	User        User   `json:"user"`
}
