package dto

import "github.com/edmorua/admin-user-back/internal/models"

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateUserRequest fields are optional; nil leaves the stored value as is.
type UpdateUserRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

type AuthResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
	Token   string `json:"token"`
}

type SignInFailure struct {
	Message string `json:"message"`
	Login   bool   `json:"login"`
}

type ProfileResponse struct {
	Message string       `json:"message"`
	User    *models.User `json:"user"`
}

type UserResponse struct {
	User *models.User `json:"user"`
}

type UsersResponse struct {
	Users []models.User `json:"users"`
}

type UpdateUserResponse struct {
	Message     string       `json:"message"`
	User        *models.User `json:"user,omitempty"`
	ErrorUpdate bool         `json:"errorUpdate"`
}

type DeleteUserResponse struct {
	Message     string       `json:"message"`
	User        *models.User `json:"user,omitempty"`
	ErrorDelete bool         `json:"errorDelete"`
}

type ErrorResponse struct {
	Error        bool   `json:"error"`
	Message      string `json:"message"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	DB        string `json:"db"`
}
