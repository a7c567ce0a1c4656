package handlers

import (
	"errors"
	"log/slog"

	"github.com/edmorua/admin-user-back/internal/dto"
	"github.com/edmorua/admin-user-back/internal/middleware"
	"github.com/edmorua/admin-user-back/internal/services"
	"github.com/gofiber/fiber/v2"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
)

const invalidBody = "Invalid request body"

type UserHandler struct {
	accounts *services.AccountService
}

func NewUserHandler(accounts *services.AccountService) *UserHandler {
	return &UserHandler{accounts: accounts}
}

func (h *UserHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: invalidBody,
		})
	}

	sess, err := h.accounts.Register(c.UserContext(), services.RegisterInput{
		Name:     req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMissingFields):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "name, email or password not found",
			})
		case errors.Is(err, services.ErrValidation):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		case errors.Is(err, services.ErrEmailTaken):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: "This email already exists",
			})
		}
		return h.internalError(c, "register", err)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.AuthResponse{
		Message: "User created successfully",
		ID:      sess.UserID,
		Token:   sess.Token,
	})
}

func (h *UserHandler) SignIn(c *fiber.Ctx) error {
	// An unreadable body carries no credentials; the service reports that
	// as missing email and password.
	var req dto.SignInRequest
	if err := c.BodyParser(&req); err != nil {
		req = dto.SignInRequest{}
	}

	sess, err := h.accounts.SignIn(c.UserContext(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMissingLogin):
			return c.Status(fiber.StatusBadRequest).JSON(dto.SignInFailure{
				Message: "email and password are required for login",
			})
		case errors.Is(err, services.ErrUserNotFound):
			return c.Status(fiber.StatusBadRequest).JSON(dto.SignInFailure{Message: "User not found"})
		case errors.Is(err, services.ErrInvalidPassword):
			return c.Status(fiber.StatusBadRequest).JSON(dto.SignInFailure{Message: "Invalid password"})
		}
		return h.internalError(c, "signin", err)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.AuthResponse{
		Message: "User signed in successfully",
		ID:      sess.UserID,
		Token:   sess.Token,
	})
}

func (h *UserHandler) MyProfile(c *fiber.Ctx) error {
	var userID string
	if claims, ok := middleware.Identity(c); ok {
		userID = claims.UserID
	}

	user, err := h.accounts.Profile(c.UserContext(), userID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMissingIdentity):
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Error: true, Message: "Something wrong with the token, no id found",
			})
		case errors.Is(err, services.ErrUserNotFound):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: "No active user found",
			})
		}
		return h.internalError(c, "myprofile", err)
	}

	return c.JSON(dto.ProfileResponse{
		Message: "Successfully found the profile",
		User:    user,
	})
}

func (h *UserHandler) List(c *fiber.Ctx) error {
	users, err := h.accounts.List(c.UserContext())
	if err != nil {
		return h.internalError(c, "list_users", err)
	}
	return c.JSON(dto.UsersResponse{Users: users})
}

func (h *UserHandler) Get(c *fiber.Ctx) error {
	user, err := h.accounts.Get(c.UserContext(), c.Params("userId"))
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: "User not found",
			})
		}
		return h.internalError(c, "get_user", err)
	}
	return c.JSON(dto.UserResponse{User: user})
}

func (h *UserHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.UpdateUserResponse{
			Message: invalidBody, ErrorUpdate: true,
		})
	}

	user, err := h.accounts.Update(c.UserContext(), callerID(c), c.Params("userId"), services.UpdateInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		status, message := fiber.StatusInternalServerError, ""
		switch {
		case errors.Is(err, services.ErrForbidden):
			status, message = fiber.StatusForbidden, "Permissions denied, can't modify this user"
		case errors.Is(err, services.ErrNothingToUpdate):
			status, message = fiber.StatusBadRequest, "Nothing to update"
		case errors.Is(err, services.ErrValidation):
			status, message = fiber.StatusBadRequest, err.Error()
		case errors.Is(err, services.ErrEmailTaken):
			status, message = fiber.StatusBadRequest, "This email already exists"
		case errors.Is(err, services.ErrUserNotFound):
			status, message = fiber.StatusNotFound, "Can't find this user"
		default:
			return h.internalError(c, "update_user", err)
		}
		return c.Status(status).JSON(dto.UpdateUserResponse{Message: message, ErrorUpdate: true})
	}

	return c.JSON(dto.UpdateUserResponse{
		Message:     "User updated successfully",
		User:        user,
		ErrorUpdate: false,
	})
}

func (h *UserHandler) Delete(c *fiber.Ctx) error {
	user, err := h.accounts.Delete(c.UserContext(), callerID(c), c.Params("userId"))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrForbidden):
			return c.Status(fiber.StatusForbidden).JSON(dto.DeleteUserResponse{
				Message: "Permissions denied, can't delete this user", ErrorDelete: true,
			})
		case errors.Is(err, services.ErrUserNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.DeleteUserResponse{
				Message: "Can't find this user", ErrorDelete: true,
			})
		}
		return h.internalError(c, "delete_user", err)
	}

	return c.JSON(dto.DeleteUserResponse{
		Message:     "User successfully deleted",
		User:        user,
		ErrorDelete: false,
	})
}

// internalError logs and reports a store or signing failure. The message is
// returned to the caller; stack traces never are.
func (h *UserHandler) internalError(c *fiber.Ctx, action string, err error) error {
	attrs := []any{"action", action, "error", err, "method", c.Method(), "path", c.Path()}
	if rid, ok := c.Locals("requestid").(string); ok {
		attrs = append(attrs, "request_id", rid)
	}
	if id := callerID(c); id != "" {
		attrs = append(attrs, "user_id", id)
	}
	slog.ErrorContext(c.UserContext(), "request failed", attrs...)

	if hub := sentryfiber.GetHubFromContext(c); hub != nil {
		hub.CaptureException(err)
	}

	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Error:        true,
		Message:      "Internal Server Error",
		ErrorMessage: err.Error(),
	})
}

func callerID(c *fiber.Ctx) string {
	if claims, ok := middleware.Identity(c); ok {
		return claims.UserID
	}
	return ""
}
