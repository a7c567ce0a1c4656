package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/edmorua/admin-user-back/internal/credentials"
	"github.com/edmorua/admin-user-back/internal/models"
	"github.com/edmorua/admin-user-back/internal/store"
	"github.com/edmorua/admin-user-back/internal/token"
)

var (
	ErrValidation      = errors.New("validation failed")
	ErrMissingFields   = errors.New("name, email or password not found")
	ErrMissingLogin    = errors.New("email and password are required for login")
	ErrEmailTaken      = errors.New("email already registered")
	ErrUserNotFound    = errors.New("user not found")
	ErrInvalidPassword = errors.New("invalid password")
	ErrForbidden       = errors.New("permission denied")
	ErrNothingToUpdate = errors.New("nothing to update")
	ErrMissingIdentity = errors.New("token carries no user id")
)

// ValidationError carries the message shown to the client for a malformed
// email or password. It matches ErrValidation with errors.Is.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

var (
	errBadEmail    = &ValidationError{Message: "invalid email"}
	errBadPassword = &ValidationError{Message: fmt.Sprintf(
		"invalid password, please enter a password with %d or more characters", credentials.MinPasswordLength)}
)

// RegisterInput is the registration payload. All three fields are required.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// Session is what a successful register or sign-in hands back.
type Session struct {
	UserID string
	Token  string
}

type AccountService struct {
	repo    store.Repository
	hasher  *credentials.MultiHasher
	tokens  *token.Service
	timeout time.Duration
}

func NewAccountService(repo store.Repository, hasher *credentials.MultiHasher, tokens *token.Service, timeout time.Duration) *AccountService {
	return &AccountService{
		repo:    repo,
		hasher:  hasher,
		tokens:  tokens,
		timeout: timeout,
	}
}

func (s *AccountService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	if in.Name == "" || in.Email == "" || in.Password == "" {
		return nil, ErrMissingFields
	}
	if !credentials.ValidEmail(in.Email) {
		return nil, errBadEmail
	}
	if !credentials.ValidPassword(in.Password) {
		return nil, errBadPassword
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if _, err := s.repo.FindByEmail(ctx, in.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	digest, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.repo.Create(ctx, &models.User{
		Name:     in.Name,
		Email:    in.Email,
		Password: digest,
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return s.issue(user)
}

func (s *AccountService) SignIn(ctx context.Context, email, password string) (*Session, error) {
	if email == "" || password == "" {
		return nil, ErrMissingLogin
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	ok, err := s.hasher.Compare(user.Password, password)
	if err != nil {
		return nil, fmt.Errorf("failed to compare password: %w", err)
	}
	if !ok {
		return nil, ErrInvalidPassword
	}

	if s.hasher.NeedsRehash(user.Password) {
		s.rehash(ctx, user.ID, password)
	}

	return s.issue(user)
}

// rehash upgrades a digest written by an older hasher. Failure only costs
// the upgrade, never the sign-in.
func (s *AccountService) rehash(ctx context.Context, id, password string) {
	digest, err := s.hasher.Hash(password)
	if err == nil {
		_, err = s.repo.UpdateFields(ctx, id, models.UserUpdate{Password: &digest})
	}
	if err != nil {
		slog.Warn("password rehash failed", "user_id", id, "error", err)
		return
	}
	slog.Info("password digest upgraded", "user_id", id)
}

func (s *AccountService) issue(user *models.User) (*Session, error) {
	tok, err := s.tokens.Issue(token.Identity{UserID: user.ID, Email: user.Email})
	if err != nil {
		return nil, err
	}
	return &Session{UserID: user.ID, Token: tok}, nil
}

// Profile returns the caller's own record, provided it is still active.
func (s *AccountService) Profile(ctx context.Context, userID string) (*models.User, error) {
	if userID == "" {
		return nil, ErrMissingIdentity
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	user, err := s.repo.FindActiveByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find profile: %w", err)
	}
	return user, nil
}

func (s *AccountService) List(ctx context.Context) ([]models.User, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	users, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}

// Get looks a user up regardless of the active flag.
func (s *AccountService) Get(ctx context.Context, userID string) (*models.User, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// UpdateInput holds the optional update fields. Nil and empty strings both
// mean "not supplied".
type UpdateInput struct {
	Name     *string
	Email    *string
	Password *string
}

// Update changes the caller's own record. callerID must equal targetID.
func (s *AccountService) Update(ctx context.Context, callerID, targetID string, in UpdateInput) (*models.User, error) {
	if callerID == "" || callerID != targetID {
		return nil, ErrForbidden
	}

	update := models.UserUpdate{
		Name:     supplied(in.Name),
		Email:    supplied(in.Email),
		Password: supplied(in.Password),
	}
	if update.Empty() {
		return nil, ErrNothingToUpdate
	}

	if update.Email != nil && !credentials.ValidEmail(*update.Email) {
		return nil, errBadEmail
	}
	if update.Password != nil {
		if !credentials.ValidPassword(*update.Password) {
			return nil, errBadPassword
		}
		digest, err := s.hasher.Hash(*update.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		update.Password = &digest
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	user, err := s.repo.UpdateFields(ctx, targetID, update)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			return nil, ErrUserNotFound
		case errors.Is(err, store.ErrDuplicateEmail):
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

// Delete soft-deletes the caller's own record. Deleting an already inactive
// record reports ErrUserNotFound.
func (s *AccountService) Delete(ctx context.Context, callerID, targetID string) (*models.User, error) {
	if callerID == "" || callerID != targetID {
		return nil, ErrForbidden
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	user, err := s.repo.SoftDelete(ctx, targetID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to delete user: %w", err)
	}
	return user, nil
}

func supplied(v *string) *string {
	if v == nil || *v == "" {
		return nil
	}
	return v
}
