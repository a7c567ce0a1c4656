// Package store persists user records. Every backend applies each operation
// atomically to a single record; there are no cross-record transactions.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/edmorua/admin-user-back/internal/models"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicateEmail = errors.New("email already exists")
)

// Repository is the account store contract.
type Repository interface {
	// Create assigns id, timestamps and active=true. It fails with
	// ErrDuplicateEmail when any record, active or not, has the email.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindActiveByID(ctx context.Context, id string) (*models.User, error)
	// UpdateFields merges the supplied fields and always refreshes Updated.
	UpdateFields(ctx context.Context, id string, update models.UserUpdate) (*models.User, error)
	// SoftDelete flips active to false only when the record is still active.
	SoftDelete(ctx context.Context, id string) (*models.User, error)
	ListActive(ctx context.Context) ([]models.User, error)

	EnsureSchema(ctx context.Context) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error

	LogSink
}

// LogSink receives batches of error logs and prunes old ones.
type LogSink interface {
	WriteLogs(ctx context.Context, entries []models.SystemLog) error
	PurgeLogs(ctx context.Context, before time.Time) (int64, error)
}

func applyUpdate(u *models.User, update models.UserUpdate, now time.Time) {
	if update.Name != nil {
		u.Name = *update.Name
	}
	if update.Email != nil {
		u.Email = *update.Email
	}
	if update.Password != nil {
		u.Password = *update.Password
	}
	u.Updated = now
}
