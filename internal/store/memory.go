package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/edmorua/admin-user-back/internal/models"
	"github.com/google/uuid"
)

// MemoryRepository keeps records in process memory. It backs DB_DRIVER=memory
// and the service tests.
type MemoryRepository struct {
	mu    sync.RWMutex
	users map[string]models.User
	logs  []models.SystemLog
	now   func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		users: make(map[string]models.User),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (r *MemoryRepository) Create(_ context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, ErrDuplicateEmail
		}
	}

	now := r.now()
	created := *user
	created.ID = uuid.NewString()
	created.Created = now
	created.Updated = now
	created.Active = true
	r.users[created.ID] = created

	return &created, nil
}

func (r *MemoryRepository) FindByID(_ context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (r *MemoryRepository) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryRepository) FindActiveByID(ctx context.Context, id string) (*models.User, error) {
	u, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !u.Active {
		return nil, ErrNotFound
	}
	return u, nil
}

func (r *MemoryRepository) UpdateFields(_ context.Context, id string, update models.UserUpdate) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	if update.Email != nil {
		for otherID, other := range r.users {
			if otherID != id && other.Email == *update.Email {
				return nil, ErrDuplicateEmail
			}
		}
	}

	applyUpdate(&u, update, r.now())
	r.users[id] = u
	return &u, nil
}

func (r *MemoryRepository) SoftDelete(_ context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok || !u.Active {
		return nil, ErrNotFound
	}
	u.Active = false
	u.Updated = r.now()
	r.users[id] = u
	return &u, nil
}

func (r *MemoryRepository) ListActive(_ context.Context) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]models.User, 0, len(r.users))
	for _, u := range r.users {
		if u.Active {
			users = append(users, u)
		}
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].Created.Before(users[j].Created)
	})
	return users, nil
}

func (r *MemoryRepository) EnsureSchema(context.Context) error { return nil }
func (r *MemoryRepository) Ping(context.Context) error         { return nil }
func (r *MemoryRepository) Close(context.Context) error        { return nil }

func (r *MemoryRepository) WriteLogs(_ context.Context, entries []models.SystemLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, entries...)
	return nil
}

func (r *MemoryRepository) PurgeLogs(_ context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.logs[:0]
	var removed int64
	for _, l := range r.logs {
		if l.Timestamp.Before(before) {
			removed++
			continue
		}
		kept = append(kept, l)
	}
	r.logs = kept
	return removed, nil
}

// Logs returns a copy of the stored log entries.
func (r *MemoryRepository) Logs() []models.SystemLog {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]models.SystemLog(nil), r.logs...)
}
