package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/edmorua/admin-user-back/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const pgUniqueViolation = "23505"

// GormRepository stores users in a PostgreSQL table through GORM.
type GormRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (r *GormRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	now := r.now()
	created := models.User{
		ID:       uuid.NewString(),
		Name:     user.Name,
		Email:    user.Email,
		Password: user.Password,
		Created:  now,
		Updated:  now,
		Active:   true,
	}

	if err := r.db.WithContext(ctx).Create(&created).Error; err != nil {
		if isDuplicate(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &created, nil
}

func (r *GormRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	return r.first(ctx, "id = ?", id)
}

func (r *GormRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *GormRepository) FindActiveByID(ctx context.Context, id string) (*models.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	return r.first(ctx, "id = ? AND active = ?", id, true)
}

func (r *GormRepository) first(ctx context.Context, query string, args ...interface{}) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where(query, args...).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &user, nil
}

func (r *GormRepository) UpdateFields(ctx context.Context, id string, update models.UserUpdate) (*models.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}

	values := map[string]interface{}{"updated": r.now()}
	if update.Name != nil {
		values["name"] = *update.Name
	}
	if update.Email != nil {
		values["email"] = *update.Email
	}
	if update.Password != nil {
		values["password"] = *update.Password
	}

	return r.updateReturning(ctx, values, "id = ?", id)
}

func (r *GormRepository) SoftDelete(ctx context.Context, id string) (*models.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	values := map[string]interface{}{
		"active":  false,
		"updated": r.now(),
	}
	return r.updateReturning(ctx, values, "id = ? AND active = ?", id, true)
}

// updateReturning runs a single conditional UPDATE ... RETURNING *.
func (r *GormRepository) updateReturning(ctx context.Context, values map[string]interface{}, query string, args ...interface{}) (*models.User, error) {
	var user models.User
	res := r.db.WithContext(ctx).
		Model(&user).
		Clauses(clause.Returning{}).
		Where(query, args...).
		Updates(values)
	if res.Error != nil {
		if isDuplicate(res.Error) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to update user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return &user, nil
}

func (r *GormRepository) ListActive(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).Where("active = ?", true).Order("created ASC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (r *GormRepository) EnsureSchema(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&models.User{}, &models.SystemLog{})
}

func (r *GormRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *GormRepository) Close(context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (r *GormRepository) WriteLogs(ctx context.Context, entries []models.SystemLog) error {
	if len(entries) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(entries, 50).Error
}

func (r *GormRepository) PurgeLogs(ctx context.Context, before time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("timestamp < ?", before).Delete(&models.SystemLog{})
	return res.RowsAffected, res.Error
}

func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
