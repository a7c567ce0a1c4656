package models

import "time"

// User is a single account record. Records are never physically removed;
// Active=false marks a soft-deleted account.
type User struct {
	ID       string    `gorm:"type:uuid;primaryKey" json:"id"`
	Name     string    `gorm:"size:255;not null" json:"name"`
	Email    string    `gorm:"size:255;not null;uniqueIndex:idx_users_email" json:"email"`
	Password string    `gorm:"not null" json:"-"`
	Created  time.Time `gorm:"not null" json:"created"`
	Updated  time.Time `gorm:"not null" json:"updated"`
	Active   bool      `gorm:"not null;default:true;index" json:"active"`
}

func (User) TableName() string {
	return "users"
}

// UserUpdate carries the fields a self-update may change. Nil means "leave as is".
// Password, when set, must already be a digest.
type UserUpdate struct {
	Name     *string
	Email    *string
	Password *string
}

// Empty reports whether no field is set.
func (u UserUpdate) Empty() bool {
	return u.Name == nil && u.Email == nil && u.Password == nil
}
