package domain

import "time"

// User is the single persisted entity. Password holds the bcrypt hash and is
// empty for accounts created without a password (seed/administrative path).
// ActivationToken is non-null exactly while the account awaits activation.
type User struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Username        string    `gorm:"not null" json:"username"`
	Email           string    `gorm:"uniqueIndex:ux_users_email;not null" json:"email"`
	Password        string    `gorm:"type:text" json:"-"`
	Inactive        bool      `gorm:"not null;default:true" json:"-"`
	ActivationToken *string   `gorm:"uniqueIndex:ux_users_activation_token" json:"-"`
	CreatedAt       time.Time `gorm:"not null" json:"-"`
	UpdatedAt       time.Time `gorm:"not null" json:"-"`
}

func (User) TableName() string { return "users" }
