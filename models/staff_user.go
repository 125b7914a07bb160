package models

import "time"

// StaffUser is a staff portal account. Passwords are bcrypt hashes.
type StaffUser struct {
	UserID       int        `gorm:"primaryKey;autoIncrement;column:user_id" json:"user_id"`
	Username     string     `gorm:"column:username;size:50;uniqueIndex" json:"username"`
	Email        string     `gorm:"column:email;size:254" json:"email"`
	PasswordHash string     `gorm:"column:password_hash;size:100" json:"-"`
	IsSuperuser  bool       `gorm:"column:is_superuser" json:"is_superuser"`
	CreateAt     time.Time  `gorm:"column:create_at" json:"create_at"`
	UpdateAt     time.Time  `gorm:"column:update_at" json:"update_at"`
	DeleteAt     *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`
}

func (StaffUser) TableName() string { return "staff_users" }
