package model

import "time"

// User is an account that can sign in with local password authentication.
// The columns mirror the platform's auth.users table.
type User struct {
	ID                string    `gorm:"column:id;primaryKey"`
	Email             string    `gorm:"column:email"`
	EncryptedPassword string    `gorm:"column:encrypted_password"`
	CreatedAt         time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (User) TableName() string {
	return "users"
}
