package models

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var ErrEmptyPassword = errors.New("password must not be empty")

// User is an administrator allowed to edit the catalog.
type User struct {
	gorm.Model
	Username string `gorm:"type:varchar(191);uniqueIndex;not null" json:"username"`
	Password string `gorm:"not null" json:"-"`
}

// HashPassword replaces the stored hash. Empty passwords are refused.
func (u *User) HashPassword(password string) error {
	if password == "" {
		return ErrEmptyPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hash)
	return nil
}

func (u *User) CheckPassword(password string) bool {
	if u.Password == "" || password == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) == nil
}
