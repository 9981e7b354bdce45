package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// User lives in the public schema; SchemaName points at the tenant schema
// holding the user's customers and invoices.
type User struct {
	Id         string    `json:"id" gorm:"primaryKey"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	Address    string    `json:"address"`
	Password   []byte    `json:"-" gorm:"not null"`
	Email      string    `json:"email" gorm:"unique;not null"`
	SchemaName string    `json:"-" gorm:"unique;not null"`
	CreatedAt  time.Time `json:"created_at"`
}

func (user *User) BeforeCreate(tx *gorm.DB) (err error) {
	if user.Id == "" {
		user.Id = uuid.NewString()
	}
	return
}

func (user *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return err
	}
	user.Password = hashedPassword
	return nil
}

func (user *User) ComparePassword(password string) error {
	return bcrypt.CompareHashAndPassword(user.Password, []byte(password))
}

// Onboarded reports whether the profile used on invoices is complete.
func (user *User) Onboarded() bool {
	return strings.TrimSpace(user.FirstName) != "" &&
		strings.TrimSpace(user.LastName) != "" &&
		strings.TrimSpace(user.Address) != ""
}

// TenantSchemaName derives the tenant schema for a user id.
func TenantSchemaName(userID string) string {
	return "tenant_" + strings.ReplaceAll(userID, "-", "")
}
