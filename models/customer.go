package models

import (
	"time"
	"unicode"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Customer struct {
	Id          string    `json:"id" gorm:"primaryKey;type:uuid"`
	Name        string    `json:"name" gorm:"not null"`
	Email       string    `json:"email" gorm:"not null"`
	Address     string    `json:"address" gorm:"not null"`
	TaxNumber   string    `json:"tax_number"`
	PhoneNumber string    `json:"phone_number"`
	InvoiceCode string    `json:"invoice_code" gorm:"type:varchar(10);not null"`
	Archived    bool      `json:"archived" gorm:"not null;default:false;index"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (customer *Customer) BeforeCreate(tx *gorm.DB) (err error) {
	if customer.Id == "" {
		customer.Id = uuid.NewString()
	}
	if customer.InvoiceCode == "" {
		customer.InvoiceCode = DefaultInvoiceCode(customer.Name)
	}
	return
}

// DefaultInvoiceCode is the first two letters of name, upper-cased.
func DefaultInvoiceCode(name string) string {
	letters := make([]rune, 0, 2)
	for _, r := range name {
		if unicode.IsLetter(r) {
			letters = append(letters, unicode.ToUpper(r))
		}
		if len(letters) == 2 {
			break
		}
	}
	return string(letters)
}
