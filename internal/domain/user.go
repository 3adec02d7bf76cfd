package domain

import (
	"regexp"
	"time"
)

type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// User is identified by phone number. Admins additionally carry a PIN.
type User struct {
	ID    string `json:"id"`
	Phone string `json:"phone"`
	City  string `json:"city,omitempty"`
	Role  Role   `json:"role"`
	Pin   string `json:"-"`
}

// Jordanian mobile numbers: exactly 9 digits, leading 7.
var phonePattern = regexp.MustCompile(`^7[0-9]{8}$`)

// ValidPhone reports whether the phone matches the required format.
func ValidPhone(phone string) bool {
	return phonePattern.MatchString(phone)
}

// Enrollment is a WhatsApp broadcast-list subscriber.
type Enrollment struct {
	ID        string    `json:"id"`
	Name      string    `json:"name,omitempty"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"createdAt"`
}
