// Package user defines lead and admin account types.
package user

import "time"

// Lead is a submitted enquiry from the marketing site, stored together with
// the attribution snapshot assembled at submission time.
type Lead struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Phone       string    `json:"phone"`
	Email       string    `json:"email,omitempty"`
	Message     string    `json:"message,omitempty"`
	PropertyID  string    `json:"propertyId,omitempty"`
	Attribution string    `json:"attribution,omitempty"` // JSON-encoded snapshot
	CreatedAt   time.Time `json:"createdAt"`
}

// AdminUser is a back-office account.
type AdminUser struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}
