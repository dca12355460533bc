package domain

import "time"

// Account roles
const (
	RoleCustomer = "customer" // Storefront shopper
	RoleAdmin    = "admin"    // Shop owner
	RoleSubadmin = "subadmin" // Staff account provisioned by an admin
)

// User Model
type User struct {
	ID                  uint       `gorm:"primaryKey" json:"id"`                                 // Primary key
	Name                string     `gorm:"size:100;not null" json:"name"`                        // Display name
	Phone               string     `gorm:"size:20;uniqueIndex;not null" json:"phone"`            // Unique across every role
	Email               *string    `gorm:"size:100;uniqueIndex" json:"email"`                    // Optional, unique when set
	Role                string     `gorm:"size:20;not null;default:customer;index" json:"role"`  // customer, admin or subadmin
	Slug                string     `gorm:"size:150;uniqueIndex;not null" json:"slug"`            // URL-safe identifier derived from name
	IsVerified          bool       `gorm:"not null;default:false" json:"isVerified"`             // Phone ownership confirmed
	IsActive            bool       `gorm:"not null;default:true;index" json:"isActive"`          // Soft delete flag
	DateOfBirth         *time.Time `json:"dateOfBirth,omitempty"`                                // Used for birthday wishes
	AdditionalAddresses []string   `gorm:"serializer:json;type:text" json:"additionalAddresses"` // Secondary shipping addresses
	CreatedAt           time.Time  `json:"createdAt"`
	UpdatedAt           time.Time  `json:"updatedAt"`
}

// PublicUser is the account projection returned by the API
type PublicUser struct {
	ID         uint      `json:"id"`
	Name       string    `json:"name"`
	Phone      string    `json:"phone"`
	Email      *string   `json:"email"`
	Role       string    `json:"role"`
	IsActive   bool      `json:"isActive"`
	IsVerified bool      `json:"isVerified"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Public maps a user onto its API projection
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:         u.ID,
		Name:       u.Name,
		Phone:      u.Phone,
		Email:      u.Email,
		Role:       u.Role,
		IsActive:   u.IsActive,
		IsVerified: u.IsVerified,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}
