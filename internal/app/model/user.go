package model

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

type UserRole string // staff account role

const (
	RoleAdmin    UserRole = "admin"    // full access, including deletions
	RoleReviewer UserRole = "reviewer" // may review applications
	RoleViewer   UserRole = "viewer"   // read-only access
)

// User is a staff account of the association's back office. Public
// applicants never get an account; they only hold an application code.
type User struct {
	ID           uint     `gorm:"primarykey" json:"id"`
	Email        string   `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string   `gorm:"not null" json:"-"`
	Name         string   `gorm:"not null" json:"name"`
	Role         UserRole `gorm:"type:varchar(20);default:'viewer'" json:"role"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// rolePermissions maps each role to the "resource:action" capabilities it
// holds. Deletion stays admin-only.
var rolePermissions = map[UserRole]map[string]bool{
	RoleAdmin: {
		"applications:view":   true,
		"applications:edit":   true,
		"applications:delete": true,
		"members:view":        true,
		"members:edit":        true,
	},
	RoleReviewer: {
		"applications:view": true,
		"applications:edit": true,
		"members:view":      true,
	},
	RoleViewer: {
		"applications:view": true,
		"members:view":      true,
	},
}

// Can reports whether the role holds the given capability.
func (r UserRole) Can(resource, action string) bool {
	perms, ok := rolePermissions[r]
	if !ok {
		return false
	}
	return perms[fmt.Sprintf("%s:%s", resource, action)]
}
