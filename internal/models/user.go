package models

import (
	"time"
)

type UserRole string

const (
	RoleCentralOffice UserRole = "Central Office"
	RoleFieldOfficer  UserRole = "Field Officer"
	RoleLGU           UserRole = "LGU"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleCentralOffice, RoleFieldOfficer, RoleLGU:
		return true
	}
	return false
}

// ParseUserRole accepts display names as well as short forms used in seed files.
func ParseUserRole(s string) (UserRole, bool) {
	switch s {
	case "Central Office", "central_office", "admin":
		return RoleCentralOffice, true
	case "Field Officer", "field_officer", "field":
		return RoleFieldOfficer, true
	case "LGU", "lgu":
		return RoleLGU, true
	default:
		return "", false
	}
}

type User struct {
	ID        string    `json:"id" firestore:"id" gorm:"primaryKey;size:64"`
	Name      string    `json:"name" firestore:"name" gorm:"not null"`
	Email     string    `json:"email" firestore:"email" gorm:"uniqueIndex;not null"`
	Password  string    `json:"-" firestore:"password" gorm:"not null"`
	Role      UserRole  `json:"role" firestore:"role" gorm:"not null;default:'Field Officer'"`
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" firestore:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}
