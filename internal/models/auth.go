package models

import "time"

type User struct {
	Base
	Username     string   `gorm:"uniqueIndex;not null" json:"username" validate:"required,min=2"`
	Email        string   `gorm:"uniqueIndex;not null" json:"email" validate:"required,email"`
	PasswordHash string   `gorm:"not null" json:"-"`
	Role         UserRole `gorm:"not null;default:'user'" json:"role"`
	IsActive     bool     `gorm:"not null;default:true" json:"isActive"`

	Permissions    []UserPermission    `gorm:"foreignKey:UserID" json:"permissions,omitempty"`
	PermissionSets []UserPermissionSet `gorm:"foreignKey:UserID" json:"permissionSets,omitempty"`
}

// IsAdmin reports whether the user bypasses all permission checks.
func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}

// AuthSession records one issued login token. Logout deletes the row, which
// invalidates the token even before it expires.
type AuthSession struct {
	Base
	UserID    string    `gorm:"type:uuid;not null;index" json:"userId"`
	User      *User     `json:"user,omitempty"`
	Token     string    `gorm:"not null;index" json:"-"`
	IPAddress string    `json:"ipAddress"`
	UserAgent string    `json:"userAgent"`
	ExpiresAt time.Time `gorm:"not null" json:"expiresAt"`
}
