package models

import "time"

// Role names stored on users. Admins implicitly hold every permission.
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleUser    = "user"
)

// Permission is a named capability, grouped by category.
type Permission struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"uniqueIndex;not null"`
	Category    string    `json:"category" gorm:"not null;default:''"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// UserPermission is the grant table between users and permissions.
type UserPermission struct {
	UserID       uint       `json:"user_id" gorm:"primaryKey"`
	PermissionID uint       `json:"permission_id" gorm:"primaryKey"`
	User         User       `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Permission   Permission `json:"-" gorm:"foreignKey:PermissionID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time  `json:"created_at"`
}

// TableName overrides the table name for UserPermission to be `user_permissions`
func (UserPermission) TableName() string {
	return "user_permissions"
}
