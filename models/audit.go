package models

import "time"

// AuditEntry records a graph mutation or a grant change and the user who
// made it. Code names the person changed; TargetUserID and Detail describe
// grant changes.
type AuditEntry struct {
	ID           string    `json:"id" gorm:"primaryKey;size:36"`
	UserID       uint      `json:"user_id" gorm:"index"`
	Action       string    `json:"action" gorm:"not null"`
	Code         string    `json:"code,omitempty" gorm:"size:32;index"`
	TargetUserID uint      `json:"target_user_id,omitempty"`
	Detail       string    `json:"detail,omitempty"`
	CreatedAt    time.Time `json:"created_at" gorm:"index"`
}

func (AuditEntry) TableName() string {
	return "audit_logs"
}
