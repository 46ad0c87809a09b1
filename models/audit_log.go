package models

import (
	"time"

	"gorm.io/datatypes"
)

// AuditLog is an append-only record of an operator or device action
type AuditLog struct {
	ID                  uint           `gorm:"primaryKey" json:"id"`
	Action              string         `gorm:"not null;index" json:"action"`
	SubjectType         string         `gorm:"not null;index" json:"subject_type"`
	SubjectID           string         `json:"subject_id"`
	PerformedByUserID   *uint          `json:"performed_by_user_id"`
	PerformedByUsername string         `json:"performed_by_username"`
	Details             datatypes.JSON `json:"details"`
	IPAddress           string         `json:"ip_address"`
	CreatedAt           time.Time      `gorm:"index:idx_audit_logs_created_at,sort:desc" json:"created_at"`
}

// TableName specifies the table name for the AuditLog model
func (AuditLog) TableName() string {
	return "audit_logs"
}
