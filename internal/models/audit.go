// internal/models/audit.go
package models

import "github.com/google/uuid"

// AuditLog records every state-changing HTTP request for operator review.
// This is API-surface telemetry, separate from the ledger event log.
type AuditLog struct {
	BaseModel
	UserID       *uuid.UUID `json:"user_id" gorm:"type:uuid;index"`
	Account      string     `json:"account" gorm:"size:42;index"`
	Action       string     `json:"action" gorm:"size:255;not null"`
	ResourceType string     `json:"resource_type" gorm:"size:50;index"`
	StatusCode   int        `json:"status_code"`
	IPAddress    string     `json:"ip_address" gorm:"size:45"`
	UserAgent    string     `json:"user_agent" gorm:"size:500"`
	RequestBody  JSONB      `json:"request_body" gorm:"type:jsonb"`
}
