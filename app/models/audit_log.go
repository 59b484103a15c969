package models

import "time"

// Audit actions recorded by the security/billing paths.
const (
	AuditActionTryOnCreated        = "tryon_created"
	AuditActionSDKTryOnCreated     = "sdk_tryon_created"
	AuditActionPluginTryOnCreated  = "plugin_tryon_created"
	AuditActionTryOnDeleted        = "tryon_deleted"
	AuditActionIntegrationCreated  = "integration_created"
	AuditActionSubscribed          = "subscription_started"
	AuditActionSubscriptionUpgrade = "subscription_upgraded"
	AuditActionSubscriptionCancel  = "subscription_cancelled"
	AuditActionAdminPurge          = "admin_purge_cache"
)

// AuditLog is an append-only record of security/billing-relevant events.
type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Action    string    `gorm:"type:varchar(50);not null;index" json:"action"`
	Detail    string    `gorm:"type:longtext" json:"detail"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
