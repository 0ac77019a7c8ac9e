package models

import (
	"time"

	"gorm.io/datatypes"
)

type WebhookLogStatus string

const (
	WebhookLogStatusReceived     WebhookLogStatus = "received"
	WebhookLogStatusHandled      WebhookLogStatus = "handled"
	WebhookLogStatusHandleFailed WebhookLogStatus = "handle_failed"
)

// WebhookLog is an audit record of one webhook delivery. Use case:
// troubleshooting redeliveries and failed events.
type WebhookLog struct {
	ID        string           `gorm:"column:id;type:uuid;primary_key" json:"id"`
	Provider  string           `gorm:"column:provider;type:varchar(32);not null" json:"provider"`
	EventType string           `gorm:"column:event_type;type:varchar(64);not null" json:"event_type"`
	TraceID   string           `gorm:"column:trace_id;type:varchar(128)" json:"trace_id"`
	Payload   datatypes.JSON   `gorm:"column:payload;type:jsonb" json:"payload"`
	Result    *datatypes.JSON  `gorm:"column:result;type:jsonb" json:"result"`
	Status    WebhookLogStatus `gorm:"column:status;type:varchar(32);not null" json:"status"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

func (WebhookLog) TableName() string {
	return "webhook_log"
}
