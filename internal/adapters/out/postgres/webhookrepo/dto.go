// Package webhookrepo provides data transfer objects and mapping functions
// for webhook subscription persistence.
package webhookrepo

import (
	"time"

	"orderflow/internal/core/domain/model/webhook"
)

// SubscriptionDTO represents the database structure for persisting webhook
// subscriptions.
type SubscriptionDTO struct {
	ID              int64  `gorm:"primaryKey"`
	URL             string `gorm:"type:varchar(2048)"`
	EventType       string `gorm:"index;type:varchar(64)"`
	Secret          string `gorm:"type:varchar(256)"`
	IsActive        bool   `gorm:"index"`
	SuccessCount    int64
	FailureCount    int64
	LastTriggeredAt *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TableName specifies the database table name for webhook subscriptions.
func (SubscriptionDTO) TableName() string {
	return "webhook_subscriptions"
}

func fromDomain(subscription *webhook.Subscription) SubscriptionDTO {
	return SubscriptionDTO{
		ID:              subscription.ID(),
		URL:             subscription.URL(),
		EventType:       subscription.EventType(),
		Secret:          subscription.Secret(),
		IsActive:        subscription.IsActive(),
		SuccessCount:    subscription.SuccessCount(),
		FailureCount:    subscription.FailureCount(),
		LastTriggeredAt: subscription.LastTriggeredAt(),
	}
}

func toDomain(dto SubscriptionDTO) (*webhook.Subscription, error) {
	return webhook.RestoreSubscription(
		dto.ID,
		dto.URL,
		dto.EventType,
		dto.Secret,
		dto.IsActive,
		dto.SuccessCount,
		dto.FailureCount,
		dto.LastTriggeredAt,
	)
}
