package webhookrepo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"orderflow/internal/core/domain/model/webhook"
	"orderflow/internal/pkg/errs"
)

// GormWebhookSubscriptionRepository implements WebhookSubscriptionRepository
// using GORM. Counter updates are last-writer-wins; losing a count under
// concurrency is acceptable for delivery statistics.
type GormWebhookSubscriptionRepository struct {
	db *gorm.DB
}

// NewGormWebhookSubscriptionRepository creates a new GORM webhook
// subscription repository.
func NewGormWebhookSubscriptionRepository(db *gorm.DB) *GormWebhookSubscriptionRepository {
	return &GormWebhookSubscriptionRepository{db: db}
}

// Add saves a new subscription to the database.
func (r *GormWebhookSubscriptionRepository) Add(ctx context.Context, subscription *webhook.Subscription) error {
	if err := subscription.Validate(); err != nil {
		return err
	}

	dto := fromDomain(subscription)
	return r.db.WithContext(ctx).Create(&dto).Error
}

// Update saves an existing subscription to the database.
func (r *GormWebhookSubscriptionRepository) Update(ctx context.Context, subscription *webhook.Subscription) error {
	if err := subscription.Validate(); err != nil {
		return err
	}

	dto := fromDomain(subscription)
	result := r.db.WithContext(ctx).
		Model(&SubscriptionDTO{}).
		Where("id = ?", dto.ID).
		Select("*").
		Omit("id", "created_at").
		Updates(&dto)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("webhook subscription", subscription.ID())
	}

	return nil
}

// Get retrieves a subscription by ID.
func (r *GormWebhookSubscriptionRepository) Get(ctx context.Context, id int64) (*webhook.Subscription, error) {
	if id <= 0 {
		return nil, errs.NewValueIsRequiredError("subscriptionId")
	}

	var dto SubscriptionDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("webhook subscription", id)
		}
		return nil, err
	}

	return toDomain(dto)
}

// GetMatching retrieves all active subscriptions for the given event type.
func (r *GormWebhookSubscriptionRepository) GetMatching(ctx context.Context, eventType string) ([]*webhook.Subscription, error) {
	if eventType == "" {
		return nil, errs.NewValueIsRequiredError("eventType")
	}

	var dtos []SubscriptionDTO
	err := r.db.WithContext(ctx).
		Find(&dtos, "event_type = ? AND is_active = TRUE", eventType).Error
	if err != nil {
		return nil, err
	}

	subscriptions := make([]*webhook.Subscription, 0, len(dtos))
	for _, dto := range dtos {
		subscription, domainErr := toDomain(dto)
		if domainErr != nil {
			return nil, domainErr
		}
		subscriptions = append(subscriptions, subscription)
	}

	return subscriptions, nil
}
