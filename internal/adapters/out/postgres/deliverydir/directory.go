// Package deliverydir resolves delivery-person ids to display names from the
// delivery_persons table.
package deliverydir

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"orderflow/internal/pkg/errs"
)

// DeliveryPersonDTO represents the database structure for delivery-person
// records. Rows are maintained by the staff administration tooling; this
// package only reads them.
type DeliveryPersonDTO struct {
	ID          int64  `gorm:"primaryKey"`
	DisplayName string `gorm:"type:varchar(256)"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName specifies the database table name for delivery persons.
func (DeliveryPersonDTO) TableName() string {
	return "delivery_persons"
}

// GormDeliveryPersonDirectory implements name lookups using GORM.
type GormDeliveryPersonDirectory struct {
	db *gorm.DB
}

// NewGormDeliveryPersonDirectory creates a new GORM delivery-person
// directory.
func NewGormDeliveryPersonDirectory(db *gorm.DB) *GormDeliveryPersonDirectory {
	return &GormDeliveryPersonDirectory{db: db}
}

// DisplayName returns the display name for the given delivery person.
func (d *GormDeliveryPersonDirectory) DisplayName(ctx context.Context, deliveryPersonID int64) (string, error) {
	if deliveryPersonID <= 0 {
		return "", errs.NewValueIsRequiredError("deliveryPersonId")
	}

	var dto DeliveryPersonDTO
	if err := d.db.WithContext(ctx).First(&dto, "id = ?", deliveryPersonID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", errs.NewObjectNotFoundError("delivery person", deliveryPersonID)
		}
		return "", err
	}

	return dto.DisplayName, nil
}
