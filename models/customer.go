// Package models contains domain entities and persistence models for the repair desk
package models

import (
	"time"

	"github.com/amirphl/repair-desk/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Customer is a person who brings devices in for repair.
// Table: customers
// Referenced by tickets.customer_id (ON DELETE RESTRICT)
type Customer struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null;index:idx_customers_name" json:"name"`
	Email     string    `gorm:"size:255;not null;index:idx_customers_email" json:"email"`
	Phone     string    `gorm:"size:32;not null;default:''" json:"phone"`
	Address   string    `gorm:"type:text;not null;default:''" json:"address"`
	CreatedAt time.Time `gorm:"not null;default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_customers_created_at" json:"createdAt"`
}

func (Customer) TableName() string {
	return "customers"
}

// BeforeCreate assigns the identity and creation time when the caller did not
func (c *Customer) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = utils.UTCNow()
	}
	return nil
}

// CustomerPatch is a sparse update: nil fields are left untouched
type CustomerPatch struct {
	Name    *string `json:"name,omitempty"`
	Email   *string `json:"email,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Address *string `json:"address,omitempty"`
}

// Columns returns the snake_case column assignments carried by the patch
func (p CustomerPatch) Columns() map[string]any {
	cols := make(map[string]any)
	if p.Name != nil {
		cols["name"] = *p.Name
	}
	if p.Email != nil {
		cols["email"] = *p.Email
	}
	if p.Phone != nil {
		cols["phone"] = *p.Phone
	}
	if p.Address != nil {
		cols["address"] = *p.Address
	}
	return cols
}

// Apply merges the patch into a copy of c
func (p CustomerPatch) Apply(c Customer) Customer {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Email != nil {
		c.Email = *p.Email
	}
	if p.Phone != nil {
		c.Phone = *p.Phone
	}
	if p.Address != nil {
		c.Address = *p.Address
	}
	return c
}
