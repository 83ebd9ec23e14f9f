package repository

import (
	"fmt"

	"github.com/amirphl/repair-desk/models"
	"gorm.io/gorm"
)

// AutoMigrate creates or updates the repair desk tables and their foreign keys
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Customer{},
		&models.Technician{},
		&models.RepairTicket{},
		&models.SequenceCounter{},
	); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}
