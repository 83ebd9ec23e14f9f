package testing

import (
	"context"
	"fmt"
	"time"

	"github.com/amirphl/repair-desk/models"
	"github.com/amirphl/repair-desk/repository"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	db      *TestDB
	tickets repository.TicketRepository
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{
		db:      db,
		tickets: repository.NewTicketRepository(db.DB, repository.NewSequenceCounterRepository(db.DB)),
	}
}

// CreateTestCustomer inserts a customer with a unique email
func (tf *TestFixtures) CreateTestCustomer(name string) (*models.Customer, error) {
	customer := &models.Customer{
		ID:      uuid.New(),
		Name:    name,
		Email:   fmt.Sprintf("customer-%s@example.com", uuid.NewString()[:8]),
		Phone:   "(555) 010-0000",
		Address: "1 Main St",
	}
	if err := tf.db.DB.Create(customer).Error; err != nil {
		return nil, fmt.Errorf("failed to create test customer: %w", err)
	}
	return customer, nil
}

// CreateTestTechnician inserts a technician with the given specialties
func (tf *TestFixtures) CreateTestTechnician(name string, specialties ...string) (*models.Technician, error) {
	technician := &models.Technician{
		ID:          uuid.New(),
		Name:        name,
		Email:       fmt.Sprintf("tech-%s@example.com", uuid.NewString()[:8]),
		Specialties: pq.StringArray(specialties),
	}
	if err := tf.db.DB.Create(technician).Error; err != nil {
		return nil, fmt.Errorf("failed to create test technician: %w", err)
	}
	return technician, nil
}

// CreateTestTicket creates a ticket through the ticket repository so it receives the next RPR id
func (tf *TestFixtures) CreateTestTicket(customerID uuid.UUID, technicianID *uuid.UUID, status models.RepairStatus, priority models.Priority) (*models.RepairTicket, error) {
	ticket, err := tf.tickets.Create(context.Background(), models.RepairTicket{
		CustomerID:       customerID,
		TechnicianID:     technicianID,
		DeviceType:       "Smartphone",
		DeviceModel:      "Pixel 8",
		IssueDescription: "Cracked screen",
		EstimatedCost:    120,
		Status:           status,
		Priority:         priority,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create test ticket: %w", err)
	}
	return &ticket, nil
}

// BackdateTicket moves a ticket's creation time into the past
func (tf *TestFixtures) BackdateTicket(id string, createdAt time.Time) error {
	return tf.db.DB.Model(&models.RepairTicket{}).Where("id = ?", id).Update("created_at", createdAt).Error
}
