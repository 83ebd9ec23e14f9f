package repository

import (
	"context"

	"github.com/amirphl/repair-desk/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

// Store is the CRUD contract shared by every entity store.
// All methods fail with *StoreError.
type Store[T any, ID comparable, P any] interface {
	GetAll(ctx context.Context) ([]T, error)
	Create(ctx context.Context, entity T) (T, error)
	Update(ctx context.Context, id ID, patch P) (T, error)
	Delete(ctx context.Context, id ID) error
}

// CustomerRepository lists customers newest first
type CustomerRepository interface {
	Store[models.Customer, uuid.UUID, models.CustomerPatch]
	ByID(ctx context.Context, id uuid.UUID) (*models.Customer, error)
}

// TechnicianRepository lists technicians by name
type TechnicianRepository interface {
	Store[models.Technician, uuid.UUID, models.TechnicianPatch]
	ByID(ctx context.Context, id uuid.UUID) (*models.Technician, error)
}

// TicketRepository lists tickets newest first with customer and technician names joined
type TicketRepository interface {
	Store[models.RepairTicket, string, models.TicketPatch]
	ByID(ctx context.Context, id string) (*models.RepairTicket, error)
}

// SequenceCounterRepository hands out monotonic values per counter name
type SequenceCounterRepository interface {
	// Next increments the named counter and returns the new value. On first use the
	// counter is seeded with the scalar produced by seed (nil seeds with 0).
	Next(ctx context.Context, name string, seed *gorm.DB) (int64, error)
}
