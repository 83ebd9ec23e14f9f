package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/amirphl/repair-desk/models"
	"github.com/amirphl/repair-desk/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TicketRepositoryImpl implements TicketRepository interface
type TicketRepositoryImpl struct {
	*BaseRepository[models.RepairTicket]
	sequences SequenceCounterRepository
}

// NewTicketRepository creates a new ticket repository
func NewTicketRepository(db *gorm.DB, sequences SequenceCounterRepository) TicketRepository {
	return &TicketRepositoryImpl{
		BaseRepository: NewBaseRepository[models.RepairTicket](db),
		sequences:      sequences,
	}
}

// withNames joins the customer and technician names onto each ticket row
func (r *TicketRepositoryImpl) withNames(db *gorm.DB) *gorm.DB {
	return db.Model(&models.RepairTicket{}).
		Select("tickets.*, COALESCE(c.name, ?) AS customer_name, tech.name AS technician_name", models.UnknownCustomerName).
		Joins("LEFT JOIN customers c ON c.id = tickets.customer_id").
		Joins("LEFT JOIN technicians tech ON tech.id = tickets.technician_id")
}

// maxTicketNumber selects the highest numeric suffix among existing ticket codes
func (r *TicketRepositoryImpl) maxTicketNumber() *gorm.DB {
	pattern := fmt.Sprintf("^%s-[0-9]+$", utils.TicketIDPrefix)
	return r.DB.Session(&gorm.Session{NewDB: true}).
		Model(&models.RepairTicket{}).
		Select("COALESCE(MAX(CAST(SUBSTRING(id FROM '[0-9]+$') AS BIGINT)), 0)").
		Where("id ~ ?", pattern)
}

// GetAll returns every ticket, newest created first
func (r *TicketRepositoryImpl) GetAll(ctx context.Context) ([]models.RepairTicket, error) {
	var tickets []models.RepairTicket
	err := r.withNames(r.getDB(ctx)).
		Order("tickets.created_at DESC").
		Order("LENGTH(tickets.id) DESC").
		Order("tickets.id DESC").
		Find(&tickets).Error
	if err != nil {
		return nil, toStoreError("list tickets", err)
	}
	return tickets, nil
}

// ByID returns the ticket or nil when it does not exist
func (r *TicketRepositoryImpl) ByID(ctx context.Context, id string) (*models.RepairTicket, error) {
	var ticket models.RepairTicket
	err := r.withNames(r.getDB(ctx)).Where("tickets.id = ?", id).First(&ticket).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, toStoreError("get ticket", err)
	}
	return &ticket, nil
}

// Create assigns the next ticket code and persists the ticket in one transaction
func (r *TicketRepositoryImpl) Create(ctx context.Context, ticket models.RepairTicket) (models.RepairTicket, error) {
	var created *models.RepairTicket
	err := r.withWrite(ctx, func(ctx context.Context, db *gorm.DB) error {
		n, err := r.sequences.Next(ctx, models.TicketSequenceName, r.maxTicketNumber())
		if err != nil {
			return err
		}

		ticket.ID = models.FormatTicketID(n)
		ticket.CustomerName = ""
		ticket.TechnicianName = nil
		ticket.CreatedAt = utils.UTCNow()
		ticket.UpdatedAt = ticket.CreatedAt
		ticket.ApplyIntakeDefaults(ticket.CreatedAt)

		if err := db.Omit(clause.Associations).Create(&ticket).Error; err != nil {
			return toStoreError("create ticket", err)
		}

		created, err = r.ByID(ctx, ticket.ID)
		if err != nil {
			return err
		}
		if created == nil {
			return notFound("create ticket", "ticket", ticket.ID)
		}
		return nil
	})
	if err != nil {
		return models.RepairTicket{}, toStoreError("create ticket", err)
	}
	return *created, nil
}

// Update applies only the fields present in patch, refreshing updated_at and
// stamping completed_at on the way into completion
func (r *TicketRepositoryImpl) Update(ctx context.Context, id string, patch models.TicketPatch) (models.RepairTicket, error) {
	var updated *models.RepairTicket
	err := r.withWrite(ctx, func(ctx context.Context, db *gorm.DB) error {
		if err := r.updateColumns(db, "update ticket", "ticket", id, patch.Columns(utils.UTCNow())); err != nil {
			return err
		}
		ticket, err := r.ByID(ctx, id)
		if err != nil {
			return err
		}
		if ticket == nil {
			return notFound("update ticket", "ticket", id)
		}
		updated = ticket
		return nil
	})
	if err != nil {
		return models.RepairTicket{}, toStoreError("update ticket", err)
	}
	return *updated, nil
}

// Delete removes the ticket. Its code is never reissued.
func (r *TicketRepositoryImpl) Delete(ctx context.Context, id string) error {
	return r.deleteByID(ctx, "delete ticket", "ticket", id)
}
