package repository

import (
	"context"
	"errors"

	"github.com/amirphl/repair-desk/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// inactiveStatuses are excluded from a technician's active ticket count
var inactiveStatuses = []models.RepairStatus{models.StatusCompleted, models.StatusPickedUp, models.StatusCancelled}

// TechnicianRepositoryImpl implements TechnicianRepository interface
type TechnicianRepositoryImpl struct {
	*BaseRepository[models.Technician]
}

func NewTechnicianRepository(db *gorm.DB) TechnicianRepository {
	return &TechnicianRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Technician](db),
	}
}

// withActiveTickets projects the derived active ticket count
func (r *TechnicianRepositoryImpl) withActiveTickets(db *gorm.DB) *gorm.DB {
	return db.Model(&models.Technician{}).Select(
		"technicians.*, (SELECT COUNT(*) FROM tickets t WHERE t.technician_id = technicians.id AND t.status NOT IN ?) AS active_tickets",
		inactiveStatuses,
	)
}

// GetAll returns every technician ordered by name. The "C" collation keeps the order
// byte-wise so it matches the in-memory sort of the state container.
func (r *TechnicianRepositoryImpl) GetAll(ctx context.Context) ([]models.Technician, error) {
	var technicians []models.Technician
	err := r.withActiveTickets(r.getDB(ctx)).
		Order(`technicians.name COLLATE "C" ASC`).
		Order("technicians.id ASC").
		Find(&technicians).Error
	if err != nil {
		return nil, toStoreError("list technicians", err)
	}
	return technicians, nil
}

func (r *TechnicianRepositoryImpl) ByID(ctx context.Context, id uuid.UUID) (*models.Technician, error) {
	var technician models.Technician
	err := r.withActiveTickets(r.getDB(ctx)).Where("technicians.id = ?", id).First(&technician).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, toStoreError("get technician", err)
	}
	return &technician, nil
}

func (r *TechnicianRepositoryImpl) Create(ctx context.Context, technician models.Technician) (models.Technician, error) {
	technician.ID = uuid.Nil
	technician.ActiveTickets = 0
	err := r.withWrite(ctx, func(ctx context.Context, db *gorm.DB) error {
		return db.Create(&technician).Error
	})
	if err != nil {
		return models.Technician{}, toStoreError("create technician", err)
	}
	return technician, nil
}

func (r *TechnicianRepositoryImpl) Update(ctx context.Context, id uuid.UUID, patch models.TechnicianPatch) (models.Technician, error) {
	var updated *models.Technician
	err := r.withWrite(ctx, func(ctx context.Context, db *gorm.DB) error {
		if cols := patch.Columns(); len(cols) > 0 {
			if err := r.updateColumns(db, "update technician", "technician", id, cols); err != nil {
				return err
			}
		}
		technician, err := r.ByID(ctx, id)
		if err != nil {
			return err
		}
		if technician == nil {
			return notFound("update technician", "technician", id)
		}
		updated = technician
		return nil
	})
	if err != nil {
		return models.Technician{}, toStoreError("update technician", err)
	}
	return *updated, nil
}

// Delete removes the technician; assigned tickets become unassigned (ON DELETE SET NULL)
func (r *TechnicianRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.deleteByID(ctx, "delete technician", "technician", id)
}
