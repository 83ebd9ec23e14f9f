package repository

import (
	"context"
	"errors"

	"github.com/amirphl/repair-desk/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CustomerRepositoryImpl implements CustomerRepository interface
type CustomerRepositoryImpl struct {
	*BaseRepository[models.Customer]
}

// NewCustomerRepository creates a new customer repository
func NewCustomerRepository(db *gorm.DB) CustomerRepository {
	return &CustomerRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Customer](db),
	}
}

// GetAll returns every customer, newest first
func (r *CustomerRepositoryImpl) GetAll(ctx context.Context) ([]models.Customer, error) {
	var customers []models.Customer
	err := r.getDB(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Find(&customers).Error
	if err != nil {
		return nil, toStoreError("list customers", err)
	}
	return customers, nil
}

// ByID returns the customer or nil when it does not exist
func (r *CustomerRepositoryImpl) ByID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	err := r.getDB(ctx).Where("id = ?", id).First(&customer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, toStoreError("get customer", err)
	}
	return &customer, nil
}

func (r *CustomerRepositoryImpl) Create(ctx context.Context, customer models.Customer) (models.Customer, error) {
	customer.ID = uuid.Nil
	err := r.withWrite(ctx, func(ctx context.Context, db *gorm.DB) error {
		return db.Create(&customer).Error
	})
	if err != nil {
		return models.Customer{}, toStoreError("create customer", err)
	}
	return customer, nil
}

// Update applies only the fields present in patch
func (r *CustomerRepositoryImpl) Update(ctx context.Context, id uuid.UUID, patch models.CustomerPatch) (models.Customer, error) {
	var updated *models.Customer
	err := r.withWrite(ctx, func(ctx context.Context, db *gorm.DB) error {
		if cols := patch.Columns(); len(cols) > 0 {
			if err := r.updateColumns(db, "update customer", "customer", id, cols); err != nil {
				return err
			}
		}
		customer, err := r.ByID(ctx, id)
		if err != nil {
			return err
		}
		if customer == nil {
			return notFound("update customer", "customer", id)
		}
		updated = customer
		return nil
	})
	if err != nil {
		return models.Customer{}, toStoreError("update customer", err)
	}
	return *updated, nil
}

// Delete removes the customer. Customers that still own tickets cannot be deleted.
func (r *CustomerRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	err := r.deleteByID(ctx, "delete customer", "customer", id)
	if IsConstraint(err) {
		return NewStoreError(KindConstraint, "delete customer", "customer still has repair tickets", errors.Unwrap(err))
	}
	return err
}
