package businessflow

import (
	"context"

	"github.com/amirphl/repair-desk/app/dto"
	"github.com/amirphl/repair-desk/models"
)

// CustomerFlow defines operations for the customer directory
type CustomerFlow interface {
	ListCustomers(ctx context.Context, search string) (*dto.ListCustomersResponse, error)
	CreateCustomer(ctx context.Context, req *dto.CreateCustomerRequest) (*models.Customer, error)
	UpdateCustomer(ctx context.Context, id string, req *dto.UpdateCustomerRequest) (*models.Customer, error)
	DeleteCustomer(ctx context.Context, id string) error
}

// CustomerFlowImpl implements CustomerFlow
type CustomerFlowImpl struct {
	system RepairSystem
}

func NewCustomerFlow(system RepairSystem) CustomerFlow {
	return &CustomerFlowImpl{system: system}
}

func (f *CustomerFlowImpl) ListCustomers(ctx context.Context, search string) (*dto.ListCustomersResponse, error) {
	if err := ensureReady(f.system); err != nil {
		return nil, err
	}
	customers := f.system.Customers()
	return &dto.ListCustomersResponse{
		Customers: FilterCustomers(customers, search),
		Total:     len(customers),
	}, nil
}

func (f *CustomerFlowImpl) CreateCustomer(ctx context.Context, req *dto.CreateCustomerRequest) (*models.Customer, error) {
	if err := ensureReady(f.system); err != nil {
		return nil, err
	}
	created, err := f.system.CreateCustomer(ctx, ToCustomerModel(req))
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (f *CustomerFlowImpl) UpdateCustomer(ctx context.Context, id string, req *dto.UpdateCustomerRequest) (*models.Customer, error) {
	if err := ensureReady(f.system); err != nil {
		return nil, err
	}
	customerID, err := parseUUID(id, ErrInvalidCustomerID)
	if err != nil {
		return nil, err
	}
	updated, err := f.system.UpdateCustomer(ctx, customerID, ToCustomerPatch(req))
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteCustomer fails with a constraint error while the customer still has tickets
func (f *CustomerFlowImpl) DeleteCustomer(ctx context.Context, id string) error {
	if err := ensureReady(f.system); err != nil {
		return err
	}
	customerID, err := parseUUID(id, ErrInvalidCustomerID)
	if err != nil {
		return err
	}
	return f.system.DeleteCustomer(ctx, customerID)
}
