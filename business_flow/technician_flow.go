package businessflow

import (
	"context"

	"github.com/amirphl/repair-desk/app/dto"
	"github.com/amirphl/repair-desk/models"
)

// TechnicianFlow defines operations for the technician roster
type TechnicianFlow interface {
	ListTechnicians(ctx context.Context) ([]models.Technician, error)
	CreateTechnician(ctx context.Context, req *dto.CreateTechnicianRequest) (*models.Technician, error)
	UpdateTechnician(ctx context.Context, id string, req *dto.UpdateTechnicianRequest) (*models.Technician, error)
	DeleteTechnician(ctx context.Context, id string) error
}

type TechnicianFlowImpl struct {
	system RepairSystem
}

func NewTechnicianFlow(system RepairSystem) TechnicianFlow {
	return &TechnicianFlowImpl{system: system}
}

// ListTechnicians returns the roster ordered by name with derived active ticket counts
func (f *TechnicianFlowImpl) ListTechnicians(ctx context.Context) ([]models.Technician, error) {
	if err := ensureReady(f.system); err != nil {
		return nil, err
	}
	return f.system.Technicians(), nil
}

func (f *TechnicianFlowImpl) CreateTechnician(ctx context.Context, req *dto.CreateTechnicianRequest) (*models.Technician, error) {
	if err := ensureReady(f.system); err != nil {
		return nil, err
	}
	created, err := f.system.CreateTechnician(ctx, ToTechnicianModel(req))
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (f *TechnicianFlowImpl) UpdateTechnician(ctx context.Context, id string, req *dto.UpdateTechnicianRequest) (*models.Technician, error) {
	if err := ensureReady(f.system); err != nil {
		return nil, err
	}
	technicianID, err := parseUUID(id, ErrInvalidTechnicianID)
	if err != nil {
		return nil, err
	}
	updated, err := f.system.UpdateTechnician(ctx, technicianID, ToTechnicianPatch(req))
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteTechnician removes the technician; its tickets become unassigned
func (f *TechnicianFlowImpl) DeleteTechnician(ctx context.Context, id string) error {
	if err := ensureReady(f.system); err != nil {
		return err
	}
	technicianID, err := parseUUID(id, ErrInvalidTechnicianID)
	if err != nil {
		return err
	}
	return f.system.DeleteTechnician(ctx, technicianID)
}
