package businessflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/amirphl/repair-desk/app/dto"
	"github.com/amirphl/repair-desk/models"
	"github.com/amirphl/repair-desk/repository"
)

// TicketFlow defines operations for the repair ticket queue
type TicketFlow interface {
	ListTickets(ctx context.Context, query dto.ListTicketsQuery) (*dto.ListTicketsResponse, error)
	GetTicket(ctx context.Context, id string) (*models.RepairTicket, error)
	CreateTicket(ctx context.Context, req *dto.CreateTicketRequest) (*models.RepairTicket, error)
	UpdateTicket(ctx context.Context, id string, req *dto.UpdateTicketRequest) (*models.RepairTicket, error)
	DeleteTicket(ctx context.Context, id string) error
}

// TicketFlowImpl implements TicketFlow on top of the session state
type TicketFlowImpl struct {
	system RepairSystem
}

func NewTicketFlow(system RepairSystem) TicketFlow {
	return &TicketFlowImpl{system: system}
}

func (f *TicketFlowImpl) ListTickets(ctx context.Context, query dto.ListTicketsQuery) (*dto.ListTicketsResponse, error) {
	if err := ensureReady(f.system); err != nil {
		return nil, err
	}
	tickets := f.system.Tickets()
	return &dto.ListTicketsResponse{
		Tickets: FilterTickets(tickets, query),
		Total:   len(tickets),
	}, nil
}

func (f *TicketFlowImpl) GetTicket(ctx context.Context, id string) (*models.RepairTicket, error) {
	if err := ensureReady(f.system); err != nil {
		return nil, err
	}
	id = normalizeTicketID(id)
	for _, t := range f.system.Tickets() {
		if t.ID == id {
			return &t, nil
		}
	}
	return nil, repository.NewStoreError(repository.KindNotFound, "GetTicket", fmt.Sprintf("ticket %s not found", id), nil)
}

// CreateTicket stores a new ticket. The store assigns the RPR id and the intake defaults.
func (f *TicketFlowImpl) CreateTicket(ctx context.Context, req *dto.CreateTicketRequest) (*models.RepairTicket, error) {
	if err := ensureReady(f.system); err != nil {
		return nil, err
	}
	ticket, err := ToTicketModel(req)
	if err != nil {
		return nil, err
	}
	created, err := f.system.CreateTicket(ctx, ticket)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateTicket applies a sparse patch. Status transitions are unrestricted.
func (f *TicketFlowImpl) UpdateTicket(ctx context.Context, id string, req *dto.UpdateTicketRequest) (*models.RepairTicket, error) {
	if err := ensureReady(f.system); err != nil {
		return nil, err
	}
	patch, err := ToTicketPatch(req)
	if err != nil {
		return nil, err
	}
	updated, err := f.system.UpdateTicket(ctx, normalizeTicketID(id), patch)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (f *TicketFlowImpl) DeleteTicket(ctx context.Context, id string) error {
	if err := ensureReady(f.system); err != nil {
		return err
	}
	return f.system.DeleteTicket(ctx, normalizeTicketID(id))
}

// normalizeTicketID accepts rpr-001 as RPR-001
func normalizeTicketID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}
