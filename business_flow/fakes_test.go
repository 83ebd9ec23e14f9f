package businessflow

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/amirphl/repair-desk/models"
	"github.com/amirphl/repair-desk/repository"
	"github.com/google/uuid"
)

// fakeTicketRepo is an in-memory TicketRepository
type fakeTicketRepo struct {
	mu       sync.Mutex
	tickets  []models.RepairTicket
	seq      int64
	now      time.Time
	getErr   error
	writeErr error
	names    map[uuid.UUID]string

	// when release is set GetAll signals fetched after reading and waits for release
	fetched chan struct{}
	release chan struct{}
}

func (r *fakeTicketRepo) GetAll(ctx context.Context) ([]models.RepairTicket, error) {
	r.mu.Lock()
	if r.getErr != nil {
		r.mu.Unlock()
		return nil, r.getErr
	}
	out := append([]models.RepairTicket{}, r.tickets...)
	fetched, release := r.fetched, r.release
	r.mu.Unlock()

	if release != nil {
		select {
		case fetched <- struct{}{}:
		default:
		}
		<-release
	}
	return out, nil
}

func (r *fakeTicketRepo) ByID(ctx context.Context, id string) (*models.RepairTicket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tickets {
		if t.ID == id {
			return &t, nil
		}
	}
	return nil, nil
}

func (r *fakeTicketRepo) Create(ctx context.Context, ticket models.RepairTicket) (models.RepairTicket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.writeErr != nil {
		return models.RepairTicket{}, r.writeErr
	}
	r.seq++
	ticket.ID = models.FormatTicketID(r.seq)
	ticket.ApplyIntakeDefaults(r.clock())
	ticket.CustomerName = r.names[ticket.CustomerID]
	r.tickets = append([]models.RepairTicket{ticket}, r.tickets...)
	return ticket, nil
}

func (r *fakeTicketRepo) Update(ctx context.Context, id string, patch models.TicketPatch) (models.RepairTicket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.writeErr != nil {
		return models.RepairTicket{}, r.writeErr
	}
	for i, t := range r.tickets {
		if t.ID == id {
			r.tickets[i] = patch.Apply(t, r.clock())
			return r.tickets[i], nil
		}
	}
	return models.RepairTicket{}, repository.NewStoreError(repository.KindNotFound, "TicketRepository.Update", fmt.Sprintf("ticket %s not found", id), nil)
}

func (r *fakeTicketRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.writeErr != nil {
		return r.writeErr
	}
	for i, t := range r.tickets {
		if t.ID == id {
			r.tickets = append(r.tickets[:i], r.tickets[i+1:]...)
			return nil
		}
	}
	return repository.NewStoreError(repository.KindNotFound, "TicketRepository.Delete", fmt.Sprintf("ticket %s not found", id), nil)
}

func (r *fakeTicketRepo) clock() time.Time {
	if r.now.IsZero() {
		return time.Now().UTC()
	}
	return r.now
}

// fakeCustomerRepo is an in-memory CustomerRepository
type fakeCustomerRepo struct {
	mu        sync.Mutex
	customers []models.Customer
	getErr    error
	deleteErr error
}

func (r *fakeCustomerRepo) GetAll(ctx context.Context) ([]models.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	return append([]models.Customer{}, r.customers...), nil
}

func (r *fakeCustomerRepo) ByID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.customers {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, nil
}

func (r *fakeCustomerRepo) Create(ctx context.Context, customer models.Customer) (models.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if customer.ID == uuid.Nil {
		customer.ID = uuid.New()
	}
	customer.CreatedAt = time.Now().UTC()
	r.customers = append([]models.Customer{customer}, r.customers...)
	return customer, nil
}

func (r *fakeCustomerRepo) Update(ctx context.Context, id uuid.UUID, patch models.CustomerPatch) (models.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, c := range r.customers {
		if c.ID == id {
			r.customers[i] = patch.Apply(c)
			return r.customers[i], nil
		}
	}
	return models.Customer{}, repository.NewStoreError(repository.KindNotFound, "CustomerRepository.Update", "customer not found", nil)
}

func (r *fakeCustomerRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleteErr != nil {
		return r.deleteErr
	}
	for i, c := range r.customers {
		if c.ID == id {
			r.customers = append(r.customers[:i], r.customers[i+1:]...)
			return nil
		}
	}
	return repository.NewStoreError(repository.KindNotFound, "CustomerRepository.Delete", "customer not found", nil)
}

// fakeTechnicianRepo is an in-memory TechnicianRepository
type fakeTechnicianRepo struct {
	mu          sync.Mutex
	technicians []models.Technician
	getErr      error
}

func (r *fakeTechnicianRepo) GetAll(ctx context.Context) ([]models.Technician, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	out := append([]models.Technician{}, r.technicians...)
	sortTechnicians(out)
	return out, nil
}

func (r *fakeTechnicianRepo) ByID(ctx context.Context, id uuid.UUID) (*models.Technician, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.technicians {
		if t.ID == id {
			return &t, nil
		}
	}
	return nil, nil
}

func (r *fakeTechnicianRepo) Create(ctx context.Context, technician models.Technician) (models.Technician, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if technician.ID == uuid.Nil {
		technician.ID = uuid.New()
	}
	r.technicians = append(r.technicians, technician)
	return technician, nil
}

func (r *fakeTechnicianRepo) Update(ctx context.Context, id uuid.UUID, patch models.TechnicianPatch) (models.Technician, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, t := range r.technicians {
		if t.ID == id {
			r.technicians[i] = patch.Apply(t)
			return r.technicians[i], nil
		}
	}
	return models.Technician{}, repository.NewStoreError(repository.KindNotFound, "TechnicianRepository.Update", "technician not found", nil)
}

func (r *fakeTechnicianRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, t := range r.technicians {
		if t.ID == id {
			r.technicians = append(r.technicians[:i], r.technicians[i+1:]...)
			return nil
		}
	}
	return repository.NewStoreError(repository.KindNotFound, "TechnicianRepository.Delete", "technician not found", nil)
}

// recordingObserver captures state container events
type recordingObserver struct {
	mu       sync.Mutex
	loads    []error
	mutated  []string
	failures []string
}

func (o *recordingObserver) Loaded(snapshot Snapshot, elapsed time.Duration, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.loads = append(o.loads, err)
}

func (o *recordingObserver) Mutated(op string, snapshot Snapshot, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err != nil {
		o.failures = append(o.failures, op)
		return
	}
	o.mutated = append(o.mutated, op)
}

type testEnv struct {
	tickets     *fakeTicketRepo
	customers   *fakeCustomerRepo
	technicians *fakeTechnicianRepo
	observer    *recordingObserver
	system      RepairSystem
}

func newTestEnv() *testEnv {
	env := &testEnv{
		tickets:     &fakeTicketRepo{names: map[uuid.UUID]string{}},
		customers:   &fakeCustomerRepo{},
		technicians: &fakeTechnicianRepo{},
		observer:    &recordingObserver{},
	}
	env.system = NewRepairSystem(env.tickets, env.customers, env.technicians, env.observer)
	return env
}

func ticketAt(id string, status models.RepairStatus, created time.Time) models.RepairTicket {
	return models.RepairTicket{
		ID:         id,
		CustomerID: uuid.New(),
		DeviceType: "Laptop",
		Status:     status,
		Priority:   models.PriorityMedium,
		CreatedAt:  created,
		UpdatedAt:  created,
	}
}
