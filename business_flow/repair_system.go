package businessflow

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/amirphl/repair-desk/models"
	"github.com/amirphl/repair-desk/repository"
	"github.com/amirphl/repair-desk/utils"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

var tracer = otel.Tracer("github.com/amirphl/repair-desk/business_flow")

// Snapshot is a consistent copy of the session collections at one revision
type Snapshot struct {
	Tickets     []models.RepairTicket
	Customers   []models.Customer
	Technicians []models.Technician
	Revision    uint64
	LoadedAt    time.Time
}

// StateObserver receives state container events. Implementations must not block.
type StateObserver interface {
	Loaded(snapshot Snapshot, elapsed time.Duration, err error)
	Mutated(op string, snapshot Snapshot, err error)
}

type noopObserver struct{}

func (noopObserver) Loaded(Snapshot, time.Duration, error) {}
func (noopObserver) Mutated(string, Snapshot, error)       {}

type observerList []StateObserver

// Observers fans events out to every non-nil observer in order
func Observers(observers ...StateObserver) StateObserver {
	list := make(observerList, 0, len(observers))
	for _, o := range observers {
		if o != nil {
			list = append(list, o)
		}
	}
	return list
}

func (l observerList) Loaded(snapshot Snapshot, elapsed time.Duration, err error) {
	for _, o := range l {
		o.Loaded(snapshot, elapsed, err)
	}
}

func (l observerList) Mutated(op string, snapshot Snapshot, err error) {
	for _, o := range l {
		o.Mutated(op, snapshot, err)
	}
}

// RepairSystem is the session state container: it owns the authoritative in-memory
// tickets, customers and technicians and reconciles them with store responses.
type RepairSystem interface {
	Load(ctx context.Context) error
	Loading() bool
	Err() error
	ErrorMessage() string
	Revision() uint64
	Snapshot() Snapshot
	Tickets() []models.RepairTicket
	Customers() []models.Customer
	Technicians() []models.Technician

	CreateTicket(ctx context.Context, ticket models.RepairTicket) (models.RepairTicket, error)
	UpdateTicket(ctx context.Context, id string, patch models.TicketPatch) (models.RepairTicket, error)
	DeleteTicket(ctx context.Context, id string) error

	CreateCustomer(ctx context.Context, customer models.Customer) (models.Customer, error)
	UpdateCustomer(ctx context.Context, id uuid.UUID, patch models.CustomerPatch) (models.Customer, error)
	DeleteCustomer(ctx context.Context, id uuid.UUID) error

	CreateTechnician(ctx context.Context, technician models.Technician) (models.Technician, error)
	UpdateTechnician(ctx context.Context, id uuid.UUID, patch models.TechnicianPatch) (models.Technician, error)
	DeleteTechnician(ctx context.Context, id uuid.UUID) error

	Close()
}

type RepairSystemImpl struct {
	ticketRepo     repository.TicketRepository
	customerRepo   repository.CustomerRepository
	technicianRepo repository.TechnicianRepository
	observer       StateObserver

	// writeMu is held shared by mutations from the store call through the local commit
	// and exclusively by Load from the fetch through its commit
	writeMu sync.RWMutex

	mu          sync.RWMutex
	tickets     []models.RepairTicket
	customers   []models.Customer
	technicians []models.Technician
	loading     bool
	loadErr     error
	revision    uint64
	loadedAt    time.Time
	closed      bool
}

// NewRepairSystem creates a session over the given stores. Call Load before reading.
// observer may be nil.
func NewRepairSystem(
	ticketRepo repository.TicketRepository,
	customerRepo repository.CustomerRepository,
	technicianRepo repository.TechnicianRepository,
	observer StateObserver,
) RepairSystem {
	if observer == nil {
		observer = noopObserver{}
	}
	return &RepairSystemImpl{
		ticketRepo:     ticketRepo,
		customerRepo:   customerRepo,
		technicianRepo: technicianRepo,
		observer:       observer,
	}
}

// Load fetches the three collections concurrently. Any failure fails the whole load
// and leaves every collection empty. Mutations wait for a running load, so a fetched
// collection never overwrites a write the store already confirmed.
func (s *RepairSystemImpl) Load(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "RepairSystem.Load")
	defer span.End()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	s.loading = true
	s.mu.Unlock()

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	start := time.Now()
	var (
		tickets     []models.RepairTicket
		customers   []models.Customer
		technicians []models.Technician
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tickets, err = s.ticketRepo.GetAll(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		customers, err = s.customerRepo.GetAll(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		technicians, err = s.technicianRepo.GetAll(gctx)
		return err
	})
	err := g.Wait()

	s.mu.Lock()
	s.loading = false
	if err != nil {
		s.tickets, s.customers, s.technicians = nil, nil, nil
		s.loadErr = err
	} else {
		s.tickets, s.customers, s.technicians = tickets, customers, technicians
		s.loadErr = nil
		s.loadedAt = utils.UTCNow()
		s.recountActiveTicketsLocked()
	}
	s.revision++
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	elapsed := time.Since(start)
	s.observer.Loaded(snapshot, elapsed, err)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load failed")
		log.Printf("repair system: load failed after %s: %v", elapsed, err)
		return err
	}

	span.SetAttributes(
		attribute.Int("tickets", len(tickets)),
		attribute.Int("customers", len(customers)),
		attribute.Int("technicians", len(technicians)),
	)
	log.Printf("repair system: loaded %d tickets, %d customers, %d technicians in %s",
		len(tickets), len(customers), len(technicians), elapsed)
	return nil
}

func (s *RepairSystemImpl) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Err returns the error of the last load, or nil after a successful load
func (s *RepairSystemImpl) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadErr
}

// ErrorMessage is the user-facing description of the load error
func (s *RepairSystemImpl) ErrorMessage() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.loadErr == nil {
		return ""
	}
	return fmt.Sprintf("Failed to load data: %v", s.loadErr)
}

func (s *RepairSystemImpl) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}

func (s *RepairSystemImpl) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *RepairSystemImpl) Tickets() []models.RepairTicket {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.RepairTicket{}, s.tickets...)
}

func (s *RepairSystemImpl) Customers() []models.Customer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Customer{}, s.customers...)
}

func (s *RepairSystemImpl) Technicians() []models.Technician {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Technician{}, s.technicians...)
}

func (s *RepairSystemImpl) CreateTicket(ctx context.Context, ticket models.RepairTicket) (models.RepairTicket, error) {
	ctx, span := s.startSpan(ctx, "CreateTicket")
	defer span.End()

	s.writeMu.RLock()
	defer s.writeMu.RUnlock()
	if err := s.checkOpen(); err != nil {
		return models.RepairTicket{}, err
	}
	created, err := s.ticketRepo.Create(ctx, ticket)
	if err != nil {
		return models.RepairTicket{}, s.fail(span, "create_ticket", err)
	}
	span.SetAttributes(attribute.String("ticket.id", created.ID))

	s.commit("create_ticket", func() {
		s.tickets = prepend(s.tickets, created)
		s.recountActiveTicketsLocked()
	})
	return created, nil
}

func (s *RepairSystemImpl) UpdateTicket(ctx context.Context, id string, patch models.TicketPatch) (models.RepairTicket, error) {
	ctx, span := s.startSpan(ctx, "UpdateTicket", attribute.String("ticket.id", id))
	defer span.End()

	s.writeMu.RLock()
	defer s.writeMu.RUnlock()
	if err := s.checkOpen(); err != nil {
		return models.RepairTicket{}, err
	}
	updated, err := s.ticketRepo.Update(ctx, id, patch)
	if err != nil {
		return models.RepairTicket{}, s.fail(span, "update_ticket", err)
	}

	s.commit("update_ticket", func() {
		s.tickets = replace(s.tickets, updated, ticketID)
		s.recountActiveTicketsLocked()
	})
	return updated, nil
}

func (s *RepairSystemImpl) DeleteTicket(ctx context.Context, id string) error {
	ctx, span := s.startSpan(ctx, "DeleteTicket", attribute.String("ticket.id", id))
	defer span.End()

	s.writeMu.RLock()
	defer s.writeMu.RUnlock()
	if err := s.checkOpen(); err != nil {
		return err
	}
	if err := s.ticketRepo.Delete(ctx, id); err != nil {
		return s.fail(span, "delete_ticket", err)
	}

	s.commit("delete_ticket", func() {
		s.tickets = remove(s.tickets, id, ticketID)
		s.recountActiveTicketsLocked()
	})
	return nil
}

func (s *RepairSystemImpl) CreateCustomer(ctx context.Context, customer models.Customer) (models.Customer, error) {
	ctx, span := s.startSpan(ctx, "CreateCustomer")
	defer span.End()

	s.writeMu.RLock()
	defer s.writeMu.RUnlock()
	if err := s.checkOpen(); err != nil {
		return models.Customer{}, err
	}
	created, err := s.customerRepo.Create(ctx, customer)
	if err != nil {
		return models.Customer{}, s.fail(span, "create_customer", err)
	}

	s.commit("create_customer", func() {
		s.customers = prepend(s.customers, created)
	})
	return created, nil
}

func (s *RepairSystemImpl) UpdateCustomer(ctx context.Context, id uuid.UUID, patch models.CustomerPatch) (models.Customer, error) {
	ctx, span := s.startSpan(ctx, "UpdateCustomer", attribute.String("customer.id", id.String()))
	defer span.End()

	s.writeMu.RLock()
	defer s.writeMu.RUnlock()
	if err := s.checkOpen(); err != nil {
		return models.Customer{}, err
	}
	updated, err := s.customerRepo.Update(ctx, id, patch)
	if err != nil {
		return models.Customer{}, s.fail(span, "update_customer", err)
	}

	s.commit("update_customer", func() {
		s.customers = replace(s.customers, updated, customerID)
		if patch.Name != nil {
			s.renameCustomerLocked(id, updated.Name)
		}
	})
	return updated, nil
}

// DeleteCustomer removes the customer. Local tickets keep their last read customer name.
func (s *RepairSystemImpl) DeleteCustomer(ctx context.Context, id uuid.UUID) error {
	ctx, span := s.startSpan(ctx, "DeleteCustomer", attribute.String("customer.id", id.String()))
	defer span.End()

	s.writeMu.RLock()
	defer s.writeMu.RUnlock()
	if err := s.checkOpen(); err != nil {
		return err
	}
	if err := s.customerRepo.Delete(ctx, id); err != nil {
		return s.fail(span, "delete_customer", err)
	}

	s.commit("delete_customer", func() {
		s.customers = remove(s.customers, id, customerID)
	})
	return nil
}

func (s *RepairSystemImpl) CreateTechnician(ctx context.Context, technician models.Technician) (models.Technician, error) {
	ctx, span := s.startSpan(ctx, "CreateTechnician")
	defer span.End()

	s.writeMu.RLock()
	defer s.writeMu.RUnlock()
	if err := s.checkOpen(); err != nil {
		return models.Technician{}, err
	}
	created, err := s.technicianRepo.Create(ctx, technician)
	if err != nil {
		return models.Technician{}, s.fail(span, "create_technician", err)
	}

	s.commit("create_technician", func() {
		s.technicians = append(s.technicians, created)
		sortTechnicians(s.technicians)
		s.recountActiveTicketsLocked()
	})
	return created, nil
}

func (s *RepairSystemImpl) UpdateTechnician(ctx context.Context, id uuid.UUID, patch models.TechnicianPatch) (models.Technician, error) {
	ctx, span := s.startSpan(ctx, "UpdateTechnician", attribute.String("technician.id", id.String()))
	defer span.End()

	s.writeMu.RLock()
	defer s.writeMu.RUnlock()
	if err := s.checkOpen(); err != nil {
		return models.Technician{}, err
	}
	updated, err := s.technicianRepo.Update(ctx, id, patch)
	if err != nil {
		return models.Technician{}, s.fail(span, "update_technician", err)
	}

	s.commit("update_technician", func() {
		s.technicians = replace(s.technicians, updated, technicianID)
		sortTechnicians(s.technicians)
		if patch.Name != nil {
			s.renameTechnicianLocked(id, updated.Name)
		}
		s.recountActiveTicketsLocked()
	})
	return updated, nil
}

// DeleteTechnician removes the technician and unassigns its local tickets,
// matching the store's ON DELETE SET NULL
func (s *RepairSystemImpl) DeleteTechnician(ctx context.Context, id uuid.UUID) error {
	ctx, span := s.startSpan(ctx, "DeleteTechnician", attribute.String("technician.id", id.String()))
	defer span.End()

	s.writeMu.RLock()
	defer s.writeMu.RUnlock()
	if err := s.checkOpen(); err != nil {
		return err
	}
	if err := s.technicianRepo.Delete(ctx, id); err != nil {
		return s.fail(span, "delete_technician", err)
	}

	s.commit("delete_technician", func() {
		s.technicians = remove(s.technicians, id, technicianID)
		s.unassignTechnicianLocked(id)
	})
	return nil
}

// Close ends the session and drops the collections
func (s *RepairSystemImpl) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.tickets, s.customers, s.technicians = nil, nil, nil
}

func (s *RepairSystemImpl) checkOpen() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrSessionClosed
	}
	return nil
}

func (s *RepairSystemImpl) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer.Start(ctx, "RepairSystem."+name, trace.WithAttributes(attrs...))
}

// fail logs a rejected mutation and returns err unmodified
func (s *RepairSystemImpl) fail(span trace.Span, op string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, op+" failed")
	log.Printf("repair system: %s failed: %v", op, err)
	s.observer.Mutated(op, s.Snapshot(), err)
	return err
}

// commit applies a confirmed mutation to the local collections
func (s *RepairSystemImpl) commit(op string, apply func()) {
	s.mu.Lock()
	apply()
	s.revision++
	snapshot := s.snapshotLocked()
	s.mu.Unlock()
	s.observer.Mutated(op, snapshot, nil)
}

func (s *RepairSystemImpl) snapshotLocked() Snapshot {
	return Snapshot{
		Tickets:     append([]models.RepairTicket{}, s.tickets...),
		Customers:   append([]models.Customer{}, s.customers...),
		Technicians: append([]models.Technician{}, s.technicians...),
		Revision:    s.revision,
		LoadedAt:    s.loadedAt,
	}
}

// recountActiveTicketsLocked derives every technician's active ticket count from the tickets
func (s *RepairSystemImpl) recountActiveTicketsLocked() {
	counts := ActiveTicketCounts(s.tickets)
	for i := range s.technicians {
		s.technicians[i].ActiveTickets = counts[s.technicians[i].ID]
	}
}

func (s *RepairSystemImpl) renameCustomerLocked(id uuid.UUID, name string) {
	for i := range s.tickets {
		if s.tickets[i].CustomerID == id {
			s.tickets[i].CustomerName = name
		}
	}
}

func (s *RepairSystemImpl) renameTechnicianLocked(id uuid.UUID, name string) {
	for i := range s.tickets {
		if s.tickets[i].TechnicianID != nil && *s.tickets[i].TechnicianID == id {
			n := name
			s.tickets[i].TechnicianName = &n
		}
	}
}

func (s *RepairSystemImpl) unassignTechnicianLocked(id uuid.UUID) {
	for i := range s.tickets {
		if s.tickets[i].TechnicianID != nil && *s.tickets[i].TechnicianID == id {
			s.tickets[i].TechnicianID = nil
			s.tickets[i].TechnicianName = nil
		}
	}
}

func ticketID(t models.RepairTicket) string      { return t.ID }
func customerID(c models.Customer) uuid.UUID     { return c.ID }
func technicianID(t models.Technician) uuid.UUID { return t.ID }

// prepend returns a new slice with item first
func prepend[T any](items []T, item T) []T {
	out := make([]T, 0, len(items)+1)
	out = append(out, item)
	return append(out, items...)
}

// replace swaps the element with item's id for item. An id missing locally is prepended.
func replace[T any, ID comparable](items []T, item T, id func(T) ID) []T {
	out := append([]T{}, items...)
	for i := range out {
		if id(out[i]) == id(item) {
			out[i] = item
			return out
		}
	}
	return prepend(out, item)
}

func remove[T any, ID comparable](items []T, target ID, id func(T) ID) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if id(it) != target {
			out = append(out, it)
		}
	}
	return out
}
