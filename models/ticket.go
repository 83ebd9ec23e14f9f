package models

import (
	"encoding/json"
	"time"

	"github.com/amirphl/repair-desk/utils"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// RepairStatus is the workflow stage of a ticket
type RepairStatus string

const (
	StatusReceived       RepairStatus = "received"
	StatusDiagnosed      RepairStatus = "diagnosed"
	StatusInProgress     RepairStatus = "in_progress"
	StatusAwaitingParts  RepairStatus = "awaiting_parts"
	StatusTesting        RepairStatus = "testing"
	StatusCompleted      RepairStatus = "completed"
	StatusReadyForPickup RepairStatus = "ready_for_pickup"
	StatusPickedUp       RepairStatus = "picked_up"
	StatusCancelled      RepairStatus = "cancelled"
)

// RepairStatuses lists every status in workflow order
var RepairStatuses = []RepairStatus{
	StatusReceived,
	StatusDiagnosed,
	StatusInProgress,
	StatusAwaitingParts,
	StatusTesting,
	StatusCompleted,
	StatusReadyForPickup,
	StatusPickedUp,
	StatusCancelled,
}

// Rank returns the workflow position of s, or -1 when s is unknown
func (s RepairStatus) Rank() int {
	for i, v := range RepairStatuses {
		if v == s {
			return i
		}
	}
	return -1
}

func (s RepairStatus) Valid() bool { return s.Rank() >= 0 }

// IsActive reports whether a ticket in this status still needs work
func (s RepairStatus) IsActive() bool {
	switch s {
	case StatusCompleted, StatusPickedUp, StatusCancelled:
		return false
	}
	return true
}

// IsDone reports whether the repair counts as completed for reporting
func (s RepairStatus) IsDone() bool {
	return s == StatusCompleted || s == StatusPickedUp
}

// isPreCompletion covers received through testing
func (s RepairStatus) isPreCompletion() bool {
	r := s.Rank()
	return r >= 0 && r < StatusCompleted.Rank()
}

func (s RepairStatus) isPickupStage() bool {
	return s == StatusReadyForPickup || s == StatusPickedUp
}

// Priority of a ticket
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

func (p Priority) Valid() bool {
	for _, v := range Priorities {
		if v == p {
			return true
		}
	}
	return false
}

// Grade is the post-repair condition rating
type Grade string

const (
	GradeExcellent Grade = "excellent"
	GradeGood      Grade = "good"
	GradeFair      Grade = "fair"
	GradePoor      Grade = "poor"
	GradeDamaged   Grade = "damaged"
)

var Grades = []Grade{GradeExcellent, GradeGood, GradeFair, GradePoor, GradeDamaged}

// UnknownCustomerName is projected when the referenced customer row is gone
const UnknownCustomerName = "Unknown Customer"

// RepairTicket is a single repair job tracked from intake to pickup or cancellation.
// Table: tickets
// ID is the external ticket code (RPR-001, RPR-002, ...)
// CustomerName and TechnicianName are read-only projections joined on read
// Images stored as TEXT[]
type RepairTicket struct {
	ID               string         `gorm:"size:32;primaryKey" json:"id"`
	CustomerID       uuid.UUID      `gorm:"type:uuid;not null;index:idx_tickets_customer_id" json:"customerId"`
	CustomerName     string         `gorm:"->;-:migration" json:"customerName"`
	DeviceType       string         `gorm:"size:100;not null;index:idx_tickets_device_type" json:"deviceType"`
	DeviceModel      string         `gorm:"size:255;not null;default:''" json:"deviceModel"`
	SerialNumber     *string        `gorm:"size:255" json:"serialNumber,omitempty"`
	IssueDescription string         `gorm:"type:text;not null;default:''" json:"issueDescription"`
	EstimatedCost    float64        `gorm:"type:numeric(12,2);not null;default:0" json:"estimatedCost"`
	ActualCost       *float64       `gorm:"type:numeric(12,2)" json:"actualCost,omitempty"`
	Status           RepairStatus   `gorm:"size:32;not null;default:'received';index:idx_tickets_status" json:"status"`
	Priority         Priority       `gorm:"size:16;not null;default:'medium';index:idx_tickets_priority" json:"priority"`
	Grade            *Grade         `gorm:"size:16" json:"grade,omitempty"`
	GradeNotes       *string        `gorm:"type:text" json:"gradeNotes,omitempty"`
	TechnicianID     *uuid.UUID     `gorm:"type:uuid;index:idx_tickets_technician_id" json:"technicianId,omitempty"`
	TechnicianName   *string        `gorm:"->;-:migration" json:"technicianName,omitempty"`
	Images           pq.StringArray `gorm:"type:text[];not null;default:'{}'" json:"images"`
	CreatedAt        time.Time      `gorm:"not null;default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_tickets_created_at" json:"createdAt"`
	UpdatedAt        time.Time      `gorm:"not null;default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updatedAt"`
	CompletedAt      *time.Time     `gorm:"index:idx_tickets_completed_at" json:"completedAt,omitempty"`

	// Relations, only used for constraints
	Customer   *Customer   `gorm:"foreignKey:CustomerID;references:ID;constraint:OnDelete:RESTRICT" json:"-"`
	Technician *Technician `gorm:"foreignKey:TechnicianID;references:ID;constraint:OnDelete:SET NULL" json:"-"`
}

func (RepairTicket) TableName() string { return "tickets" }

// MarshalJSON adds the status, priority and grade style tags to the ticket
func (t RepairTicket) MarshalJSON() ([]byte, error) {
	type ticket RepairTicket
	out := struct {
		ticket
		StatusColor   string `json:"statusColor"`
		PriorityColor string `json:"priorityColor"`
		GradeColor    string `json:"gradeColor,omitempty"`
	}{
		ticket:        ticket(t),
		StatusColor:   utils.StatusColor(string(t.Status)),
		PriorityColor: utils.PriorityColor(string(t.Priority)),
	}
	if t.Grade != nil {
		out.GradeColor = utils.GradeColor(string(*t.Grade))
	}
	return json.Marshal(out)
}

// BeforeCreate fills intake defaults
func (t *RepairTicket) BeforeCreate(tx *gorm.DB) error {
	t.ApplyIntakeDefaults(utils.UTCNow())
	return nil
}

// ApplyIntakeDefaults sets the defaults of a freshly received ticket.
// A ticket created already completed gets CompletedAt = now.
func (t *RepairTicket) ApplyIntakeDefaults(now time.Time) {
	if t.Status == "" {
		t.Status = StatusReceived
	}
	if t.Priority == "" {
		t.Priority = PriorityMedium
	}
	if t.Images == nil {
		t.Images = pq.StringArray{}
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = now
	}
	if t.CompletedAt == nil && (t.Status == StatusCompleted || t.Status.isPickupStage()) {
		t.CompletedAt = &now
	}
	if t.Status.isPreCompletion() {
		t.CompletedAt = nil
	}
}

// RevenueValue is the actual cost when known, otherwise the estimate
func (t RepairTicket) RevenueValue() float64 {
	if t.ActualCost != nil {
		return *t.ActualCost
	}
	return t.EstimatedCost
}

// IsActive reports whether the ticket still needs work
func (t RepairTicket) IsActive() bool { return t.Status.IsActive() }

// TicketPatch is a sparse ticket update. Pointer fields are written when non-nil;
// Optional fields are written when Set, and cleared when Set with a nil Value.
type TicketPatch struct {
	CustomerID       *uuid.UUID          `json:"customerId,omitempty"`
	DeviceType       *string             `json:"deviceType,omitempty"`
	DeviceModel      *string             `json:"deviceModel,omitempty"`
	SerialNumber     Optional[string]    `json:"serialNumber"`
	IssueDescription *string             `json:"issueDescription,omitempty"`
	EstimatedCost    *float64            `json:"estimatedCost,omitempty"`
	ActualCost       Optional[float64]   `json:"actualCost"`
	Status           *RepairStatus       `json:"status,omitempty"`
	Priority         *Priority           `json:"priority,omitempty"`
	Grade            Optional[Grade]     `json:"grade"`
	GradeNotes       Optional[string]    `json:"gradeNotes"`
	TechnicianID     Optional[uuid.UUID] `json:"technicianId"`
	Images           *[]string           `json:"images,omitempty"`
}

// Columns returns the snake_case column assignments for the patch.
// updated_at is always refreshed; completed_at follows the status transition.
func (p TicketPatch) Columns(now time.Time) map[string]any {
	cols := map[string]any{"updated_at": now}
	if p.CustomerID != nil {
		cols["customer_id"] = *p.CustomerID
	}
	if p.DeviceType != nil {
		cols["device_type"] = *p.DeviceType
	}
	if p.DeviceModel != nil {
		cols["device_model"] = *p.DeviceModel
	}
	if p.SerialNumber.Set {
		cols["serial_number"] = p.SerialNumber.column()
	}
	if p.IssueDescription != nil {
		cols["issue_description"] = *p.IssueDescription
	}
	if p.EstimatedCost != nil {
		cols["estimated_cost"] = *p.EstimatedCost
	}
	if p.ActualCost.Set {
		cols["actual_cost"] = p.ActualCost.column()
	}
	if p.Status != nil {
		cols["status"] = *p.Status
		switch {
		case *p.Status == StatusCompleted:
			cols["completed_at"] = now
		case p.Status.isPickupStage():
			cols["completed_at"] = gorm.Expr("COALESCE(completed_at, ?)", now)
		case p.Status.isPreCompletion():
			cols["completed_at"] = nil
		}
	}
	if p.Priority != nil {
		cols["priority"] = *p.Priority
	}
	if p.Grade.Set {
		cols["grade"] = p.Grade.column()
	}
	if p.GradeNotes.Set {
		cols["grade_notes"] = p.GradeNotes.column()
	}
	if p.TechnicianID.Set {
		cols["technician_id"] = p.TechnicianID.column()
	}
	if p.Images != nil {
		cols["images"] = pq.StringArray(*p.Images)
	}
	return cols
}

// Apply merges the patch into a copy of t with the same completion rules as Columns.
// Denormalized names are not resolved here.
func (p TicketPatch) Apply(t RepairTicket, now time.Time) RepairTicket {
	t.UpdatedAt = now
	if p.CustomerID != nil {
		t.CustomerID = *p.CustomerID
	}
	if p.DeviceType != nil {
		t.DeviceType = *p.DeviceType
	}
	if p.DeviceModel != nil {
		t.DeviceModel = *p.DeviceModel
	}
	if p.SerialNumber.Set {
		t.SerialNumber = p.SerialNumber.Value
	}
	if p.IssueDescription != nil {
		t.IssueDescription = *p.IssueDescription
	}
	if p.EstimatedCost != nil {
		t.EstimatedCost = *p.EstimatedCost
	}
	if p.ActualCost.Set {
		t.ActualCost = p.ActualCost.Value
	}
	if p.Status != nil {
		t.Status = *p.Status
		switch {
		case *p.Status == StatusCompleted:
			t.CompletedAt = &now
		case p.Status.isPickupStage():
			if t.CompletedAt == nil {
				t.CompletedAt = &now
			}
		case p.Status.isPreCompletion():
			t.CompletedAt = nil
		}
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Grade.Set {
		t.Grade = p.Grade.Value
	}
	if p.GradeNotes.Set {
		t.GradeNotes = p.GradeNotes.Value
	}
	if p.TechnicianID.Set {
		t.TechnicianID = p.TechnicianID.Value
		if t.TechnicianID == nil {
			t.TechnicianName = nil
		}
	}
	if p.Images != nil {
		t.Images = pq.StringArray(append([]string(nil), (*p.Images)...))
	}
	return t
}
