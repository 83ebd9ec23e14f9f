package models

import "time"

// TicketSequenceName is the counter row backing repair ticket codes
const TicketSequenceName = "repair_ticket"

// SequenceCounter stores the last issued value for named monotonic counters.
// Values are never handed out twice, even when the owning rows are deleted.
type SequenceCounter struct {
	Name      string    `gorm:"primaryKey;size:64" json:"name"`
	LastValue int64     `gorm:"not null;default:0" json:"last_value"`
	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

func (SequenceCounter) TableName() string { return "sequence_counters" }
