package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Technician performs repairs. ActiveTickets is a read-only projection
// computed from tickets on every read; there is no stored counter.
// Table: technicians
type Technician struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Name          string         `gorm:"size:255;not null;index:idx_technicians_name" json:"name"`
	Email         string         `gorm:"size:255;not null" json:"email"`
	Specialties   pq.StringArray `gorm:"type:text[];not null;default:'{}'" json:"specialties"`
	ActiveTickets int            `gorm:"->;-:migration" json:"activeTickets"`
}

func (Technician) TableName() string {
	return "technicians"
}

func (t *Technician) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.Specialties == nil {
		t.Specialties = pq.StringArray{}
	}
	return nil
}

// TechnicianPatch is a sparse update for technicians
type TechnicianPatch struct {
	Name        *string   `json:"name,omitempty"`
	Email       *string   `json:"email,omitempty"`
	Specialties *[]string `json:"specialties,omitempty"`
}

func (p TechnicianPatch) Columns() map[string]any {
	cols := make(map[string]any)
	if p.Name != nil {
		cols["name"] = *p.Name
	}
	if p.Email != nil {
		cols["email"] = *p.Email
	}
	if p.Specialties != nil {
		cols["specialties"] = pq.StringArray(*p.Specialties)
	}
	return cols
}

func (p TechnicianPatch) Apply(t Technician) Technician {
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.Email != nil {
		t.Email = *p.Email
	}
	if p.Specialties != nil {
		t.Specialties = pq.StringArray(append([]string(nil), (*p.Specialties)...))
	}
	return t
}
