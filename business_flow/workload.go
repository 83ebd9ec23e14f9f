package businessflow

import (
	"math"
	"sort"

	"github.com/amirphl/repair-desk/app/dto"
	"github.com/amirphl/repair-desk/models"
	"github.com/amirphl/repair-desk/utils"
	"github.com/google/uuid"
)

// ActiveTicketCounts counts active tickets per assigned technician
func ActiveTicketCounts(tickets []models.RepairTicket) map[uuid.UUID]int {
	counts := make(map[uuid.UUID]int)
	for _, t := range tickets {
		if t.TechnicianID != nil && t.IsActive() {
			counts[*t.TechnicianID]++
		}
	}
	return counts
}

// WorkloadLevel names the load of a technician with count active tickets
func WorkloadLevel(count int) string {
	switch {
	case count == 0:
		return "none"
	case count <= 2:
		return "light"
	case count <= 4:
		return "moderate"
	default:
		return "heavy"
	}
}

// ComputeWorkload groups the active tickets by technician
func ComputeWorkload(tickets []models.RepairTicket, technicians []models.Technician) dto.WorkloadOverview {
	active := ActiveTickets(tickets)

	byTech := make(map[uuid.UUID][]models.RepairTicket)
	unassigned := make([]models.RepairTicket, 0)
	assigned := 0
	for _, t := range active {
		if t.TechnicianID == nil {
			unassigned = append(unassigned, t)
			continue
		}
		byTech[*t.TechnicianID] = append(byTech[*t.TechnicianID], t)
		assigned++
	}

	overview := dto.WorkloadOverview{
		TechnicianCount: len(technicians),
		ActiveTickets:   len(active),
		UnassignedCount: len(unassigned),
		Technicians:     make([]dto.TechnicianWorkload, 0, len(technicians)),
		Unassigned:      unassigned,
	}
	if len(technicians) > 0 {
		overview.AvgTicketsPerTechnician = int(math.Round(float64(assigned) / float64(len(technicians))))
	}

	for _, tech := range technicians {
		assignedTickets := byTech[tech.ID]
		if assignedTickets == nil {
			assignedTickets = []models.RepairTicket{}
		}
		w := dto.TechnicianWorkload{
			Technician: tech,
			Tickets:    assignedTickets,
			Total:      len(assignedTickets),
		}
		w.Technician.ActiveTickets = w.Total
		for _, t := range assignedTickets {
			if t.Priority == models.PriorityUrgent {
				w.Urgent++
			}
			if t.Status == models.StatusInProgress {
				w.InProgress++
			}
			w.EstimatedValue += t.EstimatedCost
		}
		w.Load = WorkloadLevel(w.Total)
		w.LoadColor = utils.WorkloadColor(w.Total)
		overview.Technicians = append(overview.Technicians, w)
	}

	return overview
}

// sortTechnicians orders technicians by byte-wise name then id, the same rule as the
// store's ORDER BY name COLLATE "C", id
func sortTechnicians(technicians []models.Technician) {
	sort.SliceStable(technicians, func(i, j int) bool {
		if technicians[i].Name != technicians[j].Name {
			return technicians[i].Name < technicians[j].Name
		}
		return technicians[i].ID.String() < technicians[j].ID.String()
	})
}
