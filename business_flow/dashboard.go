package businessflow

import (
	"sort"
	"time"

	"github.com/amirphl/repair-desk/app/dto"
	"github.com/amirphl/repair-desk/models"
	"github.com/amirphl/repair-desk/utils"
)

// ActiveTickets returns the tickets that still need work
func ActiveTickets(tickets []models.RepairTicket) []models.RepairTicket {
	active := make([]models.RepairTicket, 0, len(tickets))
	for _, t := range tickets {
		if t.IsActive() {
			active = append(active, t)
		}
	}
	return active
}

// ComputeDashboardStats derives the dashboard headline numbers.
// "Today" is the calendar day of now in now's location.
func ComputeDashboardStats(tickets []models.RepairTicket, now time.Time) dto.DashboardStats {
	var stats dto.DashboardStats
	for _, t := range tickets {
		if t.IsActive() {
			stats.ActiveTickets++
			if t.Priority == models.PriorityUrgent {
				stats.UrgentTickets++
			}
		}
		if t.CompletedAt != nil && utils.SameDay(*t.CompletedAt, now, now.Location()) {
			stats.CompletedToday++
		}
		if t.Status == models.StatusPickedUp && t.ActualCost != nil {
			stats.MonthlyRevenue += *t.ActualCost
		}
	}
	return stats
}

// RecentTickets returns up to n tickets, most recently updated first
func RecentTickets(tickets []models.RepairTicket, n int) []models.RepairTicket {
	sorted := append([]models.RepairTicket{}, tickets...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].UpdatedAt.After(sorted[j].UpdatedAt)
	})
	if n >= 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// BuildDashboard combines the stats with the recent ticket list
func BuildDashboard(tickets []models.RepairTicket, now time.Time) dto.DashboardResponse {
	return dto.DashboardResponse{
		Stats:         ComputeDashboardStats(tickets, now),
		RecentTickets: RecentTickets(tickets, utils.RecentTicketsLimit),
	}
}
