package businessflow

import (
	"sort"
	"time"

	"github.com/amirphl/repair-desk/app/dto"
	"github.com/amirphl/repair-desk/models"
	"github.com/amirphl/repair-desk/utils"
)

// NormalizeReportDays falls back to the default window for non-positive values
func NormalizeReportDays(days int) int {
	if days <= 0 {
		return utils.DefaultReportDays
	}
	return days
}

// TicketsInWindow returns the tickets created within the trailing days before now
func TicketsInWindow(tickets []models.RepairTicket, days int, now time.Time) []models.RepairTicket {
	cutoff := now.AddDate(0, 0, -NormalizeReportDays(days))
	out := make([]models.RepairTicket, 0, len(tickets))
	for _, t := range tickets {
		if !t.CreatedAt.Before(cutoff) {
			out = append(out, t)
		}
	}
	return out
}

// ComputeReport aggregates the tickets created within the trailing window.
// Every rate or average with a zero denominator is 0.
func ComputeReport(tickets []models.RepairTicket, technicians []models.Technician, days int, now time.Time) dto.Report {
	days = NormalizeReportDays(days)
	window := TicketsInWindow(tickets, days, now)

	return dto.Report{
		Days:                  days,
		Metrics:               computeMetrics(window),
		StatusDistribution:    statusDistribution(window),
		PriorityDistribution:  priorityDistribution(window),
		DeviceTypeAnalysis:    deviceTypeAnalysis(window),
		TechnicianPerformance: technicianPerformance(window, technicians),
		RevenueTrend:          revenueTrend(window, now.Location()),
	}
}

func computeMetrics(window []models.RepairTicket) dto.ReportMetrics {
	m := dto.ReportMetrics{TotalTickets: len(window)}

	var completionDays float64
	timed := 0
	for _, t := range window {
		if t.IsActive() {
			m.ActiveTickets++
		}
		if !t.Status.IsDone() {
			continue
		}
		m.CompletedTickets++
		m.TotalRevenue += t.RevenueValue()
		if t.CompletedAt != nil {
			completionDays += utils.DaysBetween(t.CreatedAt, *t.CompletedAt)
			timed++
		}
	}

	m.AvgTicketValue = utils.SafeDiv(m.TotalRevenue, float64(m.CompletedTickets))
	m.AvgCompletionTime = utils.SafeDiv(completionDays, float64(timed))
	m.CompletionRate = utils.Percent(m.CompletedTickets, m.TotalTickets)
	return m
}

func statusDistribution(window []models.RepairTicket) []dto.StatusCount {
	counts := make(map[models.RepairStatus]int)
	for _, t := range window {
		counts[t.Status]++
	}

	order := append([]models.RepairStatus{}, models.RepairStatuses...)
	var unknown []models.RepairStatus
	for status := range counts {
		if !status.Valid() {
			unknown = append(unknown, status)
		}
	}
	sort.Slice(unknown, func(i, j int) bool { return unknown[i] < unknown[j] })
	order = append(order, unknown...)

	out := make([]dto.StatusCount, 0, len(counts))
	for _, status := range order {
		if n := counts[status]; n > 0 {
			out = append(out, dto.StatusCount{
				Status:     status,
				Count:      n,
				Percentage: utils.Percent(n, len(window)),
				Color:      utils.StatusColor(string(status)),
			})
		}
	}
	return out
}

func priorityDistribution(window []models.RepairTicket) []dto.PriorityCount {
	counts := make(map[models.Priority]int)
	for _, t := range window {
		counts[t.Priority]++
	}

	order := append([]models.Priority{}, models.Priorities...)
	var unknown []models.Priority
	for priority := range counts {
		if !priority.Valid() {
			unknown = append(unknown, priority)
		}
	}
	sort.Slice(unknown, func(i, j int) bool { return unknown[i] < unknown[j] })
	order = append(order, unknown...)

	out := make([]dto.PriorityCount, 0, len(counts))
	for _, priority := range order {
		if n := counts[priority]; n > 0 {
			out = append(out, dto.PriorityCount{
				Priority:   priority,
				Count:      n,
				Percentage: utils.Percent(n, len(window)),
				Color:      utils.PriorityColor(string(priority)),
			})
		}
	}
	return out
}

func deviceTypeAnalysis(window []models.RepairTicket) []dto.DeviceTypeStat {
	index := make(map[string]int)
	out := make([]dto.DeviceTypeStat, 0)
	for _, t := range window {
		i, ok := index[t.DeviceType]
		if !ok {
			i = len(out)
			index[t.DeviceType] = i
			out = append(out, dto.DeviceTypeStat{DeviceType: t.DeviceType})
		}
		out[i].Count++
		out[i].Revenue += t.RevenueValue()
	}

	for i := range out {
		out[i].AvgValue = utils.SafeDiv(out[i].Revenue, float64(out[i].Count))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].DeviceType < out[j].DeviceType
	})
	return out
}

func technicianPerformance(window []models.RepairTicket, technicians []models.Technician) []dto.TechnicianPerformance {
	out := make([]dto.TechnicianPerformance, 0, len(technicians))
	for _, tech := range technicians {
		p := dto.TechnicianPerformance{TechnicianID: tech.ID.String(), Name: tech.Name}
		for _, t := range window {
			if t.TechnicianID == nil || *t.TechnicianID != tech.ID {
				continue
			}
			p.TotalTickets++
			if t.Status.IsDone() {
				p.CompletedTickets++
				p.Revenue += t.RevenueValue()
			}
		}
		p.CompletionRate = utils.Percent(p.CompletedTickets, p.TotalTickets)
		out = append(out, p)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Revenue > out[j].Revenue
	})
	return out
}

// revenueTrend buckets completed revenue by the Sunday starting the week of completion
func revenueTrend(window []models.RepairTicket, loc *time.Location) []dto.RevenuePoint {
	weeks := make(map[string]float64)
	for _, t := range window {
		if !t.Status.IsDone() {
			continue
		}
		at := t.UpdatedAt
		if t.CompletedAt != nil {
			at = *t.CompletedAt
		}
		weeks[utils.DateKey(utils.StartOfWeek(at.In(loc)))] += t.RevenueValue()
	}

	out := make([]dto.RevenuePoint, 0, len(weeks))
	for week, revenue := range weeks {
		out = append(out, dto.RevenuePoint{Week: week, Revenue: revenue})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Week < out[j].Week })
	return out
}
