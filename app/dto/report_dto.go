package dto

import (
	"time"

	"github.com/amirphl/repair-desk/models"
)

// DashboardStats are the headline numbers of the dashboard
type DashboardStats struct {
	ActiveTickets  int     `json:"activeTickets"`
	CompletedToday int     `json:"completedToday"`
	UrgentTickets  int     `json:"urgentTickets"`
	MonthlyRevenue float64 `json:"monthlyRevenue"`
}

// DashboardResponse combines the stats with the most recently updated tickets
type DashboardResponse struct {
	Stats         DashboardStats        `json:"stats"`
	RecentTickets []models.RepairTicket `json:"recentTickets"`
}

// TechnicianWorkload is the active load of one technician
type TechnicianWorkload struct {
	Technician     models.Technician     `json:"technician"`
	Tickets        []models.RepairTicket `json:"tickets"`
	Total          int                   `json:"total"`
	Urgent         int                   `json:"urgent"`
	InProgress     int                   `json:"inProgress"`
	EstimatedValue float64               `json:"estimatedValue"`
	Load           string                `json:"load"`
	LoadColor      string                `json:"loadColor"`
}

// WorkloadOverview summarizes assignments across all technicians
type WorkloadOverview struct {
	TechnicianCount         int                   `json:"technicianCount"`
	ActiveTickets           int                   `json:"activeTickets"`
	UnassignedCount         int                   `json:"unassignedCount"`
	AvgTicketsPerTechnician int                   `json:"avgTicketsPerTechnician"`
	Technicians             []TechnicianWorkload  `json:"technicians"`
	Unassigned              []models.RepairTicket `json:"unassigned"`
}

// ReportMetrics are the key metrics of a report window
type ReportMetrics struct {
	TotalTickets      int     `json:"totalTickets"`
	CompletedTickets  int     `json:"completedTickets"`
	ActiveTickets     int     `json:"activeTickets"`
	TotalRevenue      float64 `json:"totalRevenue"`
	AvgTicketValue    float64 `json:"avgTicketValue"`
	AvgCompletionTime float64 `json:"avgCompletionTime"`
	CompletionRate    float64 `json:"completionRate"`
}

type StatusCount struct {
	Status     models.RepairStatus `json:"status"`
	Count      int                 `json:"count"`
	Percentage float64             `json:"percentage"`
	Color      string              `json:"color"`
}

type PriorityCount struct {
	Priority   models.Priority `json:"priority"`
	Count      int             `json:"count"`
	Percentage float64         `json:"percentage"`
	Color      string          `json:"color"`
}

type DeviceTypeStat struct {
	DeviceType string  `json:"deviceType"`
	Count      int     `json:"count"`
	Revenue    float64 `json:"revenue"`
	AvgValue   float64 `json:"avgValue"`
}

type TechnicianPerformance struct {
	TechnicianID     string  `json:"technicianId"`
	Name             string  `json:"name"`
	TotalTickets     int     `json:"totalTickets"`
	CompletedTickets int     `json:"completedTickets"`
	Revenue          float64 `json:"revenue"`
	CompletionRate   float64 `json:"completionRate"`
}

// RevenuePoint is the revenue of the week starting on Week (a Sunday, YYYY-MM-DD)
type RevenuePoint struct {
	Week    string  `json:"week"`
	Revenue float64 `json:"revenue"`
}

// Report is the full aggregation over a trailing window of days
type Report struct {
	Days                  int                     `json:"days"`
	Metrics               ReportMetrics           `json:"metrics"`
	StatusDistribution    []StatusCount           `json:"statusDistribution"`
	PriorityDistribution  []PriorityCount         `json:"priorityDistribution"`
	DeviceTypeAnalysis    []DeviceTypeStat        `json:"deviceTypeAnalysis"`
	TechnicianPerformance []TechnicianPerformance `json:"technicianPerformance"`
	RevenueTrend          []RevenuePoint          `json:"revenueTrend"`
}

// ReportDocument is the exported report file content
type ReportDocument struct {
	DateRange             string                  `json:"dateRange"`
	GeneratedAt           time.Time               `json:"generatedAt"`
	Metrics               ReportMetrics           `json:"metrics"`
	StatusDistribution    []StatusCount           `json:"statusDistribution"`
	PriorityDistribution  []PriorityCount         `json:"priorityDistribution"`
	DeviceTypeAnalysis    []DeviceTypeStat        `json:"deviceTypeAnalysis"`
	TechnicianPerformance []TechnicianPerformance `json:"technicianPerformance"`
	RevenueTrend          []RevenuePoint          `json:"revenueTrend"`
}

// StateStatus describes the loaded session state
type StateStatus struct {
	Loading     bool      `json:"loading"`
	Error       string    `json:"error,omitempty"`
	Revision    uint64    `json:"revision"`
	LoadedAt    time.Time `json:"loadedAt"`
	Tickets     int       `json:"tickets"`
	Customers   int       `json:"customers"`
	Technicians int       `json:"technicians"`
}
