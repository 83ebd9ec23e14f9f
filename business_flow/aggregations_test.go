package businessflow

import (
	"fmt"
	"testing"
	"time"

	"github.com/amirphl/repair-desk/app/dto"
	"github.com/amirphl/repair-desk/models"
	"github.com/amirphl/repair-desk/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Wednesday 2024-05-15 12:00 UTC
var refNow = time.Date(2024, time.May, 15, 12, 0, 0, 0, time.UTC)

func TestDashboard_ActiveAndRevenueScenario(t *testing.T) {
	received := ticketAt("RPR-001", models.StatusReceived, refNow.Add(-72*time.Hour))
	inProgress := ticketAt("RPR-002", models.StatusInProgress, refNow.Add(-48*time.Hour))
	completed := ticketAt("RPR-003", models.StatusCompleted, refNow.Add(-24*time.Hour))
	completed.ActualCost = utils.ToPtr(100.0)

	tickets := []models.RepairTicket{completed, inProgress, received}
	pickedUp := models.StatusPickedUp
	tickets[0] = models.TicketPatch{Status: &pickedUp}.Apply(tickets[0], refNow)

	stats := ComputeDashboardStats(tickets, refNow)
	assert.Equal(t, 2, stats.ActiveTickets)
	assert.Equal(t, 100.0, stats.MonthlyRevenue)
}

func TestDashboard_RevenueDelta(t *testing.T) {
	a := ticketAt("RPR-001", models.StatusPickedUp, refNow)
	a.ActualCost = utils.ToPtr(50.0)
	b := ticketAt("RPR-002", models.StatusPickedUp, refNow)
	b.ActualCost = utils.ToPtr(70.0)
	notPicked := ticketAt("RPR-003", models.StatusReadyForPickup, refNow)
	notPicked.ActualCost = utils.ToPtr(1000.0)
	tickets := []models.RepairTicket{a, b, notPicked}

	before := ComputeDashboardStats(tickets, refNow).MonthlyRevenue
	assert.Equal(t, 120.0, before)

	tickets[1] = models.TicketPatch{ActualCost: models.Some(95.0)}.Apply(tickets[1], refNow)
	after := ComputeDashboardStats(tickets, refNow).MonthlyRevenue
	assert.Equal(t, 25.0, after-before)
}

func TestDashboard_CompletedTodayAndUrgent(t *testing.T) {
	today := refNow.Add(-2 * time.Hour)
	yesterday := refNow.Add(-26 * time.Hour)

	doneToday := ticketAt("RPR-001", models.StatusCompleted, yesterday)
	doneToday.CompletedAt = &today
	doneYesterday := ticketAt("RPR-002", models.StatusPickedUp, yesterday)
	doneYesterday.CompletedAt = &yesterday
	urgent := ticketAt("RPR-003", models.StatusAwaitingParts, yesterday)
	urgent.Priority = models.PriorityUrgent
	urgentDone := ticketAt("RPR-004", models.StatusCancelled, yesterday)
	urgentDone.Priority = models.PriorityUrgent

	stats := ComputeDashboardStats([]models.RepairTicket{doneToday, doneYesterday, urgent, urgentDone}, refNow)
	assert.Equal(t, 1, stats.CompletedToday)
	assert.Equal(t, 1, stats.UrgentTickets)
	assert.Equal(t, 1, stats.ActiveTickets)
}

func TestRecentTickets(t *testing.T) {
	var tickets []models.RepairTicket
	for i := 1; i <= 7; i++ {
		tk := ticketAt(models.FormatTicketID(int64(i)), models.StatusReceived, refNow.Add(-time.Duration(10-i)*time.Hour))
		tickets = append(tickets, tk)
	}
	tickets[1].UpdatedAt = refNow

	recent := RecentTickets(tickets, utils.RecentTicketsLimit)
	require.Len(t, recent, 5)
	assert.Equal(t, "RPR-002", recent[0].ID)
	assert.Equal(t, "RPR-007", recent[1].ID)
	assert.Equal(t, "RPR-001", tickets[0].ID, "input order is kept")

	assert.Len(t, RecentTickets(tickets[:2], 5), 2)
}

func TestComputeReport_EmptyWindow(t *testing.T) {
	old := ticketAt("RPR-001", models.StatusPickedUp, refNow.AddDate(0, 0, -90))

	report := ComputeReport([]models.RepairTicket{old}, nil, 30, refNow)
	assert.Equal(t, 30, report.Days)
	assert.Equal(t, 0, report.Metrics.TotalTickets)
	assert.Equal(t, 0.0, report.Metrics.CompletionRate)
	assert.Equal(t, 0.0, report.Metrics.AvgTicketValue)
	assert.Equal(t, 0.0, report.Metrics.AvgCompletionTime)
	assert.Empty(t, report.StatusDistribution)
	assert.Empty(t, report.RevenueTrend)
}

func TestComputeReport_DefaultWindow(t *testing.T) {
	report := ComputeReport(nil, nil, 0, refNow)
	assert.Equal(t, utils.DefaultReportDays, report.Days)
}

func TestComputeReport_Metrics(t *testing.T) {
	techA := models.Technician{ID: uuid.New(), Name: "Alice"}
	techB := models.Technician{ID: uuid.New(), Name: "Bob"}

	created := refNow.AddDate(0, 0, -10)
	completedAt := created.AddDate(0, 0, 2)

	t1 := ticketAt("RPR-001", models.StatusPickedUp, created)
	t1.DeviceType = "Phone"
	t1.ActualCost = utils.ToPtr(200.0)
	t1.CompletedAt = &completedAt
	t1.TechnicianID = &techB.ID

	t2 := ticketAt("RPR-002", models.StatusCompleted, created)
	t2.DeviceType = "Phone"
	t2.EstimatedCost = 100
	t2.CompletedAt = &completedAt
	t2.TechnicianID = &techA.ID

	t3 := ticketAt("RPR-003", models.StatusInProgress, created)
	t3.Priority = models.PriorityUrgent
	t3.TechnicianID = &techA.ID

	t4 := ticketAt("RPR-004", models.StatusCancelled, created)

	outside := ticketAt("RPR-000", models.StatusPickedUp, refNow.AddDate(0, 0, -31))
	outside.ActualCost = utils.ToPtr(999.0)

	report := ComputeReport([]models.RepairTicket{t4, t3, t2, t1, outside}, []models.Technician{techA, techB}, 30, refNow)

	m := report.Metrics
	assert.Equal(t, 4, m.TotalTickets)
	assert.Equal(t, 2, m.CompletedTickets)
	assert.Equal(t, 1, m.ActiveTickets)
	assert.Equal(t, 300.0, m.TotalRevenue)
	assert.Equal(t, 150.0, m.AvgTicketValue)
	assert.InDelta(t, 2.0, m.AvgCompletionTime, 0.0001)
	assert.Equal(t, 50.0, m.CompletionRate)

	require.Len(t, report.StatusDistribution, 4)
	assert.Equal(t, models.StatusInProgress, report.StatusDistribution[0].Status)
	assert.Equal(t, models.StatusCancelled, report.StatusDistribution[3].Status)
	assert.Equal(t, 25.0, report.StatusDistribution[0].Percentage)
	assert.Equal(t, "bg-yellow-100 text-yellow-800", report.StatusDistribution[0].Color)

	require.Len(t, report.PriorityDistribution, 2)
	assert.Equal(t, models.PriorityMedium, report.PriorityDistribution[0].Priority)
	assert.Equal(t, 3, report.PriorityDistribution[0].Count)
	assert.Equal(t, models.PriorityUrgent, report.PriorityDistribution[1].Priority)
	assert.Equal(t, "bg-red-100 text-red-700", report.PriorityDistribution[1].Color)

	require.Len(t, report.DeviceTypeAnalysis, 2)
	assert.Equal(t, dto.DeviceTypeStat{DeviceType: "Laptop", Count: 2, Revenue: 0, AvgValue: 0}, report.DeviceTypeAnalysis[0])
	assert.Equal(t, dto.DeviceTypeStat{DeviceType: "Phone", Count: 2, Revenue: 300, AvgValue: 150}, report.DeviceTypeAnalysis[1])

	require.Len(t, report.TechnicianPerformance, 2)
	assert.Equal(t, "Bob", report.TechnicianPerformance[0].Name)
	assert.Equal(t, 200.0, report.TechnicianPerformance[0].Revenue)
	assert.Equal(t, 100.0, report.TechnicianPerformance[0].CompletionRate)
	assert.Equal(t, "Alice", report.TechnicianPerformance[1].Name)
	assert.Equal(t, 2, report.TechnicianPerformance[1].TotalTickets)
	assert.Equal(t, 50.0, report.TechnicianPerformance[1].CompletionRate)

	require.Len(t, report.RevenueTrend, 1)
	assert.Equal(t, dto.RevenuePoint{Week: "2024-05-05", Revenue: 300}, report.RevenueTrend[0])
}

func TestComputeReport_TechnicianWithoutTickets(t *testing.T) {
	tech := models.Technician{ID: uuid.New(), Name: "Idle"}
	report := ComputeReport(nil, []models.Technician{tech}, 7, refNow)
	require.Len(t, report.TechnicianPerformance, 1)
	assert.Equal(t, 0.0, report.TechnicianPerformance[0].CompletionRate)
}

func TestRevenueTrend_SundayBuckets(t *testing.T) {
	saturday := time.Date(2024, time.May, 11, 23, 0, 0, 0, time.UTC)
	sunday := time.Date(2024, time.May, 12, 1, 0, 0, 0, time.UTC)

	a := ticketAt("RPR-001", models.StatusCompleted, saturday)
	a.EstimatedCost = 10
	a.CompletedAt = &saturday
	b := ticketAt("RPR-002", models.StatusCompleted, sunday)
	b.EstimatedCost = 20
	b.CompletedAt = &sunday

	trend := revenueTrend([]models.RepairTicket{b, a}, time.UTC)
	assert.Equal(t, []dto.RevenuePoint{
		{Week: "2024-05-05", Revenue: 10},
		{Week: "2024-05-12", Revenue: 20},
	}, trend)
}

func TestComputeWorkload(t *testing.T) {
	alice := models.Technician{ID: uuid.New(), Name: "Alice"}
	bob := models.Technician{ID: uuid.New(), Name: "Bob"}

	var tickets []models.RepairTicket
	for i := 0; i < 5; i++ {
		tk := ticketAt(fmt.Sprintf("RPR-%03d", i+1), models.StatusInProgress, refNow)
		tk.TechnicianID = &alice.ID
		tk.EstimatedCost = 10
		tickets = append(tickets, tk)
	}
	tickets[0].Priority = models.PriorityUrgent
	done := ticketAt("RPR-010", models.StatusPickedUp, refNow)
	done.TechnicianID = &bob.ID
	unassigned := ticketAt("RPR-011", models.StatusReceived, refNow)
	tickets = append(tickets, done, unassigned)

	overview := ComputeWorkload(tickets, []models.Technician{alice, bob})
	assert.Equal(t, 2, overview.TechnicianCount)
	assert.Equal(t, 6, overview.ActiveTickets)
	assert.Equal(t, 1, overview.UnassignedCount)
	assert.Equal(t, 3, overview.AvgTicketsPerTechnician)

	require.Len(t, overview.Technicians, 2)
	a := overview.Technicians[0]
	assert.Equal(t, 5, a.Total)
	assert.Equal(t, 1, a.Urgent)
	assert.Equal(t, 5, a.InProgress)
	assert.Equal(t, 50.0, a.EstimatedValue)
	assert.Equal(t, "heavy", a.Load)
	assert.Equal(t, 5, a.Technician.ActiveTickets)

	b := overview.Technicians[1]
	assert.Equal(t, 0, b.Total)
	assert.Equal(t, "none", b.Load)
	assert.NotNil(t, b.Tickets)
}

func TestComputeWorkload_NoTechnicians(t *testing.T) {
	overview := ComputeWorkload([]models.RepairTicket{ticketAt("RPR-001", models.StatusReceived, refNow)}, nil)
	assert.Equal(t, 0, overview.AvgTicketsPerTechnician)
	assert.Equal(t, 1, overview.UnassignedCount)
}

func TestWorkloadLevel(t *testing.T) {
	tests := []struct {
		count int
		want  string
	}{
		{0, "none"},
		{1, "light"},
		{2, "light"},
		{3, "moderate"},
		{4, "moderate"},
		{5, "heavy"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, WorkloadLevel(tt.count), "count %d", tt.count)
	}
}

func TestFilterTickets(t *testing.T) {
	a := ticketAt("RPR-001", models.StatusReceived, refNow)
	a.CustomerName = "Alice Smith"
	a.DeviceModel = "ThinkPad X1"
	b := ticketAt("RPR-002", models.StatusInProgress, refNow)
	b.CustomerName = "Bob"
	b.DeviceType = "Phone"
	b.DeviceModel = "Pixel 8"
	b.Priority = models.PriorityUrgent
	tickets := []models.RepairTicket{a, b}

	tests := []struct {
		name  string
		query dto.ListTicketsQuery
		want  []string
	}{
		{"no filters", dto.ListTicketsQuery{}, []string{"RPR-001", "RPR-002"}},
		{"all selectors", dto.ListTicketsQuery{Status: "all", Priority: "all"}, []string{"RPR-001", "RPR-002"}},
		{"search by id", dto.ListTicketsQuery{Search: "rpr-002"}, []string{"RPR-002"}},
		{"search by customer", dto.ListTicketsQuery{Search: "smith"}, []string{"RPR-001"}},
		{"search by model", dto.ListTicketsQuery{Search: "pixel"}, []string{"RPR-002"}},
		{"status", dto.ListTicketsQuery{Status: "received"}, []string{"RPR-001"}},
		{"priority", dto.ListTicketsQuery{Priority: "urgent"}, []string{"RPR-002"}},
		{"no match", dto.ListTicketsQuery{Search: "tablet"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ids := []string{}
			for _, tk := range FilterTickets(tickets, tt.query) {
				ids = append(ids, tk.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestFilterCustomers(t *testing.T) {
	customers := []models.Customer{
		{ID: uuid.New(), Name: "Alice", Email: "alice@example.com", Phone: "555-0100"},
		{ID: uuid.New(), Name: "Bob", Email: "bob@EXAMPLE.com", Phone: "555-0199"},
	}

	assert.Len(t, FilterCustomers(customers, ""), 2)
	assert.Len(t, FilterCustomers(customers, "example.com"), 2)
	assert.Len(t, FilterCustomers(customers, "ALICE"), 1)
	assert.Len(t, FilterCustomers(customers, "0199"), 1)
	assert.Empty(t, FilterCustomers(customers, "carol"))
}
