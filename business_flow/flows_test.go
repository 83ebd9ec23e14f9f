package businessflow

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/amirphl/repair-desk/app/dto"
	"github.com/amirphl/repair-desk/models"
	"github.com/amirphl/repair-desk/repository"
	"github.com/amirphl/repair-desk/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlows_RequireLoadedState(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	_, err := NewTicketFlow(env.system).ListTickets(ctx, dto.ListTicketsQuery{})
	assert.True(t, IsStateUnavailable(err), "not loaded yet")

	env.tickets.getErr = errors.New("connection refused")
	require.Error(t, env.system.Load(ctx))

	_, err = NewTicketFlow(env.system).ListTickets(ctx, dto.ListTicketsQuery{})
	assert.True(t, IsStateUnavailable(err))
	var be *BusinessError
	require.True(t, errors.As(err, &be))
	assert.Equal(t, "STATE_UNAVAILABLE", be.Code)
	assert.Equal(t, "Failed to load data: connection refused", be.Message)

	_, err = NewCustomerFlow(env.system).ListCustomers(ctx, "")
	assert.True(t, IsStateUnavailable(err))
	_, err = NewTechnicianFlow(env.system).ListTechnicians(ctx)
	assert.True(t, IsStateUnavailable(err))
	_, err = NewReportFlow(env.system, nil, "", 0).Dashboard(ctx)
	assert.True(t, IsStateUnavailable(err))
}

func TestTicketFlow(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	customerID := uuid.New()
	env.tickets.names[customerID] = "Alice"
	require.NoError(t, env.system.Load(ctx))
	flow := NewTicketFlow(env.system)

	created, err := flow.CreateTicket(ctx, &dto.CreateTicketRequest{
		CustomerID:       customerID.String(),
		DeviceType:       "Laptop",
		IssueDescription: "Does not boot",
		EstimatedCost:    80,
	})
	require.NoError(t, err)
	assert.Equal(t, "RPR-001", created.ID)
	assert.Equal(t, "Alice", created.CustomerName)

	got, err := flow.GetTicket(ctx, "rpr-001")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = flow.GetTicket(ctx, "RPR-999")
	assert.True(t, repository.IsNotFound(err))

	var req dto.UpdateTicketRequest
	require.NoError(t, json.Unmarshal([]byte(`{"status":"completed","actualCost":95.5}`), &req))
	updated, err := flow.UpdateTicket(ctx, created.ID, &req)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, updated.Status)
	require.NotNil(t, updated.CompletedAt)
	assert.False(t, updated.CompletedAt.Before(updated.CreatedAt))
	assert.Equal(t, 95.5, *updated.ActualCost)
	assert.Equal(t, "Does not boot", updated.IssueDescription)

	list, err := flow.ListTickets(ctx, dto.ListTicketsQuery{Status: "completed"})
	require.NoError(t, err)
	assert.Equal(t, 1, list.Total)
	assert.Len(t, list.Tickets, 1)

	require.NoError(t, flow.DeleteTicket(ctx, created.ID))
	err = flow.DeleteTicket(ctx, created.ID)
	assert.True(t, repository.IsNotFound(err), "delete is not idempotent")
}

func TestTicketFlow_InvalidInput(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	require.NoError(t, env.system.Load(ctx))
	flow := NewTicketFlow(env.system)

	_, err := flow.CreateTicket(ctx, &dto.CreateTicketRequest{CustomerID: "nope", DeviceType: "Laptop"})
	assert.ErrorIs(t, err, ErrInvalidCustomerID)

	_, err = flow.CreateTicket(ctx, &dto.CreateTicketRequest{
		CustomerID:   uuid.NewString(),
		DeviceType:   "Laptop",
		TechnicianID: utils.ToPtr("bad"),
	})
	assert.ErrorIs(t, err, ErrInvalidTechnicianID)
	assert.Empty(t, env.system.Tickets())
}

func TestToTicketPatch(t *testing.T) {
	techID := uuid.New()

	t.Run("absent fields stay unset", func(t *testing.T) {
		var req dto.UpdateTicketRequest
		require.NoError(t, json.Unmarshal([]byte(`{"deviceModel":"X1"}`), &req))
		patch, err := ToTicketPatch(&req)
		require.NoError(t, err)
		assert.Equal(t, "X1", *patch.DeviceModel)
		assert.False(t, patch.TechnicianID.Set)
		assert.False(t, patch.Grade.Set)
		assert.Nil(t, patch.Status)
	})

	t.Run("null and empty technician unassign", func(t *testing.T) {
		for _, body := range []string{`{"technicianId":null}`, `{"technicianId":""}`} {
			var req dto.UpdateTicketRequest
			require.NoError(t, json.Unmarshal([]byte(body), &req))
			patch, err := ToTicketPatch(&req)
			require.NoError(t, err)
			assert.True(t, patch.TechnicianID.Set, body)
			assert.Nil(t, patch.TechnicianID.Value, body)
		}
	})

	t.Run("assign technician and grade", func(t *testing.T) {
		var req dto.UpdateTicketRequest
		require.NoError(t, json.Unmarshal([]byte(`{"technicianId":"`+techID.String()+`","grade":"good"}`), &req))
		patch, err := ToTicketPatch(&req)
		require.NoError(t, err)
		assert.Equal(t, techID, *patch.TechnicianID.Value)
		assert.Equal(t, models.GradeGood, *patch.Grade.Value)
	})

	t.Run("invalid grade", func(t *testing.T) {
		var req dto.UpdateTicketRequest
		require.NoError(t, json.Unmarshal([]byte(`{"grade":"mint"}`), &req))
		_, err := ToTicketPatch(&req)
		assert.ErrorIs(t, err, ErrInvalidGrade)
	})
}

func TestCustomerAndTechnicianFlows(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	require.NoError(t, env.system.Load(ctx))
	customers := NewCustomerFlow(env.system)
	technicians := NewTechnicianFlow(env.system)

	c, err := customers.CreateCustomer(ctx, &dto.CreateCustomerRequest{Name: "Alice", Email: "alice@example.com"})
	require.NoError(t, err)
	_, err = customers.UpdateCustomer(ctx, c.ID.String(), &dto.UpdateCustomerRequest{Phone: utils.ToPtr("555-0100")})
	require.NoError(t, err)

	list, err := customers.ListCustomers(ctx, "0100")
	require.NoError(t, err)
	require.Len(t, list.Customers, 1)
	assert.Equal(t, "Alice", list.Customers[0].Name)

	_, err = customers.UpdateCustomer(ctx, "not-a-uuid", &dto.UpdateCustomerRequest{})
	assert.True(t, IsInvalidInput(err))

	tech, err := technicians.CreateTechnician(ctx, &dto.CreateTechnicianRequest{Name: "Bob", Email: "bob@example.com", Specialties: []string{"phones"}})
	require.NoError(t, err)
	roster, err := technicians.ListTechnicians(ctx)
	require.NoError(t, err)
	require.Len(t, roster, 1)
	assert.Equal(t, []string{"phones"}, []string(roster[0].Specialties))

	require.NoError(t, technicians.DeleteTechnician(ctx, tech.ID.String()))
	require.NoError(t, customers.DeleteCustomer(ctx, c.ID.String()))
}

func TestReportFlow(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	now := time.Date(2024, time.May, 15, 12, 0, 0, 0, time.UTC)
	picked := ticketAt("RPR-001", models.StatusPickedUp, now.AddDate(0, 0, -3))
	picked.ActualCost = utils.ToPtr(100.0)
	env.tickets.tickets = []models.RepairTicket{ticketAt("RPR-002", models.StatusReceived, now.AddDate(0, 0, -1)), picked}
	require.NoError(t, env.system.Load(ctx))

	flow := NewReportFlow(env.system, nil, "repair", time.Minute).(*ReportFlowImpl)
	flow.now = func() time.Time { return now }

	dashboard, err := flow.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, dashboard.Stats.ActiveTickets)
	assert.Equal(t, 100.0, dashboard.Stats.MonthlyRevenue)
	assert.Len(t, dashboard.RecentTickets, 2)

	report, err := flow.Report(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 30, report.Days)
	assert.Equal(t, 2, report.Metrics.TotalTickets)

	export, err := flow.Export(ctx, 7, "")
	require.NoError(t, err)
	assert.Equal(t, "repair-report-2024-05-15.json", export.FileName)

	_, err = flow.Export(ctx, 7, "pdf")
	assert.True(t, IsInvalidReportFormat(err))

	status := flow.Status(ctx)
	assert.Equal(t, 2, status.Tickets)
	assert.Empty(t, status.Error)

	env.tickets.getErr = errors.New("connection refused")
	status, err = flow.Reload(ctx)
	require.Error(t, err)
	assert.True(t, IsStateUnavailable(err))
	assert.Equal(t, "Failed to load data: connection refused", status.Error)
	assert.Equal(t, 0, status.Tickets)
}

func TestReportFlow_CacheKeyChangesWithDay(t *testing.T) {
	env := newTestEnv()
	flow := NewReportFlow(env.system, nil, "repair", time.Minute).(*ReportFlowImpl)
	flow.session = "s"

	day := time.Date(2024, time.May, 15, 23, 59, 0, 0, time.UTC)
	flow.now = func() time.Time { return day }
	before := flow.cacheKey(3, "dashboard")
	assert.Equal(t, "repair:views:s:3:2024-05-15:dashboard", before)

	flow.now = func() time.Time { return day.Add(2 * time.Minute) }
	after := flow.cacheKey(3, "dashboard")
	assert.Equal(t, "repair:views:s:3:2024-05-16:dashboard", after)
	assert.NotEqual(t, before, after)
}

func TestRedisKey(t *testing.T) {
	assert.Equal(t, "repair:views:s:1:dashboard", redisKey("repair", "views", "s", "1", "dashboard"))
	assert.Equal(t, "views:s", redisKey("", "views", "s"))
}
