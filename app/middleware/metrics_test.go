package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	businessflow "github.com/amirphl/repair-desk/business_flow"
	"github.com/amirphl/repair-desk/models"
	"github.com/amirphl/repair-desk/repository"
	"github.com/gofiber/fiber/v3"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateMetrics(t *testing.T) {
	var observer businessflow.StateObserver = NewStateMetrics()

	snapshot := businessflow.Snapshot{
		Tickets: []models.RepairTicket{
			{ID: "RPR-001", Status: models.StatusReceived},
			{ID: "RPR-002", Status: models.StatusReceived},
			{ID: "RPR-003", Status: models.StatusPickedUp},
		},
		Customers: []models.Customer{{}, {}},
		Revision:  7,
	}
	observer.Loaded(snapshot, 20*time.Millisecond, nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(repairTickets.WithLabelValues("received")))
	assert.Equal(t, 1.0, testutil.ToFloat64(repairTickets.WithLabelValues("picked_up")))
	assert.Equal(t, 0.0, testutil.ToFloat64(repairTickets.WithLabelValues("cancelled")))
	assert.Equal(t, 2.0, testutil.ToFloat64(repairUnassignedTickets))
	assert.Equal(t, 2.0, testutil.ToFloat64(repairCustomers))
	assert.Equal(t, 7.0, testutil.ToFloat64(repairStateRevision))

	before := testutil.ToFloat64(repairStoreErrorsTotal.WithLabelValues(string(repository.KindNotFound)))
	failuresBefore := testutil.ToFloat64(repairMutationsTotal.WithLabelValues("update_ticket", "failure"))
	observer.Mutated("update_ticket", snapshot, repository.NewStoreError(repository.KindNotFound, "op", "missing", nil))
	assert.Equal(t, before+1, testutil.ToFloat64(repairStoreErrorsTotal.WithLabelValues(string(repository.KindNotFound))))
	assert.Equal(t, failuresBefore+1, testutil.ToFloat64(repairMutationsTotal.WithLabelValues("update_ticket", "failure")))

	other := testutil.ToFloat64(repairStoreErrorsTotal.WithLabelValues("OTHER"))
	observer.Loaded(businessflow.Snapshot{}, time.Millisecond, errors.New("boom"))
	assert.Equal(t, other+1, testutil.ToFloat64(repairStoreErrorsTotal.WithLabelValues("OTHER")))
	assert.Equal(t, 0.0, testutil.ToFloat64(repairTickets.WithLabelValues("received")))
}

func TestMetricsMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(Metrics())
	app.Get("/tickets/:id", func(c fiber.Ctx) error { return c.SendStatus(fiber.StatusNotFound) })

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/tickets/:id", "404"))
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/tickets/RPR-001", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, before+1, testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/tickets/:id", "404")))
}
