package middleware

import (
	"errors"
	"strconv"
	"time"

	businessflow "github.com/amirphl/repair-desk/business_flow"
	"github.com/amirphl/repair-desk/models"
	"github.com/amirphl/repair-desk/repository"
	"github.com/gofiber/fiber/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Total HTTP requests partitioned by method, route, and status code
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "route", "status"},
	)

	// Request duration in seconds partitioned by method, route, and status code
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	// In-flight HTTP requests
	httpInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_inflight_requests",
			Help: "Number of HTTP requests currently being served",
		},
	)

	// Tickets in the session state partitioned by status
	repairTickets = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "repair_tickets",
			Help: "Number of repair tickets in the loaded state by status",
		},
		[]string{"status"},
	)

	repairUnassignedTickets = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "repair_unassigned_active_tickets",
			Help: "Active repair tickets without a technician",
		},
	)

	repairCustomers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "repair_customers",
			Help: "Number of customers in the loaded state",
		},
	)

	repairTechnicians = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "repair_technicians",
			Help: "Number of technicians in the loaded state",
		},
	)

	repairStateRevision = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "repair_state_revision",
			Help: "Revision of the session state",
		},
	)

	// Full state loads partitioned by result
	repairStateLoadDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "repair_state_load_duration_seconds",
			Help:    "Duration of full state loads in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"result"},
	)

	// Mutations partitioned by operation and result
	repairMutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "repair_state_mutations_total",
			Help: "Total number of state mutations",
		},
		[]string{"op", "result"},
	)

	// Store failures partitioned by kind
	repairStoreErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "repair_store_errors_total",
			Help: "Total number of data store errors seen by the state container",
		},
		[]string{"kind"},
	)
)

// Metrics returns a Fiber v3 middleware that records basic Prometheus metrics.
// Labels are kept low-cardinality by using the matched route path when available.
func Metrics() fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()
		httpInFlight.Inc()
		defer httpInFlight.Dec()

		err := c.Next()

		status := c.Response().StatusCode()
		route := c.Path()
		if r := c.Route(); r != nil && r.Path != "" {
			route = r.Path
		}

		labels := prometheus.Labels{
			"method": c.Method(),
			"route":  route,
			"status": strconv.Itoa(status),
		}
		httpRequestsTotal.With(labels).Inc()
		httpRequestDuration.With(labels).Observe(time.Since(start).Seconds())

		return err
	}
}

// StateMetrics exports the session state as Prometheus metrics. It implements
// businessflow.StateObserver.
type StateMetrics struct{}

func NewStateMetrics() *StateMetrics {
	return &StateMetrics{}
}

func (StateMetrics) Loaded(snapshot businessflow.Snapshot, elapsed time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "failure"
		countStoreError(err)
	}
	repairStateLoadDuration.WithLabelValues(result).Observe(elapsed.Seconds())
	setStateGauges(snapshot)
}

func (StateMetrics) Mutated(op string, snapshot businessflow.Snapshot, err error) {
	if err != nil {
		repairMutationsTotal.WithLabelValues(op, "failure").Inc()
		countStoreError(err)
		return
	}
	repairMutationsTotal.WithLabelValues(op, "success").Inc()
	setStateGauges(snapshot)
}

func setStateGauges(snapshot businessflow.Snapshot) {
	counts := make(map[models.RepairStatus]int, len(models.RepairStatuses))
	unassigned := 0
	for _, t := range snapshot.Tickets {
		counts[t.Status]++
		if t.Status.IsActive() && t.TechnicianID == nil {
			unassigned++
		}
	}
	for _, status := range models.RepairStatuses {
		repairTickets.WithLabelValues(string(status)).Set(float64(counts[status]))
	}
	repairUnassignedTickets.Set(float64(unassigned))
	repairCustomers.Set(float64(len(snapshot.Customers)))
	repairTechnicians.Set(float64(len(snapshot.Technicians)))
	repairStateRevision.Set(float64(snapshot.Revision))
}

func countStoreError(err error) {
	var se *repository.StoreError
	if errors.As(err, &se) {
		repairStoreErrorsTotal.WithLabelValues(string(se.Kind)).Inc()
		return
	}
	repairStoreErrorsTotal.WithLabelValues("OTHER").Inc()
}
