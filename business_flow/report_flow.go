package businessflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/amirphl/repair-desk/app/dto"
	"github.com/amirphl/repair-desk/utils"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ReportFlow serves the derived views of the session state
type ReportFlow interface {
	Dashboard(ctx context.Context) (*dto.DashboardResponse, error)
	Workload(ctx context.Context) (*dto.WorkloadOverview, error)
	Report(ctx context.Context, days int) (*dto.Report, error)
	Export(ctx context.Context, days int, format string) (*ReportExport, error)
	Status(ctx context.Context) dto.StateStatus
	Reload(ctx context.Context) (dto.StateStatus, error)
}

// ReportFlowImpl computes views from the RepairSystem snapshot and optionally caches
// them in Redis under the session id and state revision
type ReportFlowImpl struct {
	system  RepairSystem
	rc      *redis.Client
	prefix  string
	ttl     time.Duration
	session string
	now     func() time.Time
}

// NewReportFlow creates a report flow. rc may be nil to disable caching.
func NewReportFlow(system RepairSystem, rc *redis.Client, prefix string, ttl time.Duration) ReportFlow {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &ReportFlowImpl{
		system:  system,
		rc:      rc,
		prefix:  prefix,
		ttl:     ttl,
		session: uuid.NewString(),
		now:     time.Now,
	}
}

// Dashboard returns the headline stats and the most recently updated tickets
func (f *ReportFlowImpl) Dashboard(ctx context.Context) (*dto.DashboardResponse, error) {
	if err := ensureReady(f.system); err != nil {
		return nil, err
	}
	snapshot := f.system.Snapshot()
	out, err := cached(ctx, f, f.cacheKey(snapshot.Revision, "dashboard"), func() dto.DashboardResponse {
		return BuildDashboard(snapshot.Tickets, f.now())
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Workload returns the per-technician load and the unassigned queue
func (f *ReportFlowImpl) Workload(ctx context.Context) (*dto.WorkloadOverview, error) {
	if err := ensureReady(f.system); err != nil {
		return nil, err
	}
	snapshot := f.system.Snapshot()
	out, err := cached(ctx, f, f.cacheKey(snapshot.Revision, "workload"), func() dto.WorkloadOverview {
		return ComputeWorkload(snapshot.Tickets, snapshot.Technicians)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Report aggregates the tickets created within the last days days
func (f *ReportFlowImpl) Report(ctx context.Context, days int) (*dto.Report, error) {
	if err := ensureReady(f.system); err != nil {
		return nil, err
	}
	days = NormalizeReportDays(days)
	snapshot := f.system.Snapshot()
	out, err := cached(ctx, f, f.cacheKey(snapshot.Revision, fmt.Sprintf("report:%d", days)), func() dto.Report {
		return ComputeReport(snapshot.Tickets, snapshot.Technicians, days, f.now())
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Export renders the report for the window as a downloadable file
func (f *ReportFlowImpl) Export(ctx context.Context, days int, format string) (*ReportExport, error) {
	if _, err := ParseReportFormat(format); err != nil {
		return nil, err
	}
	report, err := f.Report(ctx, days)
	if err != nil {
		return nil, err
	}
	return ExportReport(*report, format, f.now())
}

// Status describes the current session state
func (f *ReportFlowImpl) Status(ctx context.Context) dto.StateStatus {
	snapshot := f.system.Snapshot()
	return dto.StateStatus{
		Loading:     f.system.Loading(),
		Error:       f.system.ErrorMessage(),
		Revision:    snapshot.Revision,
		LoadedAt:    snapshot.LoadedAt,
		Tickets:     len(snapshot.Tickets),
		Customers:   len(snapshot.Customers),
		Technicians: len(snapshot.Technicians),
	}
}

// Reload re-fetches every collection from the store
func (f *ReportFlowImpl) Reload(ctx context.Context) (dto.StateStatus, error) {
	if err := f.system.Load(ctx); err != nil {
		if errors.Is(err, ErrSessionClosed) {
			return f.Status(ctx), err
		}
		return f.Status(ctx), NewBusinessError("STATE_LOAD_FAILED", f.system.ErrorMessage(), fmt.Errorf("%w: %w", ErrStateUnavailable, err))
	}
	return f.Status(ctx), nil
}

// cacheKey scopes a view to the session, the state revision and the current day,
// since day-relative figures change at midnight without a new revision
func (f *ReportFlowImpl) cacheKey(revision uint64, view string) string {
	return redisKey(f.prefix, "views", f.session, fmt.Sprintf("%d", revision), utils.DateKey(f.now()), view)
}

// cached returns the cached view under key or computes and stores it. Cache
// failures are logged and never fail the request.
func cached[T any](ctx context.Context, f *ReportFlowImpl, key string, compute func() T) (T, error) {
	if f.rc == nil {
		return compute(), nil
	}

	if bs, err := f.rc.Get(ctx, key).Bytes(); err == nil && len(bs) > 0 {
		var out T
		if err := json.Unmarshal(bs, &out); err == nil {
			return out, nil
		}
	} else if err != nil && !errors.Is(err, redis.Nil) {
		log.Printf("report cache: get %s: %v", key, err)
	}

	out := compute()
	if bs, err := json.Marshal(out); err == nil {
		if err := f.rc.Set(ctx, key, bs, f.ttl).Err(); err != nil {
			log.Printf("report cache: set %s: %v", key, err)
		}
	}
	return out, nil
}

func redisKey(prefix string, parts ...string) string {
	if prefix == "" {
		return strings.Join(parts, ":")
	}
	return prefix + ":" + strings.Join(parts, ":")
}

// ensureReady rejects reads and writes while the session has no usable state
func ensureReady(system RepairSystem) error {
	if err := system.Err(); err != nil {
		return NewBusinessError("STATE_UNAVAILABLE", system.ErrorMessage(), fmt.Errorf("%w: %w", ErrStateUnavailable, err))
	}
	if system.Revision() == 0 {
		return NewBusinessError("STATE_LOADING", "Repair data is still loading", ErrStateUnavailable)
	}
	return nil
}
