package application

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"penalty-console/internal/application/permission"
	"penalty-console/internal/domain"
	"penalty-console/internal/ports"
)

const recentLogLimit = 10

type Dashboard struct {
	Counts      map[string]int        `json:"counts"`
	Report      *domain.PenaltyReport `json:"report,omitempty"`
	RecentLogs  []domain.LogEntry     `json:"recent_logs,omitempty"`
	Failures    map[string]string     `json:"failures,omitempty"`
	GeneratedAt time.Time             `json:"generated_at"`
}

type DashboardService struct {
	repos  Repositories
	logger ports.Logger
	now    func() time.Time
}

func NewDashboardService(repos Repositories, logger ports.Logger) *DashboardService {
	return &DashboardService{repos: repos, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

// Build loads every section the operator may see concurrently. A section that fails is
// reported in Failures; an expired session aborts the whole dashboard.
func (s *DashboardService) Build(ctx context.Context, perms permission.Set, params map[string]string) (Dashboard, error) {
	out := Dashboard{Counts: map[string]int{}, Failures: map[string]string{}}
	var mu sync.Mutex
	record := func(section string, err error, apply func()) error {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			if errors.Is(err, domain.ErrUnauthorized) {
				return err
			}
			out.Failures[section] = err.Error()
			s.logger.Warn(ctx, "dashboard section failed", "section", section, "error", err)
			return nil
		}
		apply()
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	count := func(section, perm string, fn func(context.Context) (int, error)) {
		if !perms.Has(perm) {
			return
		}
		g.Go(func() error {
			n, err := fn(gctx)
			return record(section, err, func() { out.Counts[section] = n })
		})
	}
	count("doctors", domain.PermDoctorView, countOf(s.repos.Doctors))
	count("dependences", domain.PermDependenceView, countOf(s.repos.Dependences))
	count("procedures", domain.PermProcedureView, countOf(s.repos.Procedures))
	count("causes", domain.PermCauseView, countOf(s.repos.Causes))
	count("courts", domain.PermCourtView, countOf(s.repos.Courts))
	count("users", domain.PermUserView, countOf(s.repos.Users))
	count("technical_records", domain.PermTechnicalView, countOf(s.repos.TechnicalRecords))
	count("penalties", domain.PermPenaltyView, countOf(s.repos.Penalties))
	count("tasks", domain.PermTaskView, countOf(s.repos.Tasks))

	if perms.Has(domain.PermPenaltyView) && s.repos.PenaltyReport != nil {
		g.Go(func() error {
			res := s.repos.PenaltyReport.Report(gctx, params)
			return record("report", resultErr(res), func() {
				report := res.Data()
				out.Report = &report
			})
		})
	}
	if perms.Has(domain.PermLogView) {
		g.Go(func() error {
			res := s.repos.Logs.GetAll(gctx)
			return record("logs", resultErr(res), func() { out.RecentLogs = recent(res.Data(), recentLogLimit) })
		})
	}

	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}
	out.GeneratedAt = s.now()
	return out, nil
}

func countOf[T domain.Entity](repo ports.Repository[T]) func(context.Context) (int, error) {
	return func(ctx context.Context) (int, error) {
		if repo == nil {
			return 0, nil
		}
		res := repo.GetAll(ctx)
		if !res.OK() {
			return 0, res.Err()
		}
		return len(res.Data()), nil
	}
}

func resultErr[T any](res domain.Result[T]) error {
	if res.OK() {
		return nil
	}
	return res.Err()
}

func recent(logs []domain.LogEntry, n int) []domain.LogEntry {
	out := append([]domain.LogEntry(nil), logs...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > n {
		out = out[:n]
	}
	return out
}
