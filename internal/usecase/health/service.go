package health

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates the engine cannot serve searches.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

const defaultCheckTimeout = 5 * time.Second

// Report aggregates health check results.
type Report struct {
	Status      Status
	CasesLoaded int
	Checks      map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	engine   CorpusState
	cache    DBPinger
	checkers map[string]Checker
	timeout  time.Duration
}

// Option configures a Service.
type Option func(*Service)

// WithCacheStore adds the embedding cache store ping as check "cache".
func WithCacheStore(p DBPinger) Option {
	return func(s *Service) { s.cache = p }
}

// WithChecker adds a named upstream check. Nil checkers are ignored.
func WithChecker(name string, c Checker) Option {
	return func(s *Service) {
		if c != nil {
			s.checkers[name] = c
		}
	}
}

// WithTimeout bounds each individual check.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) { s.timeout = d }
}

// New creates a Service.
func New(engine CorpusState, opts ...Option) *Service {
	s := &Service{engine: engine, checkers: make(map[string]Checker), timeout: defaultCheckTimeout}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Check runs all checks concurrently.
func (s *Service) Check(ctx context.Context) Report {
	var (
		mu     sync.Mutex
		checks = make(map[string]CheckResult)
		g      errgroup.Group
	)
	record := func(name string, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			checks[name] = CheckError
		} else {
			checks[name] = CheckOK
		}
	}

	if s.cache != nil {
		g.Go(func() error {
			cctx, cancel := context.WithTimeout(ctx, s.timeout)
			defer cancel()
			record("cache", s.cache.Ping(cctx))
			return nil
		})
	}
	for name, c := range s.checkers {
		g.Go(func() error {
			cctx, cancel := context.WithTimeout(ctx, s.timeout)
			defer cancel()
			record(name, c.HealthCheck(cctx))
			return nil
		})
	}
	_ = g.Wait()

	ready := s.engine.Ready()
	if ready {
		checks["corpus"] = CheckOK
	} else {
		checks["corpus"] = CheckError
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}
	if !ready {
		status = Unhealthy
	}

	return Report{Status: status, CasesLoaded: s.engine.CorpusSize(), Checks: checks}
}
