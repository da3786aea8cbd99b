package consultancy

import "context"

// HealthStatus represents the aggregated engine health.
// Status is "ok", "degraded" or "error"; Checks maps component to "ok" or "error".
type HealthStatus struct {
	Status      string
	CasesLoaded int
	Checks      map[string]string
}

// Health checks the corpus, the cache store and the configured upstreams.
func (c *Client) Health(ctx context.Context) HealthStatus {
	report := c.healthSvc.Check(ctx)
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	return HealthStatus{
		Status:      string(report.Status),
		CasesLoaded: report.CasesLoaded,
		Checks:      checks,
	}
}
