package domain

// ServiceHealth reports the health of one dependency.
type ServiceHealth struct {
	Name        string `json:"name"`
	Status      string `json:"status"` // healthy | degraded | unhealthy
	LatencyMs   int64  `json:"latency_ms"`
	LastChecked string `json:"last_checked"`
}

// HealthStatus is the aggregate /healthz response.
type HealthStatus struct {
	Status   string          `json:"status"`
	Services []ServiceHealth `json:"services"`
}

// EngineMetrics is a JSON snapshot of the analytics engine counters, served
// alongside the Prometheus endpoint for dashboards that speak JSON only.
type EngineMetrics struct {
	TotalRequests  int64   `json:"total_requests"`
	ErrorRate      float64 `json:"error_rate"`
	CacheHitRate   float64 `json:"cache_hit_rate"`
	ActionsTotal   int64   `json:"actions_total"`
	ExternalErrors int64   `json:"external_errors"`
	Period         string  `json:"period"`
}
