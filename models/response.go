package models

// TimingInfo reports wall-clock durations for a run.
type TimingInfo struct {
	TotalMs int64 `json:"total_ms"`
}

// RunResponse is the body for POST /api/v1/runs.
type RunResponse struct {
	Success bool         `json:"success"`
	Result  *RunResult   `json:"result,omitempty"`
	Cached  bool         `json:"cached,omitempty"`
	Timing  TimingInfo   `json:"timing"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

// HealthResponse is the body for GET /api/v1/health.
type HealthResponse struct {
	Status        string `json:"status"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	RunActive     bool   `json:"run_active"`
}
