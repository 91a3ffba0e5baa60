package models

// RunRequest is the payload for POST /api/v1/runs.
type RunRequest struct {
	// MaxPages caps the number of listing pages visited. Zero means
	// scrape every page the site reports.
	MaxPages int `json:"max_pages,omitempty" binding:"omitempty,min=1,max=500"`

	// Timeout is the maximum duration in seconds for the whole run.
	// Default: 300. Max: 1800.
	Timeout int `json:"timeout,omitempty" binding:"omitempty,min=1,max=1800"`

	// MaxAgeMs accepts a cached result no older than this many
	// milliseconds instead of starting a fresh run. Zero disables the
	// cache lookup.
	MaxAgeMs int `json:"max_age_ms,omitempty"`
}

// Defaults applies default values to unset fields.
func (r *RunRequest) Defaults() {
	if r.Timeout == 0 {
		r.Timeout = 300
	}
}
