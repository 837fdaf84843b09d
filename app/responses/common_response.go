package responses

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error   string      `json:"error"`             // machine-readable code
	Message string      `json:"message"`           // human-readable detail
	Details interface{} `json:"details,omitempty"` // optional context
}

// SuccessResponse wraps admin acknowledgements.
type SuccessResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// HealthCheckResponse reports liveness and dependencies.
type HealthCheckResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Uptime    string            `json:"uptime"`
	Version   string            `json:"version"`
	Services  map[string]string `json:"services"`
}

// SystemStatsResponse is the admin dashboard summary.
type SystemStatsResponse struct {
	CacheHitRate   float64       `json:"cache_hit_rate"`
	TablesVersion  string        `json:"tables_version"`
	Sources        []string      `json:"sources"`
	JobsTracked    int           `json:"jobs_tracked"`
	PostsProcessed int64         `json:"posts_processed"`
	SystemInfo     SystemInfo    `json:"system_info"`
	DatabaseStats  DatabaseStats `json:"database_stats"`
}

// SystemInfo describes the running process.
type SystemInfo struct {
	Version     string                 `json:"version"`
	Environment string                 `json:"environment"`
	Uptime      string                 `json:"uptime"`
	MemoryUsage map[string]interface{} `json:"memory_usage"`
}

// DatabaseStats counts documents per collection.
type DatabaseStats struct {
	CanonicalRecords int64 `json:"canonical_records"`
	ParseCache       int64 `json:"parse_cache"`
	UnmappedValues   int64 `json:"unmapped_values"`
}
