package models

// StatusCount is an aggregate of pickup requests per lifecycle state.
type StatusCount struct {
	Status PickupStatus `db:"status" json:"status"`
	Count  int          `db:"count" json:"count"`
}

// ZoneSummary aggregates active demand per zone for the admin overview.
type ZoneSummary struct {
	Zone           string `db:"zone" json:"zone"`
	ActiveRequests int    `db:"active_requests" json:"active_requests"`
	Operators      int    `db:"operators" json:"operators"`
}

// DashboardOverview is the admin landing payload.
type DashboardOverview struct {
	TotalRequests  int           `json:"total_requests"`
	StatusCounts   []StatusCount `json:"status_counts"`
	ZoneSummaries  []ZoneSummary `json:"zone_summaries"`
	TotalResidents int           `json:"total_residents"`
	TotalOperators int           `json:"total_operators"`
	RecentActivity []ActivityLog `json:"recent_activity"`
}

// RouteAdvice is the suggested visiting order for an operator's open stops.
type RouteAdvice struct {
	OptimizedOrder []int       `json:"optimized_order"`
	Justification  string      `json:"justification"`
	Stops          []RouteStop `json:"stops"`
}

// RouteStop pairs a pickup request with its display address.
type RouteStop struct {
	RequestID string `json:"request_id"`
	Address   string `json:"address"`
	Zone      string `json:"zone"`
}
