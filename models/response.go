package models

// SearchResponse is the envelope returned by the aggregator and the
// search endpoints.
type SearchResponse struct {
	// Success is false only when no listing could be produced.
	Success bool `json:"success"`

	// Count is len(Results).
	Count int `json:"count"`

	// Results are grouped by source in invocation order.
	Results []ProductListing `json:"results"`

	// Sources reports how each invoked source fared.
	Sources []SourceStatus `json:"sources,omitempty"`

	// Error, Code and Details are populated only when Success is false.
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`

	// Query and Seller echo the request on a not-found response.
	Query  string `json:"query,omitempty"`
	Seller string `json:"seller,omitempty"`
}

// SourceStatus summarises one source's contribution to a search.
type SourceStatus struct {
	Source Source `json:"source"`
	Count  int    `json:"count"`
	OK     bool   `json:"ok"`
	Reason string `json:"reason,omitempty"`
}

// HealthResponse is the response for GET /api/health.
type HealthResponse struct {
	Status         string   `json:"status"`
	Uptime         string   `json:"uptime"`
	Timestamp      string   `json:"timestamp"`
	Sources        []Source `json:"sources"`
	ActiveSessions int      `json:"active_sessions"`
	Version        string   `json:"version"`
}

// ErrorResponse is the flat error envelope written by middleware.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code"`
}
