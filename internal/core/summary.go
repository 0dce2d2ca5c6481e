package core

import "github.com/shopspring/decimal"

// GroupTotal is an amount aggregated under a grouping key
// (period label, status, category or cost center).
type GroupTotal struct {
	Key   string          `json:"key"`
	Total decimal.Decimal `json:"total"`
}

// Dashboard bundles every aggregation computed from a filtered view.
type Dashboard struct {
	GrandTotal     decimal.Decimal `json:"grand_total"`
	RecordCount    int             `json:"record_count"`
	Monthly        []GroupTotal    `json:"monthly"`
	ByStatus       []GroupTotal    `json:"by_status"`
	TopCategories  []GroupTotal    `json:"top_categories"`
	TopCostCenters []GroupTotal    `json:"top_cost_centers"`
}

// FilterOptions lists the distinct values offered by the dashboard selectors.
type FilterOptions struct {
	Categories  []string `json:"categories"`
	Statuses    []string `json:"statuses"`
	CostCenters []string `json:"cost_centers"`
}
