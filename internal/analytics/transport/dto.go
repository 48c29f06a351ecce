// Package transport defines the analytics API shapes.
package transport

import "github.com/google/uuid"

type DashboardRequest struct {
	Period  string     `form:"period"`
	GroupID *uuid.UUID `form:"groupId"`
}

// Metric is one dashboard figure for the current period together with the
// previous period's value and the percent change between them.
type Metric struct {
	Current   float64 `json:"current"`
	Previous  float64 `json:"previous"`
	ChangePct float64 `json:"changePct"`
}

// SeriesPoint is one day in the trailing activity series.
type SeriesPoint struct {
	Date  string `json:"date"`
	Label string `json:"label"`
	Leads int    `json:"leads"`
	Sales int    `json:"sales"`
}

// SellerPerformance is one row of the seller ranking.
type SellerPerformance struct {
	SellerID     uuid.UUID `json:"sellerId"`
	SellerName   string    `json:"sellerName"`
	SalesCount   int       `json:"salesCount"`
	RevenueCents int64     `json:"revenueCents"`
	Revenue      string    `json:"revenue"`
	Repurchases  int       `json:"repurchases"`
}

type DashboardResponse struct {
	Period         string              `json:"period"`
	Leads          Metric              `json:"leads"`
	Sales          Metric              `json:"sales"`
	RevenueCents   Metric              `json:"revenueCents"`
	ConversionRate Metric              `json:"conversionRate"`
	AbandonedLeads int                 `json:"abandonedLeads"`
	Series         []SeriesPoint       `json:"series"`
	Ranking        []SellerPerformance `json:"ranking"`
}
