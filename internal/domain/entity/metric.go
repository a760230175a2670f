package entity

import "time"

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// MetricRow is one campaign-day aggregate returned by the API.
// CostMicros is nil when the API omitted the field.
type MetricRow struct {
	Date           string   `json:"date"`
	CampaignID     string   `json:"campaign_id,omitempty"`
	CampaignName   string   `json:"campaign_name"`
	Impressions    int64    `json:"impressions"`
	Clicks         int64    `json:"clicks"`
	Conversions    float64  `json:"conversions"`
	ConversionRate *float64 `json:"conversion_rate,omitempty"`
	CostMicros     *int64   `json:"cost_micros,omitempty"`
}

// HasCost reports whether the API disclosed cost for this row.
func (m MetricRow) HasCost() bool {
	return m.CostMicros != nil
}

// Cost returns the cost in currency units, or 0 when absent.
func (m MetricRow) Cost() float64 {
	if m.CostMicros == nil {
		return 0
	}
	return float64(*m.CostMicros) / 1_000_000
}

// Day parses the row date.
func (m MetricRow) Day() (time.Time, error) {
	return time.Parse(DateLayout, m.Date)
}

// Campaign returns the label shown for the campaign column.
func (m MetricRow) Campaign() string {
	if m.CampaignName != "" {
		return m.CampaignName
	}
	return m.CampaignID
}

// WithoutCost returns a copy of the row with cost removed.
func (m MetricRow) WithoutCost() MetricRow {
	m.CostMicros = nil
	return m
}
