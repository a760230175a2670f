package entity

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/diillson/campaign-metrics-dashboard-go/internal/shared/types"
)

// SortDirection is the order requested from the API.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// SortKey names a sortable metrics column.
type SortKey string

const (
	SortByDate           SortKey = "date"
	SortByCampaign       SortKey = "campaign_id"
	SortByImpressions    SortKey = "impressions"
	SortByClicks         SortKey = "clicks"
	SortByConversions    SortKey = "conversions"
	SortByConversionRate SortKey = "conversion_rate"
	SortByCost           SortKey = "cost_micros"
)

// SortKeys lists the keys in column display order.
var SortKeys = []SortKey{
	SortByDate, SortByCampaign, SortByImpressions, SortByClicks,
	SortByConversions, SortByConversionRate, SortByCost,
}

// ParseSortKey accepts a column key, tolerating "campaign" and "cost" shorthands.
func ParseSortKey(s string) (SortKey, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "campaign", "campaign_name", "campaign_id":
		return SortByCampaign, nil
	case "cost", "cost_micros":
		return SortByCost, nil
	}
	for _, k := range SortKeys {
		if string(k) == strings.ToLower(strings.TrimSpace(s)) {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", types.ErrUnknownSortKey, s)
}

// ParseSortDirection parses "asc" or "desc".
func ParseSortDirection(s string) (SortDirection, error) {
	switch SortDirection(strings.ToLower(strings.TrimSpace(s))) {
	case SortAsc:
		return SortAsc, nil
	case SortDesc:
		return SortDesc, nil
	}
	return "", fmt.Errorf("%w: %q", types.ErrInvalidSortOrder, s)
}

// FilterField names a QueryState field settable through SetFilter.
type FilterField string

const (
	FilterStartDate FilterField = "start_date"
	FilterEndDate   FilterField = "end_date"
	FilterSearch    FilterField = "search"
	FilterPageSize  FilterField = "page_size"
)

// DefaultPageSize matches the dashboard's page length.
const DefaultPageSize = 50

// QueryState is the full set of filter, sort and pagination parameters.
// It is a value: every With* method returns a modified copy.
type QueryState struct {
	StartDate string        `json:"start_date,omitempty"`
	EndDate   string        `json:"end_date,omitempty"`
	Search    string        `json:"search,omitempty"`
	SortBy    SortKey       `json:"sort_by,omitempty"`
	SortOrder SortDirection `json:"sort_order,omitempty"`
	Page      int           `json:"page"`
	PageSize  int           `json:"page_size"`
}

// DefaultQueryState returns page 1, no filters, newest dates first.
func DefaultQueryState(pageSize int) QueryState {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return QueryState{
		SortBy:    SortByDate,
		SortOrder: SortDesc,
		Page:      1,
		PageSize:  pageSize,
	}
}

// Validate enforces page >= 1, page_size > 0 and the date format.
func (q QueryState) Validate() error {
	if q.Page < 1 || q.PageSize <= 0 {
		return types.ErrInvalidPage
	}
	for _, d := range []string{q.StartDate, q.EndDate} {
		if d == "" {
			continue
		}
		if _, err := time.Parse(DateLayout, d); err != nil {
			return fmt.Errorf("%w: %q", types.ErrInvalidDate, d)
		}
	}
	return nil
}

// HasActiveFilters reports whether a date range or search term is set.
func (q QueryState) HasActiveFilters() bool {
	return q.StartDate != "" || q.EndDate != "" || q.Search != ""
}

// WithFilter sets one filter field and returns to page 1.
// An empty value clears the field.
func (q QueryState) WithFilter(field FilterField, value string) (QueryState, error) {
	value = strings.TrimSpace(value)
	switch field {
	case FilterStartDate, FilterEndDate:
		if value != "" {
			if _, err := time.Parse(DateLayout, value); err != nil {
				return q, fmt.Errorf("%w: %q", types.ErrInvalidDate, value)
			}
		}
		if field == FilterStartDate {
			q.StartDate = value
		} else {
			q.EndDate = value
		}
	case FilterSearch:
		q.Search = value
	case FilterPageSize:
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return q, types.ErrInvalidPage
		}
		q.PageSize = n
	default:
		return q, fmt.Errorf("%w: %q", types.ErrUnknownFilter, field)
	}
	q.Page = 1
	return q, nil
}

// WithSort toggles asc to desc when key is already sorted ascending,
// otherwise selects key ascending.
func (q QueryState) WithSort(key SortKey) QueryState {
	if q.SortBy == key && q.SortOrder == SortAsc {
		q.SortOrder = SortDesc
	} else {
		q.SortOrder = SortAsc
	}
	q.SortBy = key
	return q
}

// WithPage returns the state pointing at page n.
func (q QueryState) WithPage(n int) QueryState {
	q.Page = n
	return q
}

// MetricsRequest is the wire body of POST /api/metrics.
// Unset filters are omitted rather than sent as empty strings.
type MetricsRequest struct {
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
	Search    string `json:"search,omitempty"`
	SortBy    string `json:"sort_by,omitempty"`
	SortOrder string `json:"sort_order,omitempty"`
	Page      int    `json:"page"`
	PageSize  int    `json:"page_size"`
}

// Request converts the state into its wire form.
func (q QueryState) Request() MetricsRequest {
	req := MetricsRequest{
		StartDate: q.StartDate,
		EndDate:   q.EndDate,
		Search:    q.Search,
		Page:      q.Page,
		PageSize:  q.PageSize,
	}
	if q.SortBy != "" {
		req.SortBy = string(q.SortBy)
		req.SortOrder = string(q.SortOrder)
	}
	return req
}
