package entity

import (
	"sort"
	"strings"
)

// CompareRows orders two rows by key: -1, 0 or 1.
// Dates compare chronologically, campaigns case-insensitively and numbers numerically.
// Rows without cost sort before rows with cost.
func CompareRows(a, b MetricRow, key SortKey) int {
	switch key {
	case SortByDate:
		da, errA := a.Day()
		db, errB := b.Day()
		if errA != nil || errB != nil {
			return strings.Compare(a.Date, b.Date)
		}
		switch {
		case da.Before(db):
			return -1
		case da.After(db):
			return 1
		}
		return 0
	case SortByCampaign:
		return strings.Compare(strings.ToLower(a.Campaign()), strings.ToLower(b.Campaign()))
	case SortByImpressions:
		return compareInts(a.Impressions, b.Impressions)
	case SortByClicks:
		return compareInts(a.Clicks, b.Clicks)
	case SortByConversions:
		return compareFloats(a.Conversions, b.Conversions)
	case SortByConversionRate:
		return compareOptionalFloats(a.ConversionRate, b.ConversionRate)
	case SortByCost:
		switch {
		case a.CostMicros == nil && b.CostMicros == nil:
			return 0
		case a.CostMicros == nil:
			return -1
		case b.CostMicros == nil:
			return 1
		}
		return compareInts(*a.CostMicros, *b.CostMicros)
	}
	return 0
}

// SortRows returns a stably sorted copy of rows.
func SortRows(rows []MetricRow, key SortKey, dir SortDirection) []MetricRow {
	out := make([]MetricRow, len(rows))
	copy(out, rows)
	if key == "" {
		return out
	}
	sort.SliceStable(out, func(i, j int) bool {
		c := CompareRows(out[i], out[j], key)
		if dir == SortDesc {
			return c > 0
		}
		return c < 0
	})
	return out
}

func compareInts(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareFloats(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareOptionalFloats(a, b *float64) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	return compareFloats(*a, *b)
}
