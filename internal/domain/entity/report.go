package entity

import "time"

// MetricsReport is the displayed page plus the context needed to export it.
type MetricsReport struct {
	GeneratedAt time.Time  `json:"generated_at"`
	User        User       `json:"user"`
	Query       QueryState `json:"query"`
	Page        PageResult `json:"page"`
	ShowCost    bool       `json:"show_cost"`
}
