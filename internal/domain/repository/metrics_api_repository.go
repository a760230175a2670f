package repository

import (
	"context"

	"github.com/diillson/campaign-metrics-dashboard-go/internal/domain/entity"
)

// MetricsAPIRepository defines the interface for the remote metrics API.
type MetricsAPIRepository interface {
	Login(ctx context.Context, email, password string) (entity.LoginResult, error)
	CurrentUser(ctx context.Context, token string) (entity.User, error)
	QueryMetrics(ctx context.Context, token string, query entity.QueryState) (entity.PageResult, error)
}
