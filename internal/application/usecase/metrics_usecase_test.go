package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/diillson/campaign-metrics-dashboard-go/internal/domain/entity"
	"github.com/diillson/campaign-metrics-dashboard-go/internal/shared/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rowsWithCost() []entity.MetricRow {
	return []entity.MetricRow{
		{Date: "2024-01-16", CampaignName: "Campaign B", Impressions: 12333, Clicks: 235, Conversions: 6.5, CostMicros: int64p(1642249000)},
		{Date: "2024-01-15", CampaignName: "Campaign A", Impressions: 4374, Clicks: 130, Conversions: 6.1, CostMicros: int64p(2026808000)},
	}
}

func rowsWithoutCost() []entity.MetricRow {
	rows := rowsWithCost()
	for i := range rows {
		rows[i].CostMicros = nil
	}
	return rows
}

func newMetrics(t *testing.T, user entity.User, query func(context.Context, string, entity.QueryState) (entity.PageResult, error)) (*MetricsUseCase, *fakeAPI, *SessionUseCase) {
	t.Helper()
	apiRepo := &fakeAPI{queryFn: query}
	sess, _ := loggedIn(t, apiRepo, user)
	return NewMetricsUseCase(apiRepo, sess, &recordingConsole{}, 20), apiRepo, sess
}

func TestRunQueryReplacesRows(t *testing.T) {
	uc, apiRepo, _ := newMetrics(t, adminUser, pageOf(2, rowsWithCost()...))

	require.NoError(t, uc.RunQuery(context.Background(), uc.State()))

	view := uc.View()
	assert.True(t, view.Loaded)
	assert.Empty(t, view.Error)
	assert.Len(t, view.Rows, 2)
	assert.Equal(t, 1, view.Pagination.TotalPages)
	assert.Nil(t, view.Pagination.Metrics)
	assert.Equal(t, []string{"tok"}, apiRepo.tokens)
}

func TestRunQueryRequiresSession(t *testing.T) {
	apiRepo := &fakeAPI{}
	sess := NewSessionUseCase(apiRepo, &memoryTokens{}, &recordingConsole{})
	uc := NewMetricsUseCase(apiRepo, sess, &recordingConsole{}, 20)

	err := uc.RunQuery(context.Background(), uc.State())
	assert.ErrorIs(t, err, types.ErrNotLoggedIn)
	assert.Empty(t, apiRepo.sent())
}

func TestRunQueryRejectsInvalidState(t *testing.T) {
	uc, apiRepo, _ := newMetrics(t, adminUser, nil)

	err := uc.RunQuery(context.Background(), uc.State().WithPage(0))
	assert.ErrorIs(t, err, types.ErrInvalidPage)
	assert.Empty(t, apiRepo.sent())
}

func TestAdminSeesCost(t *testing.T) {
	uc, apiRepo, _ := newMetrics(t, adminUser, pageOf(2, rowsWithCost()...))
	require.NoError(t, uc.Apply(context.Background()))

	view := uc.View()
	assert.True(t, view.ShowCost)
	for _, r := range view.Rows {
		assert.NotNil(t, r.CostMicros)
	}
	assert.Len(t, apiRepo.sent(), 1)
}

func TestNonAdminNeverSeesCostEvenIfServerLeaksIt(t *testing.T) {
	uc, _, sess := newMetrics(t, regularUser, pageOf(2, rowsWithCost()...))
	require.NoError(t, uc.Apply(context.Background()))

	view := uc.View()
	assert.False(t, view.ShowCost)
	for _, r := range view.Rows {
		assert.Nil(t, r.CostMicros)
	}

	// the two rules disagree here; each is checked on its own
	assert.False(t, CostVisibleByRole(sess.Current()))
	assert.True(t, CostVisibleByPresence(entity.PageResult{Metrics: rowsWithCost()}))
}

func TestAdminWithoutCostFieldHidesColumn(t *testing.T) {
	uc, _, sess := newMetrics(t, adminUser, pageOf(2, rowsWithoutCost()...))
	require.NoError(t, uc.Apply(context.Background()))

	assert.False(t, uc.View().ShowCost)
	assert.True(t, CostVisibleByRole(sess.Current()))
	assert.False(t, CostVisibleByPresence(entity.PageResult{Metrics: rowsWithoutCost()}))
}

func TestSetFilterDoesNotQuery(t *testing.T) {
	uc, apiRepo, _ := newMetrics(t, adminUser, nil)

	require.NoError(t, uc.SetFilter(entity.FilterStartDate, "2024-01-01"))
	require.NoError(t, uc.SetFilter(entity.FilterSearch, "brand"))
	assert.Empty(t, apiRepo.sent())

	require.NoError(t, uc.Apply(context.Background()))
	sent := apiRepo.sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "2024-01-01", sent[0].StartDate)
	assert.Equal(t, "brand", sent[0].Search)
}

func TestSetFilterRejectsBadDate(t *testing.T) {
	uc, _, _ := newMetrics(t, adminUser, nil)
	before := uc.State()

	assert.ErrorIs(t, uc.SetFilter(entity.FilterEndDate, "yesterday"), types.ErrInvalidDate)
	assert.Equal(t, before, uc.State())
}

func TestSetSortTogglesAndQueries(t *testing.T) {
	uc, apiRepo, _ := newMetrics(t, adminUser, pageOf(2, rowsWithCost()...))
	ctx := context.Background()

	require.NoError(t, uc.SetSort(ctx, entity.SortByClicks))
	require.NoError(t, uc.SetSort(ctx, entity.SortByClicks))

	sent := apiRepo.sent()
	require.Len(t, sent, 2)
	assert.Equal(t, entity.SortByClicks, sent[0].SortBy)
	assert.Equal(t, entity.SortAsc, sent[0].SortOrder)
	assert.Equal(t, entity.SortByClicks, sent[1].SortBy)
	assert.Equal(t, entity.SortDesc, sent[1].SortOrder)
	assert.Equal(t, "clicks", sent[1].Request().SortBy)

	rows := uc.View().Rows
	assert.Equal(t, int64(235), rows[0].Clicks, "rows follow the requested order")
}

func TestSetPageOutOfRangeIsNoop(t *testing.T) {
	uc, apiRepo, _ := newMetrics(t, adminUser, pageOf(45, rowsWithCost()...))
	ctx := context.Background()
	require.NoError(t, uc.Apply(ctx))
	before := uc.State()

	for _, n := range []int{0, -1, 4} {
		moved, err := uc.SetPage(ctx, n)
		assert.NoError(t, err)
		assert.False(t, moved, "page %d", n)
	}
	assert.Len(t, apiRepo.sent(), 1)
	assert.Equal(t, before, uc.State())

	moved, err := uc.SetPage(ctx, 3)
	require.NoError(t, err)
	assert.True(t, moved)
	assert.Equal(t, 3, apiRepo.sent()[1].Page)
}

func TestSetPageSendsPendingFilters(t *testing.T) {
	uc, apiRepo, _ := newMetrics(t, adminUser, pageOf(45, rowsWithCost()...))
	ctx := context.Background()
	require.NoError(t, uc.Apply(ctx))

	require.NoError(t, uc.SetFilter(entity.FilterSearch, "brand"))
	assert.Len(t, apiRepo.sent(), 1)

	// range still comes from the last fetched result (3 pages)
	moved, err := uc.SetPage(ctx, 3)
	require.NoError(t, err)
	assert.True(t, moved)

	sent := apiRepo.sent()
	require.Len(t, sent, 2)
	assert.Equal(t, 3, sent[1].Page)
	assert.Equal(t, "brand", sent[1].Search)
}

func TestNextAndPrevPage(t *testing.T) {
	uc, apiRepo, _ := newMetrics(t, adminUser, pageOf(45, rowsWithCost()...))
	ctx := context.Background()
	require.NoError(t, uc.Apply(ctx))

	moved, err := uc.PrevPage(ctx)
	require.NoError(t, err)
	assert.False(t, moved)

	moved, err = uc.NextPage(ctx)
	require.NoError(t, err)
	assert.True(t, moved)
	assert.Equal(t, 2, uc.View().Pagination.Page)
	assert.Len(t, apiRepo.sent(), 2)
}

func TestClearFiltersResetsToDefaults(t *testing.T) {
	uc, apiRepo, _ := newMetrics(t, adminUser, pageOf(100, rowsWithCost()...))
	ctx := context.Background()

	require.NoError(t, uc.SetFilter(entity.FilterStartDate, "2024-01-01"))
	require.NoError(t, uc.SetFilter(entity.FilterEndDate, "2024-01-31"))
	require.NoError(t, uc.SetFilter(entity.FilterSearch, "brand"))
	require.NoError(t, uc.SetSort(ctx, entity.SortByImpressions))
	_, err := uc.SetPage(ctx, 4)
	require.NoError(t, err)

	require.NoError(t, uc.ClearFilters(ctx))

	sent := apiRepo.sent()
	assert.Equal(t, entity.DefaultQueryState(20), sent[len(sent)-1])
	assert.Equal(t, entity.DefaultQueryState(20), uc.State())
}

func TestFailureKeepsRowsAndShowsError(t *testing.T) {
	fail := false
	uc, _, _ := newMetrics(t, adminUser, func(ctx context.Context, token string, q entity.QueryState) (entity.PageResult, error) {
		if fail {
			return entity.PageResult{}, errors.New("request timed out")
		}
		return pageOf(2, rowsWithCost()...)(ctx, token, q)
	})
	ctx := context.Background()
	require.NoError(t, uc.Apply(ctx))

	fail = true
	err := uc.SetSort(ctx, entity.SortByClicks)
	assert.ErrorContains(t, err, "request timed out")

	view := uc.View()
	assert.Equal(t, "Error loading metrics: request timed out", view.Error)
	assert.Len(t, view.Rows, 2)

	fail = false
	require.NoError(t, uc.Apply(ctx))
	assert.Empty(t, uc.View().Error)
}

func TestUnauthorizedQueryLogsOut(t *testing.T) {
	uc, _, sess := newMetrics(t, adminUser, func(context.Context, string, entity.QueryState) (entity.PageResult, error) {
		return entity.PageResult{}, unauthorized("Could not validate credentials")
	})

	err := uc.Apply(context.Background())
	assert.ErrorIs(t, err, types.ErrSessionExpired)
	assert.False(t, sess.Current().Active())
	assert.Equal(t, types.ErrSessionExpired.Error(), uc.View().Error)
}

func TestSupersededResponseIsDiscarded(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	uc, _, _ := newMetrics(t, adminUser, func(ctx context.Context, token string, q entity.QueryState) (entity.PageResult, error) {
		if q.Search == "slow" {
			close(started)
			<-release
			return entity.PageResult{Metrics: []entity.MetricRow{{CampaignName: "stale"}}, TotalCount: 1}.Normalize(q), nil
		}
		return entity.PageResult{Metrics: []entity.MetricRow{{CampaignName: "fresh"}}, TotalCount: 1}.Normalize(q), nil
	})
	ctx := context.Background()

	slow := uc.State()
	slow.Search = "slow"

	var wg sync.WaitGroup
	var slowErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		slowErr = uc.RunQuery(ctx, slow)
	}()

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("slow query never started")
	}
	assert.True(t, uc.View().Loading)

	require.NoError(t, uc.RunQuery(ctx, entity.DefaultQueryState(20)))
	close(release)
	wg.Wait()

	assert.ErrorIs(t, slowErr, types.ErrSuperseded)
	view := uc.View()
	require.Len(t, view.Rows, 1)
	assert.Equal(t, "fresh", view.Rows[0].CampaignName)
	assert.Empty(t, view.State.Search)
	assert.False(t, view.Loading)
}

func TestResetForgetsResults(t *testing.T) {
	uc, _, _ := newMetrics(t, adminUser, pageOf(2, rowsWithCost()...))
	require.NoError(t, uc.Apply(context.Background()))

	uc.Reset()
	view := uc.View()
	assert.False(t, view.Loaded)
	assert.Empty(t, view.Rows)
	assert.Equal(t, entity.DefaultQueryState(20), view.State)
}
