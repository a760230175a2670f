package usecase

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/diillson/campaign-metrics-dashboard-go/internal/domain/entity"
	"github.com/diillson/campaign-metrics-dashboard-go/internal/shared/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type dashboardFixture struct {
	uc      *DashboardUseCase
	api     *fakeAPI
	tokens  *memoryTokens
	console *recordingConsole
	export  *fakeExport
}

func newDashboard(t *testing.T, user entity.User, query func(context.Context, string, entity.QueryState) (entity.PageResult, error)) *dashboardFixture {
	t.Helper()
	apiRepo := &fakeAPI{queryFn: query}
	sess, tokens := loggedIn(t, apiRepo, user)
	console := &recordingConsole{}
	sess.console = console
	exp := &fakeExport{}
	metrics := NewMetricsUseCase(apiRepo, sess, console, 20)
	uc := NewDashboardUseCase(sess, metrics, exp, console, NewFormatter("en", "USD"))
	uc.now = func() time.Time { return time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC) }
	return &dashboardFixture{uc: uc, api: apiRepo, tokens: tokens, console: console, export: exp}
}

func TestApplyArgs(t *testing.T) {
	args := &types.CLIArgs{
		StartDate: "2024-01-01",
		EndDate:   "2024-01-31",
		Search:    "brand",
		SortBy:    "cost",
		SortOrder: "desc",
		Page:      2,
		PageSize:  10,
	}
	state, err := ApplyArgs(entity.DefaultQueryState(50), args)
	require.NoError(t, err)
	assert.Equal(t, entity.QueryState{
		StartDate: "2024-01-01",
		EndDate:   "2024-01-31",
		Search:    "brand",
		SortBy:    entity.SortByCost,
		SortOrder: entity.SortDesc,
		Page:      2,
		PageSize:  10,
	}, state)
}

func TestApplyArgsDefaultsToAscending(t *testing.T) {
	state, err := ApplyArgs(entity.DefaultQueryState(50), &types.CLIArgs{SortBy: "clicks"})
	require.NoError(t, err)
	assert.Equal(t, entity.SortByClicks, state.SortBy)
	assert.Equal(t, entity.SortAsc, state.SortOrder)
}

func TestApplyArgsErrors(t *testing.T) {
	tests := []struct {
		name string
		args types.CLIArgs
		want error
	}{
		{"bad date", types.CLIArgs{StartDate: "01/02/2024"}, types.ErrInvalidDate},
		{"bad sort", types.CLIArgs{SortBy: "ctr"}, types.ErrUnknownSortKey},
		{"bad order", types.CLIArgs{SortBy: "date", SortOrder: "up"}, types.ErrInvalidSortOrder},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ApplyArgs(entity.DefaultQueryState(50), &tt.args)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestRunDashboardRendersAdminTable(t *testing.T) {
	f := newDashboard(t, adminUser, pageOf(45, rowsWithCost()...))

	require.NoError(t, f.uc.RunDashboard(context.Background(), &types.CLIArgs{Search: "Campaign"}))

	out := f.console.String()
	assert.Contains(t, out, "Welcome, Admin <admin@company.com> (admin)")
	assert.Contains(t, out, `Active filters: Search: "Campaign"`)
	assert.Contains(t, out, "Date ↓ | Campaign | Impressions | Clicks | Conversions | Cost")
	assert.Contains(t, out, "16/01/2024 | Campaign B | 12,333 | 235 | 6.5 |")
	assert.Contains(t, out, "2,026.81")
	assert.Contains(t, out, "Showing 1 to 20 of 45 records")
	assert.Contains(t, out, "Page 1 of 3   [1] 2 3")
	assert.Contains(t, out, "Total: 45 records | Admin access")
	assert.Empty(t, f.export.calls)
}

func TestRunDashboardHidesCostForRegularUser(t *testing.T) {
	f := newDashboard(t, regularUser, pageOf(2, rowsWithCost()...))

	require.NoError(t, f.uc.RunDashboard(context.Background(), &types.CLIArgs{}))

	out := f.console.String()
	assert.NotContains(t, out, "Cost")
	assert.NotContains(t, out, "2,026.81")
	assert.Contains(t, out, "Regular user")
}

func TestRunDashboardShowsEmptyResult(t *testing.T) {
	f := newDashboard(t, adminUser, pageOf(0))

	require.NoError(t, f.uc.RunDashboard(context.Background(), &types.CLIArgs{Search: "nothing"}))

	out := f.console.String()
	assert.Contains(t, out, "No data found for the selected criteria.")
	assert.Contains(t, out, "Try adjusting your date range")
	assert.Contains(t, out, "Showing 0 to 0 of 0 records")
}

func TestRunDashboardRequiresLogin(t *testing.T) {
	apiRepo := &fakeAPI{}
	sess := NewSessionUseCase(apiRepo, &memoryTokens{}, &recordingConsole{})
	console := &recordingConsole{}
	uc := NewDashboardUseCase(sess, NewMetricsUseCase(apiRepo, sess, console, 20), &fakeExport{}, console, NewFormatter("en", "USD"))

	err := uc.RunDashboard(context.Background(), &types.CLIArgs{})
	assert.ErrorIs(t, err, types.ErrNotLoggedIn)
	assert.Empty(t, apiRepo.sent())
}

func TestRunDashboardExports(t *testing.T) {
	f := newDashboard(t, regularUser, pageOf(2, rowsWithCost()...))

	args := &types.CLIArgs{ReportName: "jan", ReportType: []string{"csv", "pdf", "xls"}, Dir: "/tmp"}
	require.NoError(t, f.uc.RunDashboard(context.Background(), args))

	assert.Equal(t, []string{"csv", "pdf"}, f.export.calls)
	assert.Equal(t, regularUser, f.export.last.User)
	assert.False(t, f.export.last.ShowCost)
	require.Len(t, f.export.last.Page.Metrics, 2)
	assert.Nil(t, f.export.last.Page.Metrics[0].CostMicros)
	assert.Equal(t, 2024, f.export.last.GeneratedAt.Year())

	out := f.console.String()
	assert.Contains(t, out, "SUCCESS: Successfully exported to CSV: /tmp/jan.csv")
	assert.Contains(t, out, "ERROR: Failed to export to XLS")
	assert.Contains(t, out, "STATUS: Exporting CSV...")
	assert.Contains(t, out, "STATUS: Exporting PDF...")
}

func TestRunDashboardUnauthorizedEndsSession(t *testing.T) {
	f := newDashboard(t, adminUser, func(context.Context, string, entity.QueryState) (entity.PageResult, error) {
		return entity.PageResult{}, unauthorized("token expired")
	})

	err := f.uc.RunDashboard(context.Background(), &types.CLIArgs{})
	assert.ErrorIs(t, err, types.ErrSessionExpired)
	assert.Empty(t, f.tokens.token)
}

func TestRunInteractiveScript(t *testing.T) {
	f := newDashboard(t, adminUser, pageOf(45, rowsWithCost()...))

	script := strings.Join([]string{
		"help",
		"start 2024-01-01",
		"start tomorrow",
		"apply",
		"sort clicks",
		"sort clicks",
		"page 9",
		"next",
		"prev",
		"export weekly csv,json",
		"frobnicate",
		"clear",
		"quit",
	}, "\n")

	require.NoError(t, f.uc.RunInteractive(context.Background(), strings.NewReader(script), &types.CLIArgs{Dir: "out"}))

	sent := f.api.sent()
	require.Len(t, sent, 7)
	assert.Equal(t, "", sent[0].StartDate)
	assert.Equal(t, "2024-01-01", sent[1].StartDate)
	assert.Equal(t, entity.SortAsc, sent[2].SortOrder)
	assert.Equal(t, entity.SortDesc, sent[3].SortOrder)
	assert.Equal(t, 2, sent[4].Page)
	assert.Equal(t, 1, sent[5].Page)
	assert.Equal(t, entity.DefaultQueryState(20), sent[6])

	assert.Equal(t, []string{"csv", "json"}, f.export.calls)

	out := f.console.String()
	assert.Contains(t, out, "Commands:")
	assert.Contains(t, out, "Filter updated. Type 'apply' to run the query.")
	assert.Contains(t, out, "YYYY-MM-DD format")
	assert.Contains(t, out, "No such page (1-3)")
	assert.Contains(t, out, `Unknown command "frobnicate"`)
}

func TestRunInteractiveLogout(t *testing.T) {
	f := newDashboard(t, adminUser, pageOf(2, rowsWithCost()...))

	require.NoError(t, f.uc.RunInteractive(context.Background(), strings.NewReader("logout\napply\n"), &types.CLIArgs{}))

	assert.Len(t, f.api.sent(), 1)
	assert.Empty(t, f.tokens.token)
	assert.False(t, f.uc.metrics.View().Loaded)
	assert.Contains(t, f.console.String(), "Logged out")
}

func TestRunInteractiveEndsAtEOF(t *testing.T) {
	f := newDashboard(t, adminUser, pageOf(2, rowsWithCost()...))

	require.NoError(t, f.uc.RunInteractive(context.Background(), strings.NewReader("show"), &types.CLIArgs{}))
	assert.Len(t, f.api.sent(), 1)
}

func TestRunWhoAmI(t *testing.T) {
	f := newDashboard(t, regularUser, nil)

	require.NoError(t, f.uc.RunWhoAmI(context.Background()))
	assert.Contains(t, f.console.String(), "Welcome, User <user@company.com> (user)")
}
