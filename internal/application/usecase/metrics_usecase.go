package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/diillson/campaign-metrics-dashboard-go/internal/domain/entity"
	"github.com/diillson/campaign-metrics-dashboard-go/internal/domain/repository"
	"github.com/diillson/campaign-metrics-dashboard-go/internal/shared/types"
)

// SessionProvider gives the view read-only access to the session.
type SessionProvider interface {
	Current() entity.Session
	HandleUnauthorized()
}

// MetricsView is a snapshot of what the dashboard should display.
type MetricsView struct {
	State      entity.QueryState
	Rows       []entity.MetricRow
	Pagination entity.PageResult
	Error      string
	Loading    bool
	Loaded     bool
	ShowCost   bool
	ShowRate   bool
}

// MetricsUseCase owns the QueryState and the last page fetched with it.
type MetricsUseCase struct {
	apiRepo  repository.MetricsAPIRepository
	session  SessionProvider
	console  types.ConsoleInterface
	pageSize int

	mu          sync.Mutex
	state       entity.QueryState
	result      entity.PageResult
	resultState entity.QueryState
	loaded      bool
	errMsg      string
	inflight    int
	seq         uint64
}

// NewMetricsUseCase creates the view with the default query state.
func NewMetricsUseCase(
	apiRepo repository.MetricsAPIRepository,
	session SessionProvider,
	console types.ConsoleInterface,
	pageSize int,
) *MetricsUseCase {
	state := entity.DefaultQueryState(pageSize)
	return &MetricsUseCase{
		apiRepo:  apiRepo,
		session:  session,
		console:  console,
		pageSize: state.PageSize,
		state:    state,
	}
}

// State returns the current query state.
func (uc *MetricsUseCase) State() entity.QueryState {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.state
}

// RunQuery sends state to the API. On success the rows and pagination are
// replaced; on failure the previous rows stay and an error message is set.
// Only the most recently issued query may update the view.
func (uc *MetricsUseCase) RunQuery(ctx context.Context, state entity.QueryState) error {
	if err := state.Validate(); err != nil {
		return err
	}
	sess := uc.session.Current()
	if !sess.Active() {
		return types.ErrNotLoggedIn
	}

	uc.mu.Lock()
	uc.state = state
	uc.seq++
	seq := uc.seq
	uc.inflight++
	uc.mu.Unlock()

	uc.console.LogDebug("query #%d: %+v", seq, state.Request())
	res, err := uc.apiRepo.QueryMetrics(ctx, sess.Token, state)

	uc.mu.Lock()
	uc.inflight--
	if seq != uc.seq {
		uc.mu.Unlock()
		uc.console.LogDebug("query #%d discarded, #%d is newer", seq, uc.seq)
		return types.ErrSuperseded
	}

	if err != nil {
		if errors.Is(err, types.ErrUnauthorized) {
			uc.errMsg = types.ErrSessionExpired.Error()
			uc.mu.Unlock()
			uc.session.HandleUnauthorized()
			return types.ErrSessionExpired
		}
		uc.errMsg = "Error loading metrics: " + err.Error()
		uc.mu.Unlock()
		return fmt.Errorf("error loading metrics: %w", err)
	}

	uc.result = res
	uc.resultState = state
	uc.loaded = true
	uc.errMsg = ""
	uc.mu.Unlock()
	return nil
}

// SetFilter updates one filter field without querying.
func (uc *MetricsUseCase) SetFilter(field entity.FilterField, value string) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	next, err := uc.state.WithFilter(field, value)
	if err != nil {
		return err
	}
	uc.state = next
	return nil
}

// Apply runs the query with the pending filters.
func (uc *MetricsUseCase) Apply(ctx context.Context) error {
	return uc.RunQuery(ctx, uc.State())
}

// SetSort selects key ascending, or flips to descending when key is already ascending, and queries.
func (uc *MetricsUseCase) SetSort(ctx context.Context, key entity.SortKey) error {
	return uc.RunQuery(ctx, uc.State().WithSort(key))
}

// SetPage queries page n. It returns false without querying when n is
// outside 1..total_pages of the last result. Pending filter edits are sent
// with the new page.
func (uc *MetricsUseCase) SetPage(ctx context.Context, n int) (bool, error) {
	uc.mu.Lock()
	total := uc.result.TotalPages
	state := uc.state
	uc.mu.Unlock()

	if n < 1 || n > total {
		return false, nil
	}
	return true, uc.RunQuery(ctx, state.WithPage(n))
}

// NextPage moves one page forward from the displayed page.
func (uc *MetricsUseCase) NextPage(ctx context.Context) (bool, error) {
	return uc.SetPage(ctx, uc.displayedPage()+1)
}

// PrevPage moves one page back from the displayed page.
func (uc *MetricsUseCase) PrevPage(ctx context.Context) (bool, error) {
	return uc.SetPage(ctx, uc.displayedPage()-1)
}

// ClearFilters resets to page 1, no filters and the default sort, then queries.
func (uc *MetricsUseCase) ClearFilters(ctx context.Context) error {
	return uc.RunQuery(ctx, entity.DefaultQueryState(uc.pageSize))
}

// Reset forgets state and rows, e.g. after logout.
func (uc *MetricsUseCase) Reset() {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	uc.state = entity.DefaultQueryState(uc.pageSize)
	uc.result = entity.PageResult{}
	uc.resultState = entity.QueryState{}
	uc.loaded = false
	uc.errMsg = ""
	uc.seq++
}

// View returns the display snapshot. Rows are re-sorted with the key the page
// was requested with, and cost is stripped unless the user may see it.
func (uc *MetricsUseCase) View() MetricsView {
	sess := uc.session.Current()

	uc.mu.Lock()
	defer uc.mu.Unlock()

	showCost := CostVisibleByRole(sess) && CostVisibleByPresence(uc.result)
	rows := entity.SortRows(uc.result.Metrics, uc.resultState.SortBy, uc.resultState.SortOrder)
	showRate := false
	for i := range rows {
		if !showCost {
			rows[i] = rows[i].WithoutCost()
		}
		if rows[i].ConversionRate != nil {
			showRate = true
		}
	}

	pagination := uc.result
	pagination.Metrics = nil

	return MetricsView{
		State:      uc.state,
		Rows:       rows,
		Pagination: pagination,
		Error:      uc.errMsg,
		Loading:    uc.inflight > 0,
		Loaded:     uc.loaded,
		ShowCost:   showCost,
		ShowRate:   showRate,
	}
}

func (uc *MetricsUseCase) displayedPage() int {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if uc.result.Page > 0 {
		return uc.result.Page
	}
	return uc.state.Page
}

// CostVisibleByRole is the client-side rule: only admins see cost.
func CostVisibleByRole(s entity.Session) bool {
	return s.IsAdmin()
}

// CostVisibleByPresence is the server-side rule: cost shows only when the API sent it.
func CostVisibleByPresence(p entity.PageResult) bool {
	return p.HasCost()
}
