package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/diillson/campaign-metrics-dashboard-go/internal/adapter/driven/api"
	"github.com/diillson/campaign-metrics-dashboard-go/internal/domain/entity"
	"github.com/diillson/campaign-metrics-dashboard-go/internal/shared/types"
	"github.com/stretchr/testify/require"
)

var (
	adminUser   = entity.User{ID: 1, Name: "Admin", Email: "admin@company.com", Role: entity.RoleAdmin}
	regularUser = entity.User{ID: 2, Name: "User", Email: "user@company.com", Role: entity.RoleUser}
)

func int64p(v int64) *int64 { return &v }

func unauthorized(msg string) error {
	return &api.APIError{StatusCode: 401, Message: msg}
}

// fakeAPI records every metrics query it receives.
type fakeAPI struct {
	mu      sync.Mutex
	loginFn func(ctx context.Context, email, password string) (entity.LoginResult, error)
	meFn    func(ctx context.Context, token string) (entity.User, error)
	queryFn func(ctx context.Context, token string, q entity.QueryState) (entity.PageResult, error)
	queries []entity.QueryState
	tokens  []string
}

func (f *fakeAPI) Login(ctx context.Context, email, password string) (entity.LoginResult, error) {
	if f.loginFn == nil {
		return entity.LoginResult{}, fmt.Errorf("login not stubbed")
	}
	return f.loginFn(ctx, email, password)
}

func (f *fakeAPI) CurrentUser(ctx context.Context, token string) (entity.User, error) {
	if f.meFn == nil {
		return entity.User{}, unauthorized("Could not validate credentials")
	}
	return f.meFn(ctx, token)
}

func (f *fakeAPI) QueryMetrics(ctx context.Context, token string, q entity.QueryState) (entity.PageResult, error) {
	f.mu.Lock()
	f.queries = append(f.queries, q)
	f.tokens = append(f.tokens, token)
	fn := f.queryFn
	f.mu.Unlock()
	if fn == nil {
		return entity.PageResult{}.Normalize(q), nil
	}
	return fn(ctx, token, q)
}

func (f *fakeAPI) sent() []entity.QueryState {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]entity.QueryState, len(f.queries))
	copy(out, f.queries)
	return out
}

// pageOf answers every query with rows, paginated by the request.
func pageOf(total int, rows ...entity.MetricRow) func(context.Context, string, entity.QueryState) (entity.PageResult, error) {
	return func(_ context.Context, _ string, q entity.QueryState) (entity.PageResult, error) {
		return entity.PageResult{Metrics: rows, TotalCount: total}.Normalize(q), nil
	}
}

// memoryTokens is an in-memory TokenRepository.
type memoryTokens struct {
	token    string
	clearErr error
	cleared  int
}

func (m *memoryTokens) Load() (string, error) { return m.token, nil }
func (m *memoryTokens) Save(t string) error   { m.token = t; return nil }
func (m *memoryTokens) Clear() error {
	m.cleared++
	if m.clearErr != nil {
		return m.clearErr
	}
	m.token = ""
	return nil
}

// recordingConsole captures everything written through the console interface.
type recordingConsole struct {
	mu  sync.Mutex
	out strings.Builder
}

func (c *recordingConsole) write(s string) {
	c.mu.Lock()
	c.out.WriteString(s)
	c.mu.Unlock()
}

func (c *recordingConsole) String() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.out.String()
}

func (c *recordingConsole) Print(a ...interface{})                 { c.write(fmt.Sprint(a...)) }
func (c *recordingConsole) Printf(format string, a ...interface{}) { c.write(fmt.Sprintf(format, a...)) }
func (c *recordingConsole) Println(a ...interface{})               { c.write(fmt.Sprintln(a...)) }
func (c *recordingConsole) LogInfo(format string, a ...interface{}) {
	c.write("INFO: " + fmt.Sprintf(format, a...) + "\n")
}
func (c *recordingConsole) LogWarning(format string, a ...interface{}) {
	c.write("WARNING: " + fmt.Sprintf(format, a...) + "\n")
}
func (c *recordingConsole) LogError(format string, a ...interface{}) {
	c.write("ERROR: " + fmt.Sprintf(format, a...) + "\n")
}
func (c *recordingConsole) LogSuccess(format string, a ...interface{}) {
	c.write("SUCCESS: " + fmt.Sprintf(format, a...) + "\n")
}
func (c *recordingConsole) LogDebug(format string, a ...interface{}) {}
func (c *recordingConsole) Status(message string) types.StatusHandle {
	return recordingStatus{c}
}
func (c *recordingConsole) CreateTable() types.TableInterface { return &textTable{} }

// recordingStatus writes spinner relabels as STATUS lines.
type recordingStatus struct{ c *recordingConsole }

func (s recordingStatus) Update(msg string) {
	s.c.write("STATUS: " + msg + "\n")
}

func (recordingStatus) Stop() {}

type textTable struct {
	lines []string
	cols  []string
}

func (t *textTable) AddColumn(name string) { t.cols = append(t.cols, name) }
func (t *textTable) AddRow(cells ...interface{}) {
	parts := make([]string, len(cells))
	for i, c := range cells {
		parts[i] = fmt.Sprint(c)
	}
	t.lines = append(t.lines, strings.Join(parts, " | "))
}
func (t *textTable) Render() string {
	return strings.Join(t.cols, " | ") + "\n" + strings.Join(t.lines, "\n") + "\n"
}

// fakeExport records the reports it was asked to write.
type fakeExport struct {
	calls []string
	last  entity.MetricsReport
}

func (f *fakeExport) ExportToCSV(r entity.MetricsReport, name, dir string) (string, error) {
	return f.record("csv", r, name)
}
func (f *fakeExport) ExportToJSON(r entity.MetricsReport, name, dir string) (string, error) {
	return f.record("json", r, name)
}
func (f *fakeExport) ExportToPDF(r entity.MetricsReport, name, dir string) (string, error) {
	return f.record("pdf", r, name)
}
func (f *fakeExport) record(kind string, r entity.MetricsReport, name string) (string, error) {
	f.calls = append(f.calls, kind)
	f.last = r
	return "/tmp/" + name + "." + kind, nil
}

// loggedIn builds a session use case already holding user.
func loggedIn(t *testing.T, apiRepo *fakeAPI, user entity.User) (*SessionUseCase, *memoryTokens) {
	t.Helper()
	tokens := &memoryTokens{token: "tok"}
	apiRepo.meFn = func(context.Context, string) (entity.User, error) { return user, nil }
	s := NewSessionUseCase(apiRepo, tokens, &recordingConsole{})
	_, err := s.Restore(context.Background())
	require.NoError(t, err)
	return s, tokens
}
