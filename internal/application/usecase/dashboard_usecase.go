package usecase

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/diillson/campaign-metrics-dashboard-go/internal/domain/entity"
	"github.com/diillson/campaign-metrics-dashboard-go/internal/domain/repository"
	"github.com/diillson/campaign-metrics-dashboard-go/internal/shared/types"
)

// DashboardUseCase handles the main dashboard functionality.
type DashboardUseCase struct {
	session    *SessionUseCase
	metrics    *MetricsUseCase
	exportRepo repository.ExportRepository
	console    types.ConsoleInterface
	format     *Formatter
	now        func() time.Time
}

// NewDashboardUseCase creates a new dashboard use case.
func NewDashboardUseCase(
	session *SessionUseCase,
	metrics *MetricsUseCase,
	exportRepo repository.ExportRepository,
	console types.ConsoleInterface,
	format *Formatter,
) *DashboardUseCase {
	return &DashboardUseCase{
		session:    session,
		metrics:    metrics,
		exportRepo: exportRepo,
		console:    console,
		format:     format,
		now:        time.Now,
	}
}

// RunLogin autentica e persiste a sessão.
func (uc *DashboardUseCase) RunLogin(ctx context.Context, email, password string) error {
	status := uc.console.Status("Signing in...")
	sess, err := uc.session.Login(ctx, email, password)
	status.Stop()
	if err != nil {
		uc.console.LogError("Login failed: %s", err)
		return err
	}
	uc.console.LogSuccess("Logged in as %s <%s> (%s)", sess.User.Name, sess.User.Email, sess.User.Role)
	return nil
}

// RunLogout encerra a sessão local.
func (uc *DashboardUseCase) RunLogout() {
	uc.session.Logout()
	uc.metrics.Reset()
	uc.console.LogSuccess("Logged out")
}

// RunWhoAmI mostra o usuário da sessão restaurada.
func (uc *DashboardUseCase) RunWhoAmI(ctx context.Context) error {
	sess, err := uc.EnsureSession(ctx)
	if err != nil {
		return err
	}
	uc.renderUser(sess)
	return nil
}

// EnsureSession restores the persisted session and fails when there is none.
func (uc *DashboardUseCase) EnsureSession(ctx context.Context) (entity.Session, error) {
	if sess := uc.session.Current(); sess.Active() {
		return sess, nil
	}

	status := uc.console.Status("Restoring session...")
	sess, err := uc.session.Restore(ctx)
	status.Stop()
	if err != nil {
		uc.console.LogWarning("%s", err)
	}
	if !sess.Active() {
		return entity.Session{}, types.ErrNotLoggedIn
	}
	return sess, nil
}

// RunDashboard executa a consulta única definida pelos argumentos e exibe a tabela.
func (uc *DashboardUseCase) RunDashboard(ctx context.Context, args *types.CLIArgs) error {
	sess, err := uc.EnsureSession(ctx)
	if err != nil {
		return err
	}

	state, err := ApplyArgs(uc.metrics.State(), args)
	if err != nil {
		return err
	}

	if err := uc.query(func() error { return uc.metrics.RunQuery(ctx, state) }); err != nil {
		return err
	}

	uc.renderUser(sess)
	uc.Render()

	if args.ReportName != "" && len(args.ReportType) > 0 {
		uc.Export(args.ReportName, args.ReportType, args.Dir)
	}
	return nil
}

// ApplyArgs layers command-line filters, sort and page onto state.
func ApplyArgs(state entity.QueryState, args *types.CLIArgs) (entity.QueryState, error) {
	var err error
	if args.PageSize > 0 {
		if state, err = state.WithFilter(entity.FilterPageSize, strconv.Itoa(args.PageSize)); err != nil {
			return state, err
		}
	}
	filters := []struct {
		field entity.FilterField
		value string
	}{
		{entity.FilterStartDate, args.StartDate},
		{entity.FilterEndDate, args.EndDate},
		{entity.FilterSearch, args.Search},
	}
	for _, f := range filters {
		if f.value == "" {
			continue
		}
		if state, err = state.WithFilter(f.field, f.value); err != nil {
			return state, err
		}
	}

	if args.SortBy != "" {
		key, err := entity.ParseSortKey(args.SortBy)
		if err != nil {
			return state, err
		}
		dir := entity.SortAsc
		if args.SortOrder != "" {
			if dir, err = entity.ParseSortDirection(args.SortOrder); err != nil {
				return state, err
			}
		}
		state.SortBy, state.SortOrder = key, dir
	}

	if args.Page > 0 {
		state = state.WithPage(args.Page)
	}
	return state, state.Validate()
}

// query runs fn under a spinner. Superseded responses are ignored; an expired
// session ends the caller's flow; other failures are left to the error banner.
func (uc *DashboardUseCase) query(fn func() error) error {
	status := uc.console.Status("Loading metrics...")
	err := fn()
	status.Stop()

	switch {
	case err == nil, errors.Is(err, types.ErrSuperseded):
		return nil
	case errors.Is(err, types.ErrSessionExpired), errors.Is(err, types.ErrNotLoggedIn):
		uc.console.LogError("%s", err)
		return err
	case errors.Is(err, types.ErrInvalidPage), errors.Is(err, types.ErrInvalidDate):
		uc.console.LogError("%s", err)
	}
	return nil
}

// Export grava a página exibida nos formatos pedidos.
func (uc *DashboardUseCase) Export(name string, reportTypes []string, dir string) {
	view := uc.metrics.View()
	sess := uc.session.Current()

	report := entity.MetricsReport{
		GeneratedAt: uc.now(),
		Query:       view.State,
		Page:        view.Pagination,
		ShowCost:    view.ShowCost,
	}
	report.Page.Metrics = view.Rows
	if sess.User != nil {
		report.User = *sess.User
	}

	type outcome struct {
		kind string
		path string
		err  error
	}
	var outcomes []outcome

	status := uc.console.Status("Exporting report...")
	for _, reportType := range reportTypes {
		kind := strings.ToUpper(strings.TrimSpace(reportType))
		status.Update(fmt.Sprintf("Exporting %s...", kind))

		var (
			path string
			err  error
		)
		switch strings.ToLower(kind) {
		case "csv":
			path, err = uc.exportRepo.ExportToCSV(report, name, dir)
		case "json":
			path, err = uc.exportRepo.ExportToJSON(report, name, dir)
		case "pdf":
			path, err = uc.exportRepo.ExportToPDF(report, name, dir)
		default:
			err = fmt.Errorf("%w: %s", types.ErrUnsupportedReportType, reportType)
		}
		outcomes = append(outcomes, outcome{kind: kind, path: path, err: err})
	}
	status.Stop()

	for _, o := range outcomes {
		if o.err != nil {
			uc.console.LogError("Failed to export to %s: %s", o.kind, o.err)
			continue
		}
		uc.console.LogSuccess("Successfully exported to %s: %s", o.kind, o.path)
	}
}

// RunInteractive lê comandos linha a linha até quit, logout ou EOF.
func (uc *DashboardUseCase) RunInteractive(ctx context.Context, in io.Reader, args *types.CLIArgs) error {
	sess, err := uc.EnsureSession(ctx)
	if err != nil {
		return err
	}

	state, err := ApplyArgs(uc.metrics.State(), args)
	if err != nil {
		return err
	}

	uc.renderUser(sess)
	if err := uc.query(func() error { return uc.metrics.RunQuery(ctx, state) }); err != nil {
		return err
	}
	uc.Render()
	uc.console.LogInfo("Type 'help' for commands.")

	scanner := bufio.NewScanner(in)
	for {
		uc.console.Print("> ")
		if !scanner.Scan() {
			uc.console.Println()
			return scanner.Err()
		}
		done, err := uc.handleCommand(ctx, scanner.Text(), args.Dir)
		if err != nil || done {
			return err
		}
	}
}

func (uc *DashboardUseCase) handleCommand(ctx context.Context, line, dir string) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}
	cmd, rest := strings.ToLower(fields[0]), fields[1:]
	arg := strings.Join(rest, " ")

	switch cmd {
	case "quit", "exit", "q":
		return true, nil
	case "help", "?":
		uc.console.Println(interactiveHelp)
	case "show":
		uc.Render()
	case "start", "end", "search", "size":
		field := map[string]entity.FilterField{
			"start":  entity.FilterStartDate,
			"end":    entity.FilterEndDate,
			"search": entity.FilterSearch,
			"size":   entity.FilterPageSize,
		}[cmd]
		if err := uc.metrics.SetFilter(field, arg); err != nil {
			uc.console.LogError("%s", err)
			return false, nil
		}
		uc.console.LogInfo("Filter updated. Type 'apply' to run the query.")
	case "apply":
		return false, uc.queryAndRender(func() error { return uc.metrics.Apply(ctx) })
	case "clear":
		return false, uc.queryAndRender(func() error { return uc.metrics.ClearFilters(ctx) })
	case "sort":
		key, err := entity.ParseSortKey(arg)
		if err != nil {
			uc.console.LogError("%s", err)
			return false, nil
		}
		return false, uc.queryAndRender(func() error { return uc.metrics.SetSort(ctx, key) })
	case "page", "next", "prev":
		return false, uc.changePage(ctx, cmd, arg)
	case "export":
		if len(rest) == 0 {
			uc.console.LogError("usage: export <name> [csv,json,pdf]")
			return false, nil
		}
		reportTypes := []string{"csv"}
		if len(rest) > 1 {
			reportTypes = strings.Split(rest[1], ",")
		}
		uc.Export(rest[0], reportTypes, dir)
	case "logout":
		uc.RunLogout()
		return true, nil
	default:
		uc.console.LogWarning("Unknown command %q. Type 'help' for commands.", cmd)
	}
	return false, nil
}

func (uc *DashboardUseCase) changePage(ctx context.Context, cmd, arg string) error {
	target := 0
	if cmd == "page" {
		n, err := strconv.Atoi(arg)
		if err != nil {
			uc.console.LogError("usage: page <number>")
			return nil
		}
		target = n
	}

	moved := false
	err := uc.query(func() error {
		var err error
		switch cmd {
		case "next":
			moved, err = uc.metrics.NextPage(ctx)
		case "prev":
			moved, err = uc.metrics.PrevPage(ctx)
		default:
			moved, err = uc.metrics.SetPage(ctx, target)
		}
		return err
	})
	if err != nil {
		return err
	}
	if !moved {
		uc.console.LogWarning("No such page (1-%d)", uc.metrics.View().Pagination.TotalPages)
		return nil
	}
	uc.Render()
	return nil
}

func (uc *DashboardUseCase) queryAndRender(fn func() error) error {
	if err := uc.query(fn); err != nil {
		return err
	}
	uc.Render()
	return nil
}

const interactiveHelp = `Commands:
  start <YYYY-MM-DD>   set the start date (empty clears)
  end <YYYY-MM-DD>     set the end date (empty clears)
  search <text>        filter campaigns by name
  size <n>             rows per page
  apply                run the query with the pending filters
  sort <column>        date, campaign, impressions, clicks, conversions, conversion_rate, cost
  page <n> | next | prev
  clear                reset filters, sort and page
  export <name> [csv,json,pdf]
  show                 redraw the table
  logout | quit`
