package usecase

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/diillson/campaign-metrics-dashboard-go/internal/domain/entity"
	"github.com/diillson/campaign-metrics-dashboard-go/internal/shared/types"
)

// columnTitles são os cabeçalhos exibidos por chave de ordenação.
var columnTitles = map[entity.SortKey]string{
	entity.SortByDate:           "Date",
	entity.SortByCampaign:       "Campaign",
	entity.SortByImpressions:    "Impressions",
	entity.SortByClicks:         "Clicks",
	entity.SortByConversions:    "Conversions",
	entity.SortByConversionRate: "Conv. Rate",
	entity.SortByCost:           "Cost",
}

func (uc *DashboardUseCase) renderUser(sess entity.Session) {
	if sess.User == nil {
		return
	}
	uc.console.LogInfo("Welcome, %s <%s> (%s)", sess.User.Name, sess.User.Email, sess.User.Role)
}

// Render desenha filtros ativos, tabela, paginação e resumo.
func (uc *DashboardUseCase) Render() {
	view := uc.metrics.View()

	if line := uc.filterSummary(view.State); line != "" {
		uc.console.Println(line)
	}
	if view.Error != "" {
		uc.console.LogError("%s", view.Error)
	}
	if !view.Loaded {
		return
	}

	if len(view.Rows) == 0 {
		uc.console.LogWarning("No data found for the selected criteria.")
		if view.State.HasActiveFilters() {
			uc.console.LogInfo("Try adjusting your date range or clearing filters to see more results.")
		}
	} else {
		uc.console.Print(uc.buildTable(view).Render())
	}

	uc.renderPagination(view.Pagination)
	uc.console.Println(uc.accessSummary(view.Pagination))
}

func (uc *DashboardUseCase) buildTable(view MetricsView) types.TableInterface {
	keys := []entity.SortKey{
		entity.SortByDate, entity.SortByCampaign, entity.SortByImpressions,
		entity.SortByClicks, entity.SortByConversions,
	}
	if view.ShowRate {
		keys = append(keys, entity.SortByConversionRate)
	}
	if view.ShowCost {
		keys = append(keys, entity.SortByCost)
	}

	table := uc.console.CreateTable()
	for _, k := range keys {
		table.AddColumn(columnTitles[k] + sortIndicator(view.State, k))
	}

	for _, row := range view.Rows {
		cells := []interface{}{
			uc.format.Date(row.Date),
			row.Campaign(),
			uc.format.Count(row.Impressions),
			uc.format.Count(row.Clicks),
			uc.format.Decimal(row.Conversions),
		}
		if view.ShowRate {
			cells = append(cells, uc.format.Percent(row.ConversionRate))
		}
		if view.ShowCost {
			cost := "-"
			if row.CostMicros != nil {
				cost = uc.format.Currency(*row.CostMicros)
			}
			cells = append(cells, cost)
		}
		table.AddRow(cells...)
	}
	return table
}

func sortIndicator(q entity.QueryState, key entity.SortKey) string {
	if q.SortBy != key {
		return ""
	}
	if q.SortOrder == entity.SortDesc {
		return " ↓"
	}
	return " ↑"
}

func (uc *DashboardUseCase) filterSummary(q entity.QueryState) string {
	var parts []string
	if q.StartDate != "" {
		parts = append(parts, "From: "+uc.format.Date(q.StartDate))
	}
	if q.EndDate != "" {
		parts = append(parts, "To: "+uc.format.Date(q.EndDate))
	}
	if q.Search != "" {
		parts = append(parts, fmt.Sprintf("Search: %q", q.Search))
	}
	if len(parts) == 0 {
		return ""
	}
	return "Active filters: " + strings.Join(parts, " | ")
}

func (uc *DashboardUseCase) renderPagination(p entity.PageResult) {
	uc.console.Printf("Showing %d to %d of %s records\n", p.FirstRecord(), p.LastRecord(), uc.format.Count(int64(p.TotalCount)))
	if p.TotalPages == 0 {
		return
	}

	window := p.PageWindow(5)
	labels := make([]string, len(window))
	for i, n := range window {
		if n == p.Page {
			labels[i] = "[" + strconv.Itoa(n) + "]"
		} else {
			labels[i] = strconv.Itoa(n)
		}
	}
	uc.console.Printf("Page %d of %d   %s\n", p.Page, p.TotalPages, strings.Join(labels, " "))
}

func (uc *DashboardUseCase) accessSummary(p entity.PageResult) string {
	access := "Regular user"
	if uc.session.Current().IsAdmin() {
		access = "Admin access"
	}
	return fmt.Sprintf("Total: %s records | %s", uc.format.Count(int64(p.TotalCount)), access)
}
