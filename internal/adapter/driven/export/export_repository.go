package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/diillson/campaign-metrics-dashboard-go/internal/domain/entity"
	"github.com/diillson/campaign-metrics-dashboard-go/internal/domain/repository"
	"github.com/jung-kurt/gofpdf"
)

// ExportRepositoryImpl implementa o ExportRepository.
type ExportRepositoryImpl struct{}

// NewExportRepository cria uma nova implementação do ExportRepository.
func NewExportRepository() repository.ExportRepository {
	return &ExportRepositoryImpl{}
}

// column descreve uma coluna exportada e como extrair seu valor da linha.
type column struct {
	title string
	width float64
	value func(entity.MetricRow) string
}

// columnsFor returns the exported columns. Rate and cost only appear when the
// report carries them, mirroring the terminal table.
func columnsFor(report entity.MetricsReport) []column {
	cols := []column{
		{"Date", 28, func(m entity.MetricRow) string { return m.Date }},
		{"Campaign ID", 32, func(m entity.MetricRow) string { return m.CampaignID }},
		{"Campaign", 70, func(m entity.MetricRow) string { return m.CampaignName }},
		{"Impressions", 30, func(m entity.MetricRow) string { return strconv.FormatInt(m.Impressions, 10) }},
		{"Clicks", 24, func(m entity.MetricRow) string { return strconv.FormatInt(m.Clicks, 10) }},
		{"Conversions", 28, func(m entity.MetricRow) string { return strconv.FormatFloat(m.Conversions, 'f', -1, 64) }},
	}

	hasRate := false
	for _, m := range report.Page.Metrics {
		if m.ConversionRate != nil {
			hasRate = true
			break
		}
	}
	if hasRate {
		cols = append(cols, column{"Conversion Rate (%)", 32, func(m entity.MetricRow) string {
			if m.ConversionRate == nil {
				return ""
			}
			return strconv.FormatFloat(*m.ConversionRate, 'f', 2, 64)
		}})
	}
	if report.ShowCost {
		cols = append(cols, column{"Cost", 30, func(m entity.MetricRow) string {
			if !m.HasCost() {
				return ""
			}
			return fmt.Sprintf("%.2f", m.Cost())
		}})
	}
	return cols
}

func (r *ExportRepositoryImpl) ExportToCSV(report entity.MetricsReport, filename, outputDir string) (string, error) {
	outputFilename, err := generateFilename(filename, outputDir, "csv")
	if err != nil {
		return "", err
	}

	file, err := os.Create(outputFilename)
	if err != nil {
		return "", fmt.Errorf("error creating CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	cols := columnsFor(report)
	headers := make([]string, len(cols))
	for i, c := range cols {
		headers[i] = c.title
	}
	if err := writer.Write(headers); err != nil {
		return "", fmt.Errorf("error writing CSV header: %w", err)
	}

	for _, row := range report.Page.Metrics {
		record := make([]string, len(cols))
		for i, c := range cols {
			record[i] = c.value(row)
		}
		if err := writer.Write(record); err != nil {
			return "", fmt.Errorf("error writing CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", fmt.Errorf("error flushing CSV file: %w", err)
	}

	return filepath.Abs(outputFilename)
}

func (r *ExportRepositoryImpl) ExportToJSON(report entity.MetricsReport, filename, outputDir string) (string, error) {
	outputFilename, err := generateFilename(filename, outputDir, "json")
	if err != nil {
		return "", err
	}

	file, err := os.Create(outputFilename)
	if err != nil {
		return "", fmt.Errorf("error creating JSON file: %w", err)
	}
	defer file.Close()

	if !report.ShowCost {
		rows := make([]entity.MetricRow, len(report.Page.Metrics))
		for i, m := range report.Page.Metrics {
			rows[i] = m.WithoutCost()
		}
		report.Page.Metrics = rows
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(report); err != nil {
		return "", fmt.Errorf("error encoding JSON data: %w", err)
	}

	return filepath.Abs(outputFilename)
}

func (r *ExportRepositoryImpl) ExportToPDF(report entity.MetricsReport, filename, outputDir string) (string, error) {
	outputFilename, err := generateFilename(filename, outputDir, "pdf")
	if err != nil {
		return "", err
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	headerColor := [3]int{40, 40, 40}
	headerTextColor := [3]int{255, 255, 255}
	bodyTextColor := [3]int{50, 50, 50}
	lineColor := [3]int{200, 200, 200}

	cols := columnsFor(report)
	pageNum := 0

	drawHeaderRow := func() {
		pdf.SetFont("Arial", "B", 9)
		pdf.SetFillColor(headerColor[0], headerColor[1], headerColor[2])
		pdf.SetTextColor(headerTextColor[0], headerTextColor[1], headerTextColor[2])
		for _, c := range cols {
			pdf.CellFormat(c.width, 8, tr(c.title), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 9)
		pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
	}

	pdf.SetFooterFunc(func() {
		pageNum++
		pdf.SetY(-15)
		pdf.SetFont("Arial", "I", 8)
		pdf.SetTextColor(128, 128, 128)
		footerText := fmt.Sprintf("Generated by Campaign Metrics Dashboard | %s", report.GeneratedAt.Format("2006-01-02 15:04"))
		pdf.CellFormat(0, 10, tr(footerText), "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 10, tr(fmt.Sprintf("Page %d", pageNum)), "", 0, "R", false, 0, "")
	})

	pdf.AddPage()

	// Cabeçalho
	pdf.SetFillColor(headerColor[0], headerColor[1], headerColor[2])
	pdf.SetTextColor(headerTextColor[0], headerTextColor[1], headerTextColor[2])
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 12, tr("  Campaign Metrics"), "", 1, "L", true, 0, "")

	pdf.SetFont("Arial", "", 10)
	pdf.SetFillColor(240, 240, 240)
	pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
	pdf.CellFormat(0, 8, tr(fmt.Sprintf("  %s <%s> (%s)", report.User.Name, report.User.Email, report.User.Role)), "", 1, "L", true, 0, "")
	pdf.CellFormat(0, 8, tr("  "+querySummary(report)), "", 1, "L", true, 0, "")
	pdf.Ln(6)

	pdf.SetDrawColor(lineColor[0], lineColor[1], lineColor[2])

	if len(report.Page.Metrics) == 0 {
		pdf.SetFont("Arial", "I", 11)
		pdf.Cell(0, 10, tr("No data found for the selected criteria."))
	} else {
		drawHeaderRow()
		for i, row := range report.Page.Metrics {
			if pdf.GetY() > 180 {
				pdf.AddPage()
				drawHeaderRow()
			}
			fill := i%2 == 1
			pdf.SetFillColor(245, 245, 245)
			for j, c := range cols {
				align := "R"
				if j < 3 {
					align = "L"
				}
				pdf.CellFormat(c.width, 7, tr(truncate(c.value(row), 40)), "1", 0, align, fill, 0, "")
			}
			pdf.Ln(-1)
		}
	}

	if err := pdf.OutputFileAndClose(outputFilename); err != nil {
		return "", fmt.Errorf("error writing PDF file: %w", err)
	}

	return filepath.Abs(outputFilename)
}

// querySummary descreve filtros, ordenação e paginação do relatório.
func querySummary(report entity.MetricsReport) string {
	q := report.Query
	parts := []string{}
	if q.StartDate != "" {
		parts = append(parts, "From "+q.StartDate)
	}
	if q.EndDate != "" {
		parts = append(parts, "To "+q.EndDate)
	}
	if q.Search != "" {
		parts = append(parts, fmt.Sprintf("Search %q", q.Search))
	}
	if q.SortBy != "" {
		parts = append(parts, fmt.Sprintf("Sorted by %s %s", q.SortBy, q.SortOrder))
	}
	parts = append(parts, fmt.Sprintf("Page %d of %d (%d records)", report.Page.Page, report.Page.TotalPages, report.Page.TotalCount))
	return strings.Join(parts, " | ")
}

// truncate limits s to n characters, counting runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// generateFilename cria um nome de arquivo único com timestamp e garante que o diretório exista.
func generateFilename(base, dir, ext string) (string, error) {
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("could not get current working directory: %w", err)
		}
		dir = cwd
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("error creating output directory '%s': %w", dir, err)
	}
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("%s_%s.%s", base, timestamp, ext)
	return filepath.Join(dir, filename), nil
}
