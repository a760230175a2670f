package repository

import (
	"github.com/diillson/campaign-metrics-dashboard-go/internal/domain/entity"
)

type ExportRepository interface {
	ExportToCSV(report entity.MetricsReport, filename string, outputDir string) (string, error)
	ExportToJSON(report entity.MetricsReport, filename string, outputDir string) (string, error)
	ExportToPDF(report entity.MetricsReport, filename string, outputDir string) (string, error)
}
