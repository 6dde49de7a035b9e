package repository

import (
	"github.com/diillson/aws-cost-optimizer-go/internal/domain/entity"
)

type ExportRepository interface {
	ExportFindingsToJSON(report entity.FindingsReport, filename string, outputDir string) (string, error)
	ExportFindingsToCSV(report entity.FindingsReport, filename string, outputDir string) (string, error)
	ExportFindingsToPDF(report entity.FindingsReport, filename string, outputDir string) (string, error)
}
