package export

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/diillson/aws-cost-optimizer-go/internal/domain/entity"
	"github.com/diillson/aws-cost-optimizer-go/internal/domain/repository"
	"github.com/dustin/go-humanize"
	"github.com/jung-kurt/gofpdf"
)

// CSVHeader é a primeira linha do export CSV.
var CSVHeader = []string{"Resource ID", "Type", "Details", "Estimated Monthly Savings"}

// ExportRepositoryImpl implementa o ExportRepository.
type ExportRepositoryImpl struct {
	now func() time.Time
}

// NewExportRepository cria uma nova implementação do ExportRepository.
func NewExportRepository() repository.ExportRepository {
	return &ExportRepositoryImpl{now: time.Now}
}

// DefaultBaseName é o nome do arquivo quando nenhum report name foi informado.
func DefaultBaseName(techniqueID string) string {
	return "cost-optimizer-" + techniqueID
}

// --- JSON ---

// WriteFindingsJSON grava o relatório indentado com dois espaços.
func WriteFindingsJSON(w io.Writer, report entity.FindingsReport) error {
	if report.Findings == nil {
		report.Findings = []entity.Finding{}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(report); err != nil {
		return fmt.Errorf("error encoding JSON data: %w", err)
	}
	return nil
}

func (r *ExportRepositoryImpl) ExportFindingsToJSON(report entity.FindingsReport, filename, outputDir string) (string, error) {
	return r.writeFile(report, filename, outputDir, "json", WriteFindingsJSON)
}

// --- CSV ---

// WriteFindingsCSV grava uma linha por finding. Todo campo de dados vai entre
// aspas, com aspas internas duplicadas, para o JSON de details sobreviver a
// qualquer leitor CSV.
func WriteFindingsCSV(w io.Writer, report entity.FindingsReport) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(strings.Join(CSVHeader, ",") + "\n"); err != nil {
		return fmt.Errorf("error writing CSV header: %w", err)
	}
	for _, f := range report.Findings {
		record := []string{
			f.ResourceID,
			f.ResourceType,
			f.DetailsJSON(),
			strconv.FormatFloat(f.EstimatedSavings, 'f', -1, 64),
		}
		for i, field := range record {
			if i > 0 {
				if err := bw.WriteByte(','); err != nil {
					return fmt.Errorf("error writing CSV row: %w", err)
				}
			}
			if _, err := bw.WriteString(quoteField(field)); err != nil {
				return fmt.Errorf("error writing CSV row: %w", err)
			}
		}
		if _, err := bw.WriteString("\n"); err != nil {
			return fmt.Errorf("error writing CSV row: %w", err)
		}
	}
	return bw.Flush()
}

func quoteField(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func (r *ExportRepositoryImpl) ExportFindingsToCSV(report entity.FindingsReport, filename, outputDir string) (string, error) {
	return r.writeFile(report, filename, outputDir, "csv", WriteFindingsCSV)
}

// --- PDF ---

func (r *ExportRepositoryImpl) ExportFindingsToPDF(report entity.FindingsReport, filename, outputDir string) (string, error) {
	outputFilename, err := r.outputPath(report, filename, outputDir, "pdf")
	if err != nil {
		return "", err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetAutoPageBreak(true, 20)

	headerColor := [3]int{40, 40, 40}
	headerTextColor := [3]int{255, 255, 255}
	sectionTitleColor := [3]int{0, 0, 0}
	bodyTextColor := [3]int{50, 50, 50}
	lineColor := [3]int{200, 200, 200}

	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Arial", "I", 8)
		pdf.SetTextColor(128, 128, 128)
		footerText := fmt.Sprintf("Generated by AWS Cost Optimizer | %s", report.ExportedAt)
		pdf.CellFormat(0, 10, tr(footerText), "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 10, tr(fmt.Sprintf("Page %d", pdf.PageNo())), "", 0, "R", false, 0, "")
	})

	sectionTitle := func(title string) {
		pdf.SetFont("Arial", "B", 12)
		pdf.SetTextColor(sectionTitleColor[0], sectionTitleColor[1], sectionTitleColor[2])
		pdf.Cell(0, 8, tr(title))
		pdf.Ln(7)
		pdf.SetDrawColor(lineColor[0], lineColor[1], lineColor[2])
		pdf.Line(pdf.GetX(), pdf.GetY(), pdf.GetX()+190, pdf.GetY())
		pdf.Ln(4)
	}

	pdf.AddPage()

	// Cabeçalho
	pdf.SetFillColor(headerColor[0], headerColor[1], headerColor[2])
	pdf.SetTextColor(headerTextColor[0], headerTextColor[1], headerTextColor[2])
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 12, tr(fmt.Sprintf("  %s", truncate(report.Technique, 80))), "", 1, "L", true, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.SetFillColor(240, 240, 240)
	pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
	meta := fmt.Sprintf("  Technique: %s   Region: %s   Exported: %s", report.TechniqueID, report.Region, report.ExportedAt)
	pdf.CellFormat(0, 8, tr(meta), "", 1, "L", true, 0, "")
	pdf.Ln(10)

	// Resumo
	sectionTitle("Savings Summary")
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(95, 12, tr(fmt.Sprintf("$%.2f / month", report.TotalMonthlySavings)), "", 0, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(95, 12, tr(fmt.Sprintf("%s resources flagged", humanize.Comma(int64(len(report.Findings))))), "", 1, "L", false, 0, "")
	pdf.Ln(4)
	for _, g := range groupByType(report.Findings) {
		pdf.MultiCell(190, 5, tr(fmt.Sprintf("%s: %d x, $%.2f", g.resourceType, g.count, g.savings)), "", "L", false)
	}
	pdf.Ln(8)

	// Tabela de findings
	sectionTitle("Findings")
	widths := []float64{45, 30, 90, 25}
	pdf.SetFont("Arial", "B", 9)
	for i, h := range CSVHeader {
		label := h
		if i == 3 {
			label = "Savings/mo"
		}
		pdf.CellFormat(widths[i], 7, tr(label), "B", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 8)
	for _, f := range report.Findings {
		details := make([]string, 0)
		for _, p := range f.DetailPairs() {
			details = append(details, fmt.Sprintf("%s: %s", p.Key, cleanRichTags(p.Value)))
		}
		detailText := strings.Join(details, "\n")
		lines := pdf.SplitLines([]byte(tr(detailText)), widths[2])
		height := float64(max(len(lines), 1)) * 4

		x, y := pdf.GetXY()
		if y+height > 277 {
			pdf.AddPage()
			x, y = pdf.GetXY()
		}
		pdf.CellFormat(widths[0], height, tr(truncate(f.ResourceID, 30)), "", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], height, tr(truncate(f.ResourceType, 20)), "", 0, "L", false, 0, "")
		pdf.MultiCell(widths[2], 4, tr(detailText), "", "L", false)
		pdf.SetXY(x+widths[0]+widths[1]+widths[2], y)
		pdf.CellFormat(widths[3], height, fmt.Sprintf("$%.2f", f.EstimatedSavings), "", 1, "R", false, 0, "")
		pdf.SetDrawColor(lineColor[0], lineColor[1], lineColor[2])
		pdf.Line(10, pdf.GetY(), 200, pdf.GetY())
	}

	if err := pdf.OutputFileAndClose(outputFilename); err != nil {
		return "", fmt.Errorf("error writing PDF file: %w", err)
	}

	return filepath.Abs(outputFilename)
}

// --- Funções Auxiliares ---

func (r *ExportRepositoryImpl) writeFile(report entity.FindingsReport, filename, outputDir, ext string, write func(io.Writer, entity.FindingsReport) error) (string, error) {
	outputFilename, err := r.outputPath(report, filename, outputDir, ext)
	if err != nil {
		return "", err
	}

	file, err := os.Create(outputFilename)
	if err != nil {
		return "", fmt.Errorf("error creating %s file: %w", strings.ToUpper(ext), err)
	}
	defer file.Close()

	if err := write(file, report); err != nil {
		return "", err
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("error closing %s file: %w", strings.ToUpper(ext), err)
	}

	return filepath.Abs(outputFilename)
}

// outputPath usa cost-optimizer-<technique>.<ext> por padrão; um nome
// explícito ganha um timestamp para não sobrescrever exports anteriores.
func (r *ExportRepositoryImpl) outputPath(report entity.FindingsReport, filename, outputDir, ext string) (string, error) {
	if filename == "" {
		return ensureDir(outputDir, fmt.Sprintf("%s.%s", DefaultBaseName(report.TechniqueID), ext))
	}
	return generateFilename(filename, outputDir, ext, r.now())
}

// generateFilename cria um nome de arquivo único com timestamp e garante que o diretório exista.
func generateFilename(base, dir, ext string, now time.Time) (string, error) {
	timestamp := now.Format("20060102_150405")
	return ensureDir(dir, fmt.Sprintf("%s_%s.%s", base, timestamp, ext))
}

func ensureDir(dir, filename string) (string, error) {
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
	return filepath.Join(dir, filename), nil
}

type typeGroup struct {
	resourceType string
	count        int
	savings      float64
}

func groupByType(findings []entity.Finding) []typeGroup {
	idx := map[string]int{}
	var groups []typeGroup
	for _, f := range findings {
		i, ok := idx[f.ResourceType]
		if !ok {
			i = len(groups)
			idx[f.ResourceType] = i
			groups = append(groups, typeGroup{resourceType: f.ResourceType})
		}
		groups[i].count++
		groups[i].savings += f.EstimatedSavings
	}
	sort.SliceStable(groups, func(a, b int) bool { return groups[a].savings > groups[b].savings })
	return groups
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

// Regex para limpar formatação pterm (rich tags) e sequências ANSI de cor/estilo.
var richTagRegex = regexp.MustCompile(`\[/?([a-zA-Z]+|#[0-9a-fA-F]{6})\]`)
var ansiRegex = regexp.MustCompile(`\x1B\[[0-9;]*[A-Za-z]`)

// cleanRichTags remove tags de formatação do pterm e sequências ANSI.
func cleanRichTags(text string) string {
	text = richTagRegex.ReplaceAllString(text, "")
	text = ansiRegex.ReplaceAllString(text, "")
	return text
}
