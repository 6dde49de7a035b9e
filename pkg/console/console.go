package console

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/diillson/aws-cost-optimizer-go/internal/shared/types"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/pterm/pterm"
)

// Console é uma implementação do ConsoleInterface sobre pterm.
type Console struct {
	out io.Writer
}

// NewConsole cria um Console que escreve no stdout.
func NewConsole() *Console {
	return NewConsoleWriter(os.Stdout)
}

// NewConsoleWriter cria um Console que escreve em w.
func NewConsoleWriter(w io.Writer) *Console {
	return &Console{out: w}
}

func (c *Console) Print(a ...interface{}) {
	fmt.Fprint(c.out, a...)
}

func (c *Console) Printf(format string, a ...interface{}) {
	fmt.Fprintf(c.out, format, a...)
}

func (c *Console) Println(a ...interface{}) {
	fmt.Fprintln(c.out, a...)
}

func (c *Console) LogInfo(format string, a ...interface{}) {
	pterm.Info.WithWriter(c.out).Printfln(format, a...)
}

func (c *Console) LogWarning(format string, a ...interface{}) {
	pterm.Warning.WithWriter(c.out).Printfln(format, a...)
}

func (c *Console) LogError(format string, a ...interface{}) {
	pterm.Error.WithWriter(c.out).Printfln(format, a...)
}

func (c *Console) LogSuccess(format string, a ...interface{}) {
	pterm.Success.WithWriter(c.out).Printfln(format, a...)
}

// statusHandle envolve o spinner do pterm.
type statusHandle struct {
	spinner *pterm.SpinnerPrinter
}

// Status inicia um spinner até Stop ser chamado.
func (c *Console) Status(message string) types.StatusHandle {
	spinner, _ := pterm.DefaultSpinner.WithWriter(c.out).WithRemoveWhenDone(true).Start(message)
	return &statusHandle{spinner: spinner}
}

func (h *statusHandle) Update(message string) {
	if h.spinner != nil {
		h.spinner.UpdateText(message)
	}
}

func (h *statusHandle) Stop() {
	if h.spinner != nil {
		_ = h.spinner.Stop()
	}
}

// Cores do banner e dos avisos da CLI.
var (
	BoldRed      = color.New(color.FgRed, color.Bold).SprintFunc()
	BrightYellow = color.New(color.FgYellow, color.Bold).SprintFunc()
	BrightCyan   = color.New(color.FgCyan, color.Bold).SprintFunc()
)

// Table é uma implementação do TableInterface.
type Table struct {
	columns []string
	rows    [][]string
}

// CreateTable cria uma nova tabela.
func (c *Console) CreateTable() types.TableInterface {
	return &Table{
		columns: []string{},
		rows:    [][]string{},
	}
}

// AddColumn adiciona uma coluna à tabela.
func (t *Table) AddColumn(name string, options ...interface{}) {
	t.columns = append(t.columns, name)
}

// AddRow adiciona uma linha à tabela.
func (t *Table) AddRow(cells ...interface{}) {
	// Convertemos cada célula para string
	processedCells := make([]string, len(cells))
	for i, cell := range cells {
		processedCells[i] = fmt.Sprint(cell)
	}
	t.rows = append(t.rows, processedCells)
}

// Render renderiza a tabela como uma string.
func (t *Table) Render() string {
	// Use o pterm para criar uma tabela visualmente agradável
	tableData := pterm.TableData{t.columns}
	for _, row := range t.rows {
		tableData = append(tableData, row)
	}

	table := pterm.DefaultTable.
		WithHasHeader().
		WithBoxed().
		WithHeaderStyle(pterm.NewStyle(pterm.FgLightCyan)).
		WithData(tableData)

	renderedTable, _ := table.Srender()
	return renderedTable
}

// DisplaySavingsBars exibe a economia estimada por tipo de recurso como barras.
func (c *Console) DisplaySavingsBars(groups []types.SavingsGroup) {
	fmt.Fprintln(c.out, "\n"+RenderSavingsBars(groups))
}

// RenderSavingsBars monta o painel de barras; a maior economia ocupa a largura toda.
func RenderSavingsBars(groups []types.SavingsGroup) string {
	maxSavings := 0.0
	total := 0.0
	for _, g := range groups {
		maxSavings = math.Max(maxSavings, g.Savings)
		total += g.Savings
	}

	if maxSavings == 0 {
		return pterm.Warning.Sprint("No estimated savings for these findings")
	}

	tableData := pterm.TableData{
		{"Resource Type", "Count", "Savings/mo", "", "Share"},
	}

	for _, g := range groups {
		barLength := int((g.Savings / maxSavings) * 40)
		bar := strings.Repeat("█", barLength)
		share := g.Savings / total * 100

		// Verde para a maior fatia, amarelo para as relevantes, azul para o resto
		barColor := pterm.FgBlue.Sprint(bar)
		switch {
		case g.Savings == maxSavings:
			barColor = pterm.FgGreen.Sprint(bar)
		case share >= 10:
			barColor = pterm.FgYellow.Sprint(bar)
		}

		tableData = append(tableData, []string{
			g.ResourceType,
			humanize.Comma(int64(g.Count)),
			fmt.Sprintf("$%.2f", g.Savings),
			barColor,
			fmt.Sprintf("%.1f%%", share),
		})
	}

	table := pterm.DefaultTable.WithHasHeader().WithData(tableData)
	renderedTable, _ := table.Srender()

	return pterm.DefaultBox.WithTitle("Estimated Monthly Savings").WithBoxStyle(pterm.NewStyle(pterm.FgCyan)).Sprint(renderedTable)
}
