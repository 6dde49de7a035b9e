package usecase

import (
	"fmt"
	"sort"
	"strings"

	"github.com/diillson/aws-cost-optimizer-go/internal/domain/entity"
	"github.com/diillson/aws-cost-optimizer-go/internal/domain/workflow"
	"github.com/diillson/aws-cost-optimizer-go/internal/shared/types"
	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

func renderTechniques(table types.TableInterface, techniques []entity.Technique) string {
	table.AddColumn("ID")
	table.AddColumn("Technique")
	table.AddColumn("Description")
	for _, t := range techniques {
		table.AddRow(t.ID, t.Label(), t.Description)
	}
	return table.Render()
}

func (uc *OptimizerUseCase) displayAnalysis(result *entity.AnalysisResult) {
	if !result.HasFindings() {
		uc.console.LogSuccess("No resources found for %s. Nothing to optimize!", result.Technique.Name)
		return
	}

	table := uc.console.CreateTable()
	table.AddColumn("Resource ID")
	table.AddColumn("Type")
	table.AddColumn("Details")
	table.AddColumn("Savings/mo")
	for _, f := range result.Findings {
		table.AddRow(f.ResourceID, f.ResourceType, detailsText(f), "$"+workflow.FormatFloat(f.EstimatedSavings))
	}
	uc.console.Println(table.Render())

	uc.console.DisplaySavingsBars(SavingsByType(result.Findings))
	uc.console.LogInfo("%s: %s resource(s), estimated savings $%s/month",
		result.Technique.Name, humanize.Comma(int64(result.Count)), workflow.FormatFloat(result.TotalMonthlySavings))
}

func (uc *OptimizerUseCase) displayOutcomes(result *entity.OptimizationResult) {
	if result == nil {
		return
	}
	table := uc.console.CreateTable()
	table.AddColumn("Resource ID")
	table.AddColumn("Status")
	table.AddColumn("Message")
	for _, o := range result.Results {
		table.AddRow(o.ResourceID, o.Status, o.Text())
	}
	uc.console.Println(table.Render())

	label := "Optimization"
	if result.DryRun {
		label = "Dry run"
	}
	if result.Summary.Failed > 0 {
		uc.console.LogWarning("%s finished: %d succeeded, %d failed", label, result.Summary.Success, result.Summary.Failed)
		return
	}
	uc.console.LogSuccess("%s finished: %d succeeded, %d failed", label, result.Summary.Success, result.Summary.Failed)
}

func detailsText(f entity.Finding) string {
	pairs := f.DetailPairs()
	lines := make([]string, 0, len(pairs))
	for _, p := range pairs {
		lines = append(lines, fmt.Sprintf("%s: %s", p.Key, p.Value))
	}
	return strings.Join(lines, "\n")
}

// SavingsByType groups the findings by resource type, largest savings first.
func SavingsByType(findings []entity.Finding) []types.SavingsGroup {
	sums := map[string]decimal.Decimal{}
	counts := map[string]int{}
	var order []string
	for _, f := range findings {
		if _, ok := counts[f.ResourceType]; !ok {
			order = append(order, f.ResourceType)
			sums[f.ResourceType] = decimal.Zero
		}
		counts[f.ResourceType]++
		sums[f.ResourceType] = sums[f.ResourceType].Add(decimal.NewFromFloat(f.EstimatedSavings))
	}

	groups := make([]types.SavingsGroup, 0, len(order))
	for _, rt := range order {
		groups = append(groups, types.SavingsGroup{
			ResourceType: rt,
			Count:        counts[rt],
			Savings:      sums[rt].Round(2).InexactFloat64(),
		})
	}
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].Savings > groups[j].Savings })
	return groups
}
