package workflow

import (
	"github.com/diillson/aws-cost-optimizer-go/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Savings sums the estimated monthly savings of the findings whose id is in
// selected. Decimal arithmetic keeps the sum independent of the order.
func Savings(findings []entity.Finding, selected map[string]struct{}) decimal.Decimal {
	total := decimal.Zero
	for _, f := range findings {
		if _, ok := selected[f.ResourceID]; ok {
			total = total.Add(decimal.NewFromFloat(f.EstimatedSavings))
		}
	}
	return total
}

// TotalSavings sums every finding.
func TotalSavings(findings []entity.Finding) decimal.Decimal {
	total := decimal.Zero
	for _, f := range findings {
		total = total.Add(decimal.NewFromFloat(f.EstimatedSavings))
	}
	return total
}

// FormatMoney renders an amount with two decimals, e.g. "10.95".
func FormatMoney(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}

// FormatFloat renders a float amount with two decimals.
func FormatFloat(amount float64) string {
	return decimal.NewFromFloat(amount).StringFixed(2)
}
