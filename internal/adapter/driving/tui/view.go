package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/diillson/aws-cost-optimizer-go/internal/domain/entity"
	"github.com/diillson/aws-cost-optimizer-go/internal/domain/workflow"
)

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.header())
	b.WriteString("\n\n")

	if err := m.session.Banner(); err != nil {
		b.WriteString(bannerStyle.Render(errorStyle.Render("✖ "+err.Error()) + subtleStyle.Render("   x: dismiss")))
		b.WriteString("\n\n")
	}

	switch st := m.session.State().(type) {
	case workflow.Idle:
		b.WriteString(m.formView())
	case workflow.ChoosingMode:
		b.WriteString(m.modeView())
	case workflow.Browsing:
		if m.session.Analysis() != nil {
			b.WriteString(m.findingsView())
		} else {
			b.WriteString(m.catalogView())
		}
	case workflow.Confirming:
		b.WriteString(m.confirmView(st))
	case workflow.Executing:
		verb := "Optimizing"
		if st.Call.Request.DryRun {
			verb = "Previewing"
		}
		b.WriteString(fmt.Sprintf("%s %s %d resource(s) with %s...",
			m.spinner.View(), verb, len(st.Call.Request.ResourceIDs), m.session.Analysis().Technique.Name))
	}

	if m.notice != "" {
		b.WriteString("\n" + noticeStyle.Render("⚠ "+m.notice) + "\n")
	}
	if m.status != "" {
		b.WriteString("\n" + successStyle.Render(m.status) + "\n")
	}
	return b.String()
}

func (m Model) header() string {
	title := titleStyle.Render("AWS Cost Optimizer")
	c := m.session.Credentials()
	if c == nil {
		return title
	}
	badge := dryRunBadge.Render("DRY RUN")
	if m.session.Mode() == workflow.ModeLive {
		badge = liveBadge.Render("LIVE")
	}
	who := subtleStyle.Render(fmt.Sprintf("%s · %s · %s", userLabel(c), orDash(c.AccountID), m.session.Region()))
	return lipgloss.JoinHorizontal(lipgloss.Top, title, "  ", badge, "  ", who)
}

func (m Model) formView() string {
	var b strings.Builder
	b.WriteString("Enter AWS credentials. They are validated and kept by the optimizer API.\n\n")

	fields := []string{"Access key", "Secret key"}
	for i, label := range fields {
		b.WriteString(m.focusMark(i) + labelStyle.Render(label) + m.inputs[i].View() + "\n")
	}
	b.WriteString(m.focusMark(fieldRegion) + labelStyle.Render("Region") + "◀ " + m.region() + " ▶\n")

	if m.session.Busy(workflow.CallValidate) {
		b.WriteString("\n" + m.spinner.View() + " Validating credentials...\n")
	} else if err := m.session.ValidationError(); err != nil {
		b.WriteString("\n" + errorStyle.Render(err.Error()) + "\n")
	}

	b.WriteString("\n" + subtleStyle.Render("tab: next field · ←/→: region · ctrl+p: load from AWS profile "+m.profile()+" · enter: validate · esc: quit"))
	return b.String()
}

func (m Model) focusMark(field int) string {
	if m.focus == field {
		return cursorStyle.Render("> ")
	}
	return "  "
}

func (m Model) modeView() string {
	options := []string{
		"Dry run: preview what would change (recommended)",
		"Live: actually modify and delete resources",
	}
	var b strings.Builder
	b.WriteString("How do you want to run optimizations?\n\n")
	for i, o := range options {
		if i == m.modeCursor {
			b.WriteString(cursorStyle.Render("> "+o) + "\n")
		} else {
			b.WriteString("  " + o + "\n")
		}
	}
	b.WriteString("\n" + subtleStyle.Render("↑/↓: move · enter: choose · d: dry run · l: live"))
	return b.String()
}

func (m Model) catalogView() string {
	if t, ok := m.session.Analyzing(); ok {
		return fmt.Sprintf("%s Analyzing %s in %s...\n\n%s", m.spinner.View(), t.Label(), m.session.Region(),
			subtleStyle.Render("esc: back to techniques (result will be discarded)"))
	}

	techniques := m.session.Techniques()
	if len(techniques) == 0 {
		if m.session.Busy(workflow.CallTechniques) {
			return m.spinner.View() + " Loading techniques..."
		}
		return "No techniques available.\n\n" + subtleStyle.Render("r: reload · q: quit")
	}

	var b strings.Builder
	b.WriteString("Choose an optimization technique:\n\n")
	for i, t := range techniques {
		line := t.Label()
		if i == m.cursor {
			b.WriteString(cursorStyle.Render("> "+line) + "\n")
			if t.Description != "" {
				b.WriteString("    " + subtleStyle.Render(t.Description) + "\n")
			}
			continue
		}
		b.WriteString("  " + line + "\n")
	}
	b.WriteString("\n" + subtleStyle.Render("↑/↓: move · enter: analyze · m: toggle live mode · L: logout · q: quit"))
	return b.String()
}

func (m Model) findingsView() string {
	analysis := m.session.Analysis()
	sel := m.session.Selection()

	var b strings.Builder
	b.WriteString(titleStyle.Render(analysis.Technique.Label()) + "\n")
	b.WriteString(fmt.Sprintf("%d resource(s) found · estimated savings $%s/month\n\n",
		analysis.Count, workflow.FormatFloat(analysis.TotalMonthlySavings)))

	if !analysis.HasFindings() {
		b.WriteString(successStyle.Render("No resources found. Nothing to optimize!") + "\n\n")
		b.WriteString(subtleStyle.Render("esc: back · q: quit"))
		return b.String()
	}

	allMark := "[ ]"
	if sel.AllSelected() {
		allMark = "[x]"
	}
	b.WriteString("  " + allMark + " Select all\n")

	outcomes := outcomeIndex(analysis.OptimizationResults)
	for i, f := range analysis.Findings {
		mark := "[ ]"
		if sel.Contains(f.ResourceID) {
			mark = selectedStyle.Render("[x]")
		}
		line := fmt.Sprintf("%s %-28s %-18s $%8s", mark, f.ResourceID, f.ResourceType, workflow.FormatFloat(f.EstimatedSavings))
		if o, ok := outcomes[f.ResourceID]; ok {
			line += "  " + outcomeLabel(o)
		}
		if i == m.cursor {
			b.WriteString(cursorStyle.Render("> ") + line + "\n")
			for _, p := range f.DetailPairs() {
				b.WriteString("      " + subtleStyle.Render(p.Key+": "+p.Value) + "\n")
			}
			continue
		}
		b.WriteString("  " + line + "\n")
	}

	b.WriteString(fmt.Sprintf("\nSelected %d of %d · $%s/month\n",
		sel.Len(), len(analysis.Findings), workflow.FormatMoney(m.session.SelectedSavings())))

	if r := analysis.OptimizationResults; r != nil {
		b.WriteString(fmt.Sprintf("%s: %d succeeded, %d failed\n", runLabel(r.DryRun), r.Summary.Success, r.Summary.Failed))
	}

	action := "o: preview"
	if m.session.Mode() == workflow.ModeLive {
		action = "o: optimize (live)"
	}
	b.WriteString("\n" + subtleStyle.Render("space: toggle · a: select all · "+action+" · J/C/P: export json/csv/pdf · m: mode · esc: back"))
	return b.String()
}

func (m Model) confirmView(st workflow.Confirming) string {
	analysis := m.session.Analysis()
	sel := m.session.Selection()
	live := m.session.Mode() == workflow.ModeLive

	title, verb := "⚠ Confirm Preview", "preview"
	if live {
		title, verb = "⚠ Confirm Deletion", "DELETE"
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(title) + "\n\n")
	b.WriteString(fmt.Sprintf("You are about to %s %d resource(s)\n\n", verb, sel.Len()))
	b.WriteString(labelStyle.Render("Service:") + analysis.Technique.Name + "\n")
	b.WriteString(labelStyle.Render("Savings:") + "$" + workflow.FormatMoney(m.session.SelectedSavings()) + "/month\n")
	mode := "DRY RUN (Safe)"
	if live {
		mode = "LIVE (Destructive!)"
	}
	b.WriteString(labelStyle.Render("Mode:") + mode + "\n\n")

	if live {
		b.WriteString(errorStyle.Render("This action cannot be undone.") + "\n")
		b.WriteString(fmt.Sprintf("Type %q to confirm:\n", analysis.Technique.Name))
		b.WriteString(m.confirm.View() + "\n")
		if st.Mismatch != nil {
			b.WriteString(errorStyle.Render(st.Mismatch.Error()) + "\n")
		}
		b.WriteString("\n" + subtleStyle.Render("enter: confirm · esc: cancel"))
	} else {
		b.WriteString(subtleStyle.Render("enter/y: preview · esc/n: cancel"))
	}
	return modalStyle.Render(b.String())
}

func outcomeIndex(r *entity.OptimizationResult) map[string]entity.ResourceOutcome {
	out := map[string]entity.ResourceOutcome{}
	if r == nil {
		return out
	}
	for _, o := range r.Results {
		out[o.ResourceID] = o
	}
	return out
}

func outcomeLabel(o entity.ResourceOutcome) string {
	text := o.Text()
	if o.Succeeded() {
		return successStyle.Render("✔ " + text)
	}
	return errorStyle.Render("✖ " + text)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
