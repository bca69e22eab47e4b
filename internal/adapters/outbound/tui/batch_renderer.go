package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/abdidvp/detectlint/internal/domain"
	"github.com/abdidvp/detectlint/internal/domain/dialect"
)

// RenderBatch renders one row per submitted detection plus the batch summary.
func RenderBatch(br *domain.BatchResult) string {
	var b strings.Builder

	s := br.Summary
	title := headerStyle.Render("Batch Validation")
	counts := passStyle.Render(fmt.Sprintf("%d valid", s.Valid)) +
		dimStyle.Render("  ·  ")
	if s.Invalid > 0 {
		counts += failStyle.Render(fmt.Sprintf("%d invalid", s.Invalid))
	} else {
		counts += dimStyle.Render("0 invalid")
	}
	mean := dimStyle.Render(fmt.Sprintf("%d detections  ·  mean confidence %.1f", s.Total, br.MeanConfidence()))

	b.WriteString(boxStyle.Render(title + "\n" + mean + "\n\n" + counts))
	b.WriteString("\n\n")

	for _, id := range br.Order {
		r, ok := br.Results[id]
		if !ok {
			fmt.Fprintf(&b, "  %s %s %s\n", skipStyle.Render("○"), skipStyle.Render(padRight(id, 36)), skipStyle.Render("not processed"))
			continue
		}
		issues := ""
		if n := len(r.Issues); n > 0 {
			issues = faintStyle.Render(fmt.Sprintf("%d issues", n))
		}
		fmt.Fprintf(&b, "  %s %s %s  %s  %s\n",
			statusIcon(r.Status),
			padRight(id, 36),
			coloredBar(int(r.ConfidenceScore), 12),
			dimStyle.Render(fmt.Sprintf("%5.1f", r.ConfidenceScore)),
			issues,
		)
	}

	b.WriteString("\n")
	return b.String()
}

// RenderFormats lists the registered dialects.
func RenderFormats(entries []dialect.Entry) string {
	var b strings.Builder

	fmt.Fprintf(&b, "\n  %s %s\n\n",
		sectionStyle.Render("Supported formats"),
		dimStyle.Render(fmt.Sprintf("(%d)", len(entries))),
	)
	for _, e := range entries {
		fmt.Fprintf(&b, "    %s %s %s  %s\n",
			passStyle.Render("●"),
			titleStyle.Render(padRight(string(e.Format), 12)),
			padRight(e.Name, 20),
			fileStyle.Render(strings.Join(e.Extensions, " ")),
		)
		fmt.Fprintf(&b, "      %s\n", faintStyle.Render(fmt.Sprintf("%d checks", len(e.KnownChecks()))))
	}

	b.WriteString("\n")
	return b.String()
}

// RenderRegressions lists detections whose outcome got worse than the baseline.
func RenderRegressions(regs []domain.Regression) string {
	if len(regs) == 0 {
		return "  " + passStyle.Render("No regressions against baseline.") + "\n\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "  %s %s\n\n",
		sectionStyle.Render("Regressions"),
		dimStyle.Render(fmt.Sprintf("(%d)", len(regs))),
	)
	for _, r := range regs {
		fmt.Fprintf(&b, "    %s %s %s %s %s\n",
			failStyle.Render("●"),
			padRight(r.DetectionID, 36),
			dimStyle.Render(fmt.Sprintf("%s %.1f", r.Before.Status, r.Before.ConfidenceScore)),
			faintStyle.Render("→"),
			lipgloss.NewStyle().Foreground(statusColor(r.After.Status)).
				Render(fmt.Sprintf("%s %.1f", r.After.Status, r.After.ConfidenceScore)),
		)
	}
	b.WriteString("\n")
	return b.String()
}
