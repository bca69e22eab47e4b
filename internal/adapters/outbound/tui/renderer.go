package tui

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/abdidvp/detectlint/internal/domain"
)

// ── Warm palette ──
var (
	accent    = lipgloss.Color("#D97706") // amber
	fg        = lipgloss.Color("#E8E6E3") // warm light gray
	dim       = lipgloss.Color("#6B7280") // muted gray
	faint     = lipgloss.Color("#3F3F46") // very dim
	success   = lipgloss.Color("#22C55E") // green
	danger    = lipgloss.Color("#EF4444") // red
	warning   = lipgloss.Color("#F59E0B") // amber-yellow
	info      = lipgloss.Color("#8B949E") // soft blue-gray
	skipColor = lipgloss.Color("#4B5563") // dark gray
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			Align(lipgloss.Center)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(1, 4).
			Align(lipgloss.Center).
			Width(68)

	statusColors = map[domain.Status]lipgloss.Color{
		domain.StatusSuccess: success,
		domain.StatusWarning: warning,
		domain.StatusError:   danger,
	}

	dimStyle      = lipgloss.NewStyle().Foreground(dim)
	faintStyle    = lipgloss.NewStyle().Foreground(faint)
	passStyle     = lipgloss.NewStyle().Foreground(success)
	failStyle     = lipgloss.NewStyle().Foreground(danger)
	skipStyle     = lipgloss.NewStyle().Foreground(skipColor)
	errorTagStyle = lipgloss.NewStyle().Foreground(danger).Bold(true)
	warnTagStyle  = lipgloss.NewStyle().Foreground(warning).Bold(true)
	infoTagStyle  = lipgloss.NewStyle().Foreground(info)
	fileStyle     = lipgloss.NewStyle().Foreground(dim)
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(fg)
	sectionStyle  = lipgloss.NewStyle().Bold(true).Foreground(accent)
	hintStyle     = lipgloss.NewStyle().Foreground(dim).Italic(true)
	separatorLine = faintStyle.Render(strings.Repeat("─", 64))
)

// RenderResult formats a single validation result for terminal output.
func RenderResult(r *domain.ValidationResult) string {
	var b strings.Builder

	// ── Header ──
	title := headerStyle.Render(r.DetectionID)
	subtitle := dimStyle.Render(string(r.SourceFormat))
	scoreStyled := lipgloss.NewStyle().
		Bold(true).
		Foreground(statusColor(r.Status)).
		Render(fmt.Sprintf("%.0f / 100", r.ConfidenceScore))
	statusStyled := statusBadge(r.Status)

	b.WriteString(boxStyle.Render(title + "\n" + subtitle + "\n\n" + scoreStyled + "  " + statusStyled))
	b.WriteString("\n\n")

	// ── Issues ──
	renderIssues(&b, r.Issues)

	b.WriteString("\n")
	return b.String()
}

func renderIssues(b *strings.Builder, issues []domain.ValidationIssue) {
	if len(issues) == 0 {
		b.WriteString("  " + passStyle.Render("No issues found.") + "\n")
		return
	}

	sorted := sortBySeverity(issues)
	high, medium, low := countSeverities(sorted)
	b.WriteString("  ")
	b.WriteString(titleStyle.Render("Issues"))
	b.WriteString("  ")
	if high > 0 {
		b.WriteString(errorTagStyle.Render(fmt.Sprintf("%d high", high)))
		b.WriteString("  ")
	}
	if medium > 0 {
		b.WriteString(warnTagStyle.Render(fmt.Sprintf("%d medium", medium)))
		b.WriteString("  ")
	}
	if low > 0 {
		b.WriteString(infoTagStyle.Render(fmt.Sprintf("%d low", low)))
	}
	b.WriteString("\n\n")

	for _, issue := range sorted {
		renderIssue(b, issue)
	}
}

func renderIssue(b *strings.Builder, issue domain.ValidationIssue) {
	tag := severityTag(issue.Severity)
	code := faintStyle.Render(fmt.Sprintf("[%d]", issue.Code))

	if issue.Location != "" {
		fmt.Fprintf(b, "    %s %s %s\n", tag, code, fileStyle.Render(issue.Location))
		fmt.Fprintf(b, "           %s\n", dimStyle.Render(issue.Message))
	} else {
		fmt.Fprintf(b, "    %s %s %s\n", tag, code, dimStyle.Render(issue.Message))
	}
	for _, s := range issue.Suggestions {
		fmt.Fprintf(b, "           %s\n", hintStyle.Render("→ "+s))
	}
}

func severityTag(s domain.Severity) string {
	switch s {
	case domain.SeverityHigh:
		return errorTagStyle.Render("high  ")
	case domain.SeverityMedium:
		return warnTagStyle.Render("medium")
	default:
		return infoTagStyle.Render("low   ")
	}
}

func statusBadge(s domain.Status) string {
	return lipgloss.NewStyle().Bold(true).Foreground(statusColor(s)).Render(strings.ToUpper(string(s)))
}

func statusIcon(s domain.Status) string {
	return lipgloss.NewStyle().Foreground(statusColor(s)).Render("●")
}

func countSeverities(issues []domain.ValidationIssue) (high, medium, low int) {
	for _, i := range issues {
		switch i.Severity {
		case domain.SeverityHigh:
			high++
		case domain.SeverityMedium:
			medium++
		default:
			low++
		}
	}
	return
}

// sortBySeverity returns a copy of issues, most severe first, keeping
// insertion order within a severity.
func sortBySeverity(issues []domain.ValidationIssue) []domain.ValidationIssue {
	out := slices.Clone(issues)
	slices.SortStableFunc(out, func(a, b domain.ValidationIssue) int {
		return b.Severity.Rank() - a.Severity.Rank()
	})
	return out
}

// RenderReport formats a validation report for terminal output.
func RenderReport(rep domain.ValidationReport) string {
	var b strings.Builder

	title := headerStyle.Render("Validation Report")
	subtitle := dimStyle.Render(rep.DetectionID + "  ·  " + string(rep.FormatAnalysis.SourceFormat))
	b.WriteString(boxStyle.Render(title + "\n" + subtitle + "\n\n" + statusBadge(rep.Status)))
	b.WriteString("\n\n")

	// ── Metrics ──
	m := rep.SuccessMetrics
	fmt.Fprintf(&b, "  %s %s  %s\n", titleStyle.Render(padRight("confidence", 14)),
		coloredBar(int(m.ConfidenceScore), 20), dimStyle.Render(fmt.Sprintf("%.1f", m.ConfidenceScore)))
	fmt.Fprintf(&b, "  %s %s  %s\n", titleStyle.Render(padRight("coverage", 14)),
		coloredBar(int(m.ValidationCoverage), 20), dimStyle.Render(fmt.Sprintf("%.1f%%", m.ValidationCoverage)))
	fmt.Fprintf(&b, "  %s %s\n", titleStyle.Render(padRight("issue density", 14)),
		dimStyle.Render(fmt.Sprintf("%.2f", m.IssueDensity)))

	b.WriteString("\n  " + separatorLine + "\n")

	// ── Summary ──
	b.WriteString("\n  " + sectionStyle.Render("Summary") + "\n")
	for _, s := range domain.Severities {
		fmt.Fprintf(&b, "    %s %d\n", severityTag(s), rep.Summary[s])
	}

	// ── Checks ──
	if checks := rep.FormatAnalysis.Checks; len(checks) > 0 {
		b.WriteString("\n  " + sectionStyle.Render("Checks") + "\n")
		for _, c := range checks {
			if c.Ran {
				fmt.Fprintf(&b, "    %s %s\n", passStyle.Render("●"), c.Label)
			} else {
				fmt.Fprintf(&b, "    %s %s\n", skipStyle.Render("○"), skipStyle.Render(padRight(c.Label, 34)+"not run"))
			}
		}
	}

	// ── Details ──
	if details := rep.FormatAnalysis.Details; len(details) > 0 {
		b.WriteString("\n  " + sectionStyle.Render("Details") + "\n")
		keys := make([]string, 0, len(details))
		for k := range details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "    %s %v\n", fileStyle.Render(padRight(k, 20)), details[k])
		}
	}

	// ── Recommendations ──
	if len(rep.Recommendations) > 0 {
		b.WriteString("\n  " + sectionStyle.Render("Recommendations") + "\n")
		for _, r := range rep.Recommendations {
			fmt.Fprintf(&b, "    %s %s\n", warnTagStyle.Render("›"), r)
		}
	}

	b.WriteString("\n")
	return b.String()
}

func coloredBar(score, width int) string {
	filled := max(0, min(score*width/100, width))
	empty := width - filled

	color := scoreColor(score)
	filledStr := lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", filled))
	emptyStr := lipgloss.NewStyle().Foreground(faint).Render(strings.Repeat("░", empty))
	return filledStr + emptyStr
}

func scoreColor(score int) lipgloss.Color {
	switch {
	case score >= int(domain.ConfidenceThreshold):
		return success
	case score >= 80:
		return lipgloss.Color("#A3E635") // lime
	case score >= 60:
		return warning
	default:
		return danger
	}
}

func statusColor(s domain.Status) lipgloss.Color {
	if c, ok := statusColors[s]; ok {
		return c
	}
	return fg
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// RenderHistory formats recorded batch runs for terminal output.
func RenderHistory(entries []domain.RunEntry) string {
	if len(entries) == 0 {
		return "  " + dimStyle.Render("No run history found.") + "\n"
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString("  " + titleStyle.Render("Run History") + "\n")
	b.WriteString("  " + faintStyle.Render(strings.Repeat("─", 50)) + "\n\n")

	for i, e := range entries {
		hash := e.CommitHash
		if len(hash) > 7 {
			hash = hash[:7]
		}
		if hash == "" {
			hash = "·······"
		}

		validStyled := passStyle.Render(fmt.Sprintf("%d valid", e.Valid))
		invalidStyled := dimStyle.Render(fmt.Sprintf("%d invalid", e.Invalid))
		if e.Invalid > 0 {
			invalidStyled = failStyle.Render(fmt.Sprintf("%d invalid", e.Invalid))
		}
		mean := lipgloss.NewStyle().
			Foreground(scoreColor(int(e.MeanConfidence))).
			Render(fmt.Sprintf("%.1f", e.MeanConfidence))

		line := fmt.Sprintf("  %s  %s  %s  %s  %s",
			dimStyle.Render(e.Timestamp.Format("2006-01-02")),
			faintStyle.Render(hash),
			validStyled,
			invalidStyled,
			mean,
		)

		if i > 0 {
			diff := e.MeanConfidence - entries[i-1].MeanConfidence
			if diff > 0 {
				line += "  " + passStyle.Render(fmt.Sprintf("↑%.1f", diff))
			} else if diff < 0 {
				line += "  " + failStyle.Render(fmt.Sprintf("↓%.1f", -diff))
			}
		}

		b.WriteString(line)
		b.WriteString("\n")
	}

	return b.String()
}
