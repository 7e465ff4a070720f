package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/sbomlens/pkg/analysis"
	"github.com/matzehuels/sbomlens/pkg/health"
	"github.com/matzehuels/sbomlens/pkg/vuln"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success, low risk
	colorYellow = lipgloss.Color("220") // Amber - warnings, medium risk
	colorRed    = lipgloss.Color("167") // Soft red - errors, high risk
	colorOrange = lipgloss.Color("208") // High severity
	colorBlue   = lipgloss.Color("75")  // Light blue - links
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Public Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleLink for URLs.
	StyleLink = lipgloss.NewStyle().Foreground(colorBlue).Underline(true)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleSuccess for success messages.
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

// =============================================================================
// Internal Styles
// =============================================================================

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleHeader  = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	styleKey     = lipgloss.NewStyle().Foreground(colorGray).Width(16)
	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconStale   = "⚠"
)

// =============================================================================
// Status Output
// =============================================================================

// printSuccess prints a success message.
func printSuccess(format string, args ...any) {
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + fmt.Sprintf(format, args...))
}

// printError prints an error message.
func printError(format string, args ...any) {
	fmt.Println(styleIconError.Render(iconError) + " " + fmt.Sprintf(format, args...))
}

// printWarning prints a warning message.
func printWarning(format string, args ...any) {
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(fmt.Sprintf(format, args...)))
}

// printInfo prints an info/status message.
func printInfo(format string, args ...any) {
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + fmt.Sprintf(format, args...))
}

// printDetail prints a detail line (indented).
func printDetail(format string, args ...any) {
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a file output line.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

// printNextStep prints a suggested next command.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

// =============================================================================
// Risk Styling
// =============================================================================

// riskStyle colors a traffic light value.
func riskStyle(light string) lipgloss.Style {
	switch light {
	case "green":
		return lipgloss.NewStyle().Foreground(colorGreen)
	case "yellow":
		return lipgloss.NewStyle().Foreground(colorYellow)
	case "red":
		return lipgloss.NewStyle().Foreground(colorRed).Bold(true)
	default:
		return lipgloss.NewStyle().Foreground(colorDim)
	}
}

func severityStyle(s vuln.Severity) lipgloss.Style {
	switch s {
	case vuln.SeverityCritical:
		return lipgloss.NewStyle().Foreground(colorRed).Bold(true)
	case vuln.SeverityHigh:
		return lipgloss.NewStyle().Foreground(colorOrange)
	case vuln.SeverityMedium:
		return lipgloss.NewStyle().Foreground(colorYellow)
	case vuln.SeverityLow:
		return lipgloss.NewStyle().Foreground(colorGreen)
	default:
		return lipgloss.NewStyle().Foreground(colorGray)
	}
}

// formatScore renders "7.4 (D)" or "—" for unscored packages.
func formatScore(p *analysis.Package) string {
	if p.RiskScore == nil {
		return "—"
	}
	return fmt.Sprintf("%.1f (%s)", p.RiskScore.Numeric, p.RiskScore.Grade)
}

func maintenance(h *health.Record) string {
	if h == nil {
		return string(health.StatusUnknown)
	}
	s := string(h.MaintenanceStatus)
	if h.IsStagnant {
		s += " " + iconStale
	}
	return s
}

// formatRelativeTime renders t relative to now.
func formatRelativeTime(t *time.Time, now time.Time) string {
	if t == nil {
		return "—"
	}
	diff := now.Sub(*t)
	switch {
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 30*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}

// =============================================================================
// Summary Display
// =============================================================================

// summaryView renders the headline numbers of an analysis.
func summaryView(snap *analysis.Snapshot, sum analysis.Summary) string {
	var b strings.Builder
	line := func(key, value string) {
		b.WriteString(styleKey.Render(key) + " " + value + "\n")
	}

	b.WriteString(StyleTitle.Render(snap.FileName) + StyleDim.Render(" ("+string(snap.Format)+")") + "\n\n")
	line("Packages", StyleValue.Render(strconv.Itoa(sum.TotalPackages)))
	if sum.DirectCount != nil && sum.TransitiveCount != nil {
		line("Dependencies", StyleDim.Render(fmt.Sprintf("%d direct · %d transitive", *sum.DirectCount, *sum.TransitiveCount)))
	}
	line("Vulnerable", StyleValue.Render(strconv.Itoa(sum.PackagesWithVulnerabilities)))

	sevs := make([]string, 0, len(vuln.Severities))
	for _, s := range vuln.Severities {
		sevs = append(sevs, severityStyle(s).Render(fmt.Sprintf("%d %s", sum.SeverityBreakdown[s], strings.ToLower(string(s)))))
	}
	line("Vulnerabilities", StyleValue.Render(strconv.Itoa(sum.TotalVulnerabilities))+StyleDim.Render("  ")+strings.Join(sevs, StyleDim.Render(" · ")))

	dist := sum.RiskDistribution
	line("Risk", riskStyle("green").Render(fmt.Sprintf("%d low", dist.Low))+StyleDim.Render(" · ")+
		riskStyle("yellow").Render(fmt.Sprintf("%d medium", dist.Medium))+StyleDim.Render(" · ")+
		riskStyle("red").Render(fmt.Sprintf("%d high", dist.High)))

	overall := sum.OverallRiskScore
	line("Overall", riskStyle(overall.TrafficLight).Render(fmt.Sprintf("%.1f (%s)", overall.Numeric, overall.Grade)))
	return b.String()
}

// riskTable renders pkgs as a bordered table.
func riskTable(pkgs []analysis.Package, now time.Time) string {
	rows := make([][]string, 0, len(pkgs))
	for i := range pkgs {
		p := &pkgs[i]
		var updated *time.Time
		if p.Health != nil {
			updated = p.Health.LastUpdate
		}
		rows = append(rows, []string{
			p.Name,
			p.Version,
			p.Ecosystem,
			strconv.Itoa(len(p.Vulnerabilities)),
			maintenance(p.Health),
			formatRelativeTime(updated, now),
			formatScore(p),
		})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Package", "Version", "Ecosystem", "Vulns", "Maintenance", "Updated", "Risk").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleHeader.Padding(0, 1)
			}
			base := lipgloss.NewStyle().Padding(0, 1)
			if row < 0 || row >= len(pkgs) {
				return base
			}
			switch col {
			case 3:
				if len(pkgs[row].Vulnerabilities) > 0 {
					return base.Foreground(colorRed)
				}
				return base.Foreground(colorDim)
			case 6:
				light := ""
				if pkgs[row].RiskScore != nil {
					light = pkgs[row].RiskScore.TrafficLight
				}
				return base.Inherit(riskStyle(light))
			case 1, 2, 5:
				return base.Foreground(colorGray)
			}
			return base.Foreground(colorWhite)
		}).
		Render()
}
