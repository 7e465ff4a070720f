package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/sbomlens/pkg/analysis"
)

var (
	browserDimStyle    = lipgloss.NewStyle().Foreground(colorDim)
	browserDetailStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorDim).
				Padding(0, 1)
)

// browserSorts is the order the "s" key cycles through.
var browserSorts = []string{analysis.SortRisk, analysis.SortVulnerabilities, analysis.SortName, analysis.SortLastUpdate}

// browserLevels is the order the "f" key cycles through; "" shows all.
var browserLevels = []string{"", analysis.RiskHigh, analysis.RiskMedium, analysis.RiskLow}

// =============================================================================
// BrowserModel - Interactive package browser
// =============================================================================

// BrowserModel is the bubbletea model for browsing an analysis.
type BrowserModel struct {
	snap  *analysis.Snapshot
	now   time.Time
	table table.Model
	input textinput.Model

	visible   []analysis.Package
	sortIdx   int
	levelIdx  int
	searching bool
	detail    bool
}

// NewBrowserModel creates a browser over snap, sorted by risk.
func NewBrowserModel(snap *analysis.Snapshot) BrowserModel {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Package", Width: 28},
			{Title: "Version", Width: 12},
			{Title: "Ecosystem", Width: 9},
			{Title: "Vulns", Width: 5},
			{Title: "Maintenance", Width: 12},
			{Title: "Risk", Width: 8},
		}),
		table.WithFocused(true),
		table.WithHeight(15),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.Foreground(colorGray).Bold(true)
	styles.Selected = styles.Selected.Foreground(colorCyan).Bold(true)
	t.SetStyles(styles)

	in := textinput.New()
	in.Placeholder = "search packages"
	in.Prompt = "/ "

	m := BrowserModel{snap: snap, now: time.Now(), table: t, input: in}
	m.refresh()
	return m
}

// refresh recomputes the visible rows from the current query.
func (m *BrowserModel) refresh() {
	q := analysis.PackageQuery{
		Search:    m.input.Value(),
		RiskLevel: browserLevels[m.levelIdx],
		SortBy:    browserSorts[m.sortIdx],
		SortOrder: "desc",
	}
	if q.SortBy == analysis.SortName {
		q.SortOrder = "asc"
	}
	m.visible = analysis.FilterPackages(m.snap.Packages, q)

	rows := make([]table.Row, len(m.visible))
	for i := range m.visible {
		p := &m.visible[i]
		rows[i] = table.Row{p.Name, p.Version, p.Ecosystem, strconv.Itoa(len(p.Vulnerabilities)), maintenance(p.Health), formatScore(p)}
	}
	m.table.SetRows(rows)
	if c := m.table.Cursor(); c >= len(rows) {
		m.table.SetCursor(max(len(rows)-1, 0))
	}
}

// Selected returns the package under the cursor.
func (m BrowserModel) Selected() (*analysis.Package, bool) {
	c := m.table.Cursor()
	if c < 0 || c >= len(m.visible) {
		return nil, false
	}
	return &m.visible[c], true
}

func (m BrowserModel) Init() tea.Cmd {
	return nil
}

func (m BrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.table.SetHeight(max(msg.Height-10, 5))
		return m, nil

	case tea.KeyMsg:
		if m.searching {
			switch msg.String() {
			case "enter", "esc":
				m.searching = false
				m.input.Blur()
				m.table.Focus()
				return m, nil
			}
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			m.refresh()
			return m, cmd
		}

		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.detail {
				m.detail = false
				return m, nil
			}
			return m, tea.Quit
		case "enter":
			m.detail = !m.detail
			return m, nil
		case "/":
			m.searching = true
			m.detail = false
			m.table.Blur()
			return m, m.input.Focus()
		case "s":
			m.sortIdx = (m.sortIdx + 1) % len(browserSorts)
			m.refresh()
			return m, nil
		case "f":
			m.levelIdx = (m.levelIdx + 1) % len(browserLevels)
			m.refresh()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m BrowserModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.snap.FileName))
	level := browserLevels[m.levelIdx]
	if level == "" {
		level = "all"
	}
	b.WriteString(browserDimStyle.Render(fmt.Sprintf("  sort: %s  risk: %s  [%d/%d]",
		browserSorts[m.sortIdx], level, len(m.visible), len(m.snap.Packages))))
	b.WriteString("\n")
	b.WriteString(browserDimStyle.Render("↑/↓ navigate  ⏎ details  / search  s sort  f filter  q quit"))
	b.WriteString("\n\n")

	if m.searching || m.input.Value() != "" {
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}

	if p, ok := m.Selected(); ok && m.detail {
		b.WriteString(packageDetail(p, m.now))
	} else {
		b.WriteString(m.table.View())
	}
	b.WriteString("\n")
	return b.String()
}

// packageDetail renders everything known about p.
func packageDetail(p *analysis.Package, now time.Time) string {
	var b strings.Builder
	line := func(key, value string) {
		b.WriteString(styleKey.Render(key) + " " + value + "\n")
	}

	b.WriteString(StyleTitle.Render(p.Name+"@"+p.Version) + "\n")
	line("Ecosystem", p.Ecosystem)
	line("License", p.License)
	if p.DependencyType != "" {
		line("Dependency", p.DependencyType)
	}
	if p.RiskScore != nil {
		c := p.RiskScore.Components
		line("Risk", riskStyle(p.RiskScore.TrafficLight).Render(formatScore(p)))
		line("", browserDimStyle.Render(fmt.Sprintf("vulnerability %.1f · maintenance %.1f · staleness %.1f · stagnation %.1f",
			c.Vulnerability, c.Maintenance, c.Staleness, c.Stagnation)))
		if len(p.RiskScore.Flags) > 0 {
			line("Flags", StyleWarning.Render(strings.Join(p.RiskScore.Flags, ", ")))
		}
	}

	if h := p.Health; h != nil {
		line("Maintenance", maintenance(h))
		line("Last update", formatRelativeTime(h.LastUpdate, now))
		line("Releases", fmt.Sprintf("%d (%s)", h.TotalReleases, h.UpdateFrequency))
		line("Maintainers", strconv.Itoa(h.MaintainerCount))
		if h.StagnationDetails != nil {
			line("Stagnation", StyleWarning.Render(fmt.Sprintf("dormant %d days before %s",
				h.StagnationDetails.DormantPeriodDays, h.StagnationDetails.RecentUpdateDate.Format("2006-01-02"))))
		}
		if h.RepositoryURL != "" {
			line("Repository", StyleLink.Render(h.RepositoryURL))
		}
	}

	if len(p.Vulnerabilities) > 0 {
		b.WriteString("\n" + styleHeader.Render("Vulnerabilities") + "\n")
		for _, v := range p.Vulnerabilities {
			fix := ""
			if v.FixedVersion != "" {
				fix = browserDimStyle.Render(" fixed in " + v.FixedVersion)
			}
			b.WriteString(fmt.Sprintf("  %s %s %s%s\n", severityStyle(v.Severity).Render(fmt.Sprintf("%-8s", v.Severity)), v.ID, v.Summary, fix))
		}
	}
	return browserDetailStyle.Render(strings.TrimRight(b.String(), "\n"))
}
