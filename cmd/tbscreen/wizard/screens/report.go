package screens

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/karuna-health/tbscreen/cmd/tbscreen/wizard/components"
	"github.com/karuna-health/tbscreen/internal/report"
)

var (
	gaugeFilledStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("63"))

	gaugeEmptyStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("240"))

	gaugePercentStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("63")).
		Bold(true)

	panelLabelStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("244"))

	panelValueStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("252"))

	reportHintStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("244")).
		Italic(true)
)

// ReportScreen displays the rendered diagnosis report.
type ReportScreen struct {
	view       report.View
	newSession bool
	done       bool
	width      int
	height     int
}

// NewReportScreen creates the report screen for a rendered view.
func NewReportScreen(view report.View) *ReportScreen {
	return &ReportScreen{view: view}
}

// Init implements tea.Model
func (s *ReportScreen) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (s *ReportScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "n":
			s.newSession = true
			return s, nil
		case "ctrl+c", "esc", "enter", "q":
			s.done = true
			return s, tea.Quit
		}
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height
	}

	return s, nil
}

// View implements tea.Model
func (s *ReportScreen) View() string {
	var sb strings.Builder

	banner := components.BannerStyle(s.view.Theme).Render(s.view.Title)
	sb.WriteString(banner)
	sb.WriteString("\n\n")

	sb.WriteString(panelValueStyle.Render(s.view.PatientLine))
	sb.WriteString("\n\n")

	sb.WriteString(panelLabelStyle.Render("Overall risk   "))
	sb.WriteString(renderGauge(s.view.Risk))
	sb.WriteString("\n\n")

	sb.WriteString(s.renderClinical())
	sb.WriteString(s.renderRadiology())
	sb.WriteString(s.renderFusion())

	if s.view.Explanation != "" {
		sb.WriteString(components.TitleStyle.Render("Confidence"))
		sb.WriteString("\n  ")
		sb.WriteString(panelValueStyle.Render(s.view.Explanation))
		sb.WriteString("\n\n")
	}

	if len(s.view.Actions) > 0 {
		sb.WriteString(components.TitleStyle.Render("Recommended actions"))
		sb.WriteString("\n")
		for i, action := range s.view.Actions {
			sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, panelValueStyle.Render(action)))
		}
		sb.WriteString("\n")
	}

	sb.WriteString(reportHintStyle.Render("n: New session | q or Enter: Exit"))

	return sb.String()
}

func (s *ReportScreen) renderClinical() string {
	var sb strings.Builder
	sb.WriteString(components.TitleStyle.Render("Clinical analysis"))
	sb.WriteString("\n")

	if !s.view.Clinical.Present {
		sb.WriteString("  " + panelLabelStyle.Render("Not available for this assessment.") + "\n\n")
		return sb.String()
	}

	sb.WriteString("  " + panelLabelStyle.Render("Probability ") + renderGauge(s.view.Clinical.Probability) + "\n")
	sb.WriteString("  " + panelLabelStyle.Render("Confidence  ") + renderGauge(s.view.Clinical.Confidence) + "\n")
	for _, f := range s.view.Clinical.Findings {
		sb.WriteString("  • " + panelValueStyle.Render(f) + "\n")
	}
	sb.WriteString("\n")
	return sb.String()
}

func (s *ReportScreen) renderRadiology() string {
	var sb strings.Builder
	sb.WriteString(components.TitleStyle.Render("Radiology analysis"))
	sb.WriteString("\n")

	if !s.view.Radiology.Present {
		sb.WriteString("  " + panelLabelStyle.Render("No image was submitted.") + "\n\n")
		return sb.String()
	}

	sb.WriteString("  " + panelLabelStyle.Render("Probability ") + renderGauge(s.view.Radiology.Probability) + "\n")
	for _, f := range s.view.Radiology.Findings {
		sb.WriteString("  • " + panelValueStyle.Render(f) + "\n")
	}
	for _, seg := range s.view.Radiology.Segments {
		sb.WriteString(fmt.Sprintf("  %s %s\n",
			panelLabelStyle.Render(fmt.Sprintf("%-16s", seg.Name)),
			renderGauge(seg.Value)))
	}
	sb.WriteString("\n")
	return sb.String()
}

func (s *ReportScreen) renderFusion() string {
	if !s.view.Fusion.Present {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(components.TitleStyle.Render("Stream agreement"))
	sb.WriteString("\n")
	sb.WriteString("  " + renderGauge(s.view.Fusion.Agreement) + "\n\n")
	return sb.String()
}

// renderGauge draws a compact bar like [████░░░░░░] 42%.
func renderGauge(g report.Gauge) string {
	if !g.Known {
		return panelLabelStyle.Render("n/a")
	}

	const width = 20
	filled := g.Percent * width / 100
	if filled > width {
		filled = width
	}
	bar := gaugeFilledStyle.Render("["+strings.Repeat("█", filled)) +
		gaugeEmptyStyle.Render(strings.Repeat("░", width-filled)+"]")

	return bar + " " + gaugePercentStyle.Render(fmt.Sprintf("%d%%", g.Percent))
}

// Done returns true if the user is finished
func (s *ReportScreen) Done() bool { return s.done }

// NewSession returns true if the user asked to start a fresh assessment
func (s *ReportScreen) NewSession() bool { return s.newSession }
