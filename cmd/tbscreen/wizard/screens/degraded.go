package screens

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/karuna-health/tbscreen/cmd/tbscreen/wizard/components"
)

// DegradedReturnDelay is how long the degraded notice stays before the
// wizard returns to patient selection on its own.
const DegradedReturnDelay = 3 * time.Second

// ReturnToStartMsg asks the wizard to go back to patient selection.
type ReturnToStartMsg struct{}

var (
	degradedTitleStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("214")).
		Bold(true)

	degradedMessageStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("252"))

	degradedHintStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("244")).
		Italic(true)
)

// DegradedScreen is shown when a result cannot be paired with a session. It
// never guesses a patient; it explains and sends the wizard back to the start.
type DegradedScreen struct {
	reason    string
	cancelled bool
	width     int
	height    int
}

// NewDegradedScreen creates the degraded notice screen.
func NewDegradedScreen(reason string) *DegradedScreen {
	return &DegradedScreen{reason: reason}
}

// Init implements tea.Model
func (s *DegradedScreen) Init() tea.Cmd {
	return tea.Tick(DegradedReturnDelay, func(time.Time) tea.Msg {
		return ReturnToStartMsg{}
	})
}

// Update implements tea.Model
func (s *DegradedScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			return s, func() tea.Msg { return ReturnToStartMsg{} }
		case "ctrl+c", "q":
			s.cancelled = true
			return s, tea.Quit
		}
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height
	}

	return s, nil
}

// View implements tea.Model
func (s *DegradedScreen) View() string {
	var sb strings.Builder

	sb.WriteString(degradedTitleStyle.Render("⚠ Result cannot be displayed"))
	sb.WriteString("\n\n")

	sb.WriteString(components.TitleStyle.Render("Reason:"))
	sb.WriteString("\n  ")
	sb.WriteString(degradedMessageStyle.Render(s.reason))
	sb.WriteString("\n\n")

	sb.WriteString(degradedHintStyle.Render("Returning to patient selection... (Enter to go now)"))

	return sb.String()
}

// Cancelled returns true if the user cancelled
func (s *DegradedScreen) Cancelled() bool { return s.cancelled }
