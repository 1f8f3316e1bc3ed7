package screens

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/karuna-health/tbscreen/cmd/tbscreen/wizard/components"
)

var (
	failureTitleStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("196")).
		Bold(true)

	failureMessageStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("252"))

	failureHintStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("244")).
		Italic(true)
)

// FailureScreen is shown when a submission fails. The session is kept so the
// operator can retry without re-entering anything.
type FailureScreen struct {
	err       error
	retry     bool
	cancelled bool
	width     int
	height    int
}

// NewFailureScreen creates the submission failure screen.
func NewFailureScreen(err error) *FailureScreen {
	return &FailureScreen{err: err}
}

// Init implements tea.Model
func (s *FailureScreen) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (s *FailureScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter", "r":
			s.retry = true
			return s, nil
		case "ctrl+c", "esc", "q":
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
func (s *FailureScreen) View() string {
	var sb strings.Builder

	sb.WriteString(failureTitleStyle.Render("✗ Analysis failed. Please try again."))
	sb.WriteString("\n\n")

	sb.WriteString(components.TitleStyle.Render("Error:"))
	sb.WriteString("\n  ")
	sb.WriteString(failureMessageStyle.Render(s.err.Error()))
	sb.WriteString("\n\n")

	sb.WriteString(failureHintStyle.Render("Enter: Retry (your entries are kept) | q: Quit"))

	return sb.String()
}

// Retry returns true if the user asked to resubmit
func (s *FailureScreen) Retry() bool { return s.retry }

// Cancelled returns true if the user cancelled
func (s *FailureScreen) Cancelled() bool { return s.cancelled }

// Error returns the submission error
func (s *FailureScreen) Error() error { return s.err }
