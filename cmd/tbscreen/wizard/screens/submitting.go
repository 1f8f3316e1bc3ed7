package screens

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/karuna-health/tbscreen/cmd/tbscreen/wizard/components"
	"github.com/karuna-health/tbscreen/internal/diagnose"
)

// DiagnosisMsg carries a successful diagnosis result back to the wizard.
type DiagnosisMsg struct {
	Result *diagnose.Result
}

// SubmitErrMsg is sent when the submission fails.
type SubmitErrMsg struct {
	Err error
}

var submittingHintStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("244")).
	Italic(true)

// SubmittingScreen shows a spinner while the analysis runs.
type SubmittingScreen struct {
	spinner   spinner.Model
	startTime time.Time
	width     int
	height    int
}

// NewSubmittingScreen creates the submission wait screen.
func NewSubmittingScreen() *SubmittingScreen {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))

	return &SubmittingScreen{
		spinner:   sp,
		startTime: time.Now(),
	}
}

// Init implements tea.Model
func (s *SubmittingScreen) Init() tea.Cmd {
	return s.spinner.Tick
}

// Update implements tea.Model
func (s *SubmittingScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height
	case spinner.TickMsg:
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd
	}

	return s, nil
}

// View implements tea.Model
func (s *SubmittingScreen) View() string {
	title := components.TitleStyle.Render("Analyzing assessment...")
	elapsed := submittingHintStyle.Render(
		"Running clinical and radiology analysis. This can take a moment.")

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		s.spinner.View()+" Submitting to diagnosis service",
		"",
		elapsed,
	)
}
