package screens

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/karuna-health/tbscreen/cmd/tbscreen/wizard/components"
	"github.com/karuna-health/tbscreen/internal/session"
)

// PatientLister fetches the registry records offered for selection.
type PatientLister interface {
	ListPatients(ctx context.Context) ([]session.PatientRef, error)
}

// PatientsLoadedMsg carries the fetched registry list.
type PatientsLoadedMsg struct {
	Patients []session.PatientRef
}

// PatientsErrMsg is sent when the registry fetch fails.
type PatientsErrMsg struct {
	Err error
}

// PatientScreen selects the patient for this session from the registry.
type PatientScreen struct {
	lister    PatientLister
	form      *huh.Form
	patients  []session.PatientRef
	selected  int
	loadErr   error
	loading   bool
	done      bool
	cancelled bool
	width     int
	height    int
}

// NewPatientScreen creates the patient selection screen. The registry list is
// fetched asynchronously on Init.
func NewPatientScreen(lister PatientLister) *PatientScreen {
	return &PatientScreen{
		lister:  lister,
		loading: true,
	}
}

// Init implements tea.Model
func (s *PatientScreen) Init() tea.Cmd {
	return s.fetchPatients()
}

func (s *PatientScreen) fetchPatients() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		patients, err := s.lister.ListPatients(ctx)
		if err != nil {
			return PatientsErrMsg{Err: err}
		}
		return PatientsLoadedMsg{Patients: patients}
	}
}

func (s *PatientScreen) buildForm() {
	options := make([]huh.Option[int], 0, len(s.patients))
	for i, p := range s.patients {
		label := p.FullName
		if p.Contact != "" {
			label = fmt.Sprintf("%s (%s)", p.FullName, p.Contact)
		}
		options = append(options, huh.NewOption(label, i))
	}

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int]().
				Key("patient").
				Title("Select Patient").
				Description("Records from the clinic registry").
				Options(options...).
				Value(&s.selected),
		),
	).WithShowHelp(false)
}

// Update implements tea.Model
func (s *PatientScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			s.cancelled = true
			return s, tea.Quit
		case "r":
			if s.loadErr != nil || (!s.loading && len(s.patients) == 0) {
				s.loading = true
				s.loadErr = nil
				return s, s.fetchPatients()
			}
		}
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height
	case PatientsLoadedMsg:
		s.loading = false
		s.patients = msg.Patients
		if len(s.patients) > 0 {
			s.buildForm()
			return s, s.form.Init()
		}
		return s, nil
	case PatientsErrMsg:
		s.loading = false
		s.loadErr = msg.Err
		return s, nil
	}

	if s.form == nil {
		return s, nil
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.done = true
	}

	return s, cmd
}

// View implements tea.Model
func (s *PatientScreen) View() string {
	if s.cancelled {
		return "Cancelled.\n"
	}

	title := components.TitleStyle.Render("STEP 1/4 · PATIENT")

	var body string
	switch {
	case s.loading:
		body = "Loading patient registry..."
	case s.loadErr != nil:
		body = fmt.Sprintf("Could not load patients: %v\n\nr: Retry | Esc: Quit", s.loadErr)
	case len(s.patients) == 0:
		body = "No patients in the registry.\n\nr: Retry | Esc: Quit"
	default:
		body = lipgloss.JoinVertical(lipgloss.Left,
			s.form.View(),
			"",
			"Enter: Select | Esc: Quit",
		)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		body,
	)
}

// Done returns true if a patient was selected
func (s *PatientScreen) Done() bool { return s.done }

// Cancelled returns true if the user cancelled
func (s *PatientScreen) Cancelled() bool { return s.cancelled }

// Selected returns the chosen patient record
func (s *PatientScreen) Selected() session.PatientRef {
	if s.selected < 0 || s.selected >= len(s.patients) {
		return session.PatientRef{}
	}
	return s.patients[s.selected]
}
