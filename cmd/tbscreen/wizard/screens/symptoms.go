package screens

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/karuna-health/tbscreen/cmd/tbscreen/wizard/components"
	"github.com/karuna-health/tbscreen/internal/session"
)

// SymptomsScreen collects the clinical symptom flags.
type SymptomsScreen struct {
	form      *huh.Form
	helpPanel *components.HelpPanel

	cough            bool
	coughDurationStr string
	hemoptysis       bool
	feverNightSweats bool
	weightLoss       bool
	fatigue          bool

	patientName string
	done        bool
	back        bool
	cancelled   bool
	width       int
	height      int
}

// NewSymptomsScreen creates the symptoms step pre-filled from the session.
func NewSymptomsScreen(current session.SymptomSet, patientName string) *SymptomsScreen {
	s := &SymptomsScreen{
		helpPanel:        components.NewHelpPanel(),
		cough:            current.Cough,
		coughDurationStr: strconv.Itoa(current.CoughDurationWeeks),
		hemoptysis:       current.Hemoptysis,
		feverNightSweats: current.FeverNightSweats,
		weightLoss:       current.WeightLoss,
		fatigue:          current.Fatigue,
		patientName:      patientName,
	}

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Key("cough").
				Title("Persistent cough?").
				Value(&s.cough),

			huh.NewInput().
				Key("cough_duration").
				Title("Cough duration (weeks)").
				Description("Ignored unless a cough is reported").
				Value(&s.coughDurationStr).
				Validate(validateWeeks),

			huh.NewConfirm().
				Key("hemoptysis").
				Title("Coughing up blood?").
				Value(&s.hemoptysis),

			huh.NewConfirm().
				Key("fever_night_sweats").
				Title("Fever or night sweats?").
				Value(&s.feverNightSweats),

			huh.NewConfirm().
				Key("weight_loss").
				Title("Unintentional weight loss?").
				Value(&s.weightLoss),

			huh.NewConfirm().
				Key("fatigue").
				Title("Persistent fatigue?").
				Value(&s.fatigue),
		),
	).WithShowHelp(false).WithShowErrors(true)

	return s
}

func validateWeeks(str string) error {
	str = strings.TrimSpace(str)
	if str == "" {
		return nil
	}
	n, err := strconv.Atoi(str)
	if err != nil {
		return fmt.Errorf("enter a whole number of weeks")
	}
	if n < 0 {
		return fmt.Errorf("duration cannot be negative")
	}
	return nil
}

// Init implements tea.Model
func (s *SymptomsScreen) Init() tea.Cmd {
	return s.form.Init()
}

// Update implements tea.Model
func (s *SymptomsScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			s.cancelled = true
			return s, tea.Quit
		case "esc":
			s.back = true
			return s, nil
		}
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height
		s.helpPanel.SetSize(msg.Width/3, msg.Height/2)
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if focused := s.form.GetFocusedField(); focused != nil {
		s.helpPanel.SetField(focused.GetKey())
	}

	if s.form.State == huh.StateCompleted {
		s.done = true
	}

	return s, cmd
}

// View implements tea.Model
func (s *SymptomsScreen) View() string {
	if s.cancelled {
		return "Cancelled.\n"
	}

	title := components.TitleStyle.Render("STEP 2/4 · SYMPTOMS")
	subtitle := components.SubtitleStyle.Render("Patient: " + s.patientName)

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		subtitle,
		s.form.View(),
		"",
		s.helpPanel.View(),
		"",
		"Tab: Next field | Enter: Continue | Esc: Back",
	)
}

// Done returns true if the form was completed
func (s *SymptomsScreen) Done() bool { return s.done }

// Back returns true if the user asked to return to the previous step
func (s *SymptomsScreen) Back() bool { return s.back }

// Cancelled returns true if the user cancelled
func (s *SymptomsScreen) Cancelled() bool { return s.cancelled }

// Patch returns the collected symptom values, including partial entries when
// the user backs out before completing the form.
func (s *SymptomsScreen) Patch() session.SymptomsPatch {
	duration := 0
	if n, err := strconv.Atoi(strings.TrimSpace(s.coughDurationStr)); err == nil && n >= 0 {
		duration = n
	}
	return session.SymptomsPatch{
		Cough:              &s.cough,
		CoughDurationWeeks: &duration,
		Hemoptysis:         &s.hemoptysis,
		FeverNightSweats:   &s.feverNightSweats,
		WeightLoss:         &s.weightLoss,
		Fatigue:            &s.fatigue,
	}
}
