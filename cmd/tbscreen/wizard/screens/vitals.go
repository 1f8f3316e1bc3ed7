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

// VitalsScreen collects the vital sign measurements.
type VitalsScreen struct {
	form      *huh.Form
	helpPanel *components.HelpPanel

	tempStr string
	spo2Str string
	hrStr   string
	bp      string

	patientName string
	done        bool
	back        bool
	cancelled   bool
	width       int
	height      int
}

// NewVitalsScreen creates the vitals step pre-filled from the session.
func NewVitalsScreen(current session.VitalSigns, patientName string) *VitalsScreen {
	s := &VitalsScreen{
		helpPanel:   components.NewHelpPanel(),
		tempStr:     strconv.FormatFloat(current.Temperature, 'f', -1, 64),
		spo2Str:     strconv.Itoa(current.SpO2),
		hrStr:       strconv.Itoa(current.HeartRate),
		bp:          current.BloodPressure,
		patientName: patientName,
	}

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("temperature").
				Title("Temperature (°F)").
				Value(&s.tempStr).
				Validate(validateTemperature),

			huh.NewInput().
				Key("spo2").
				Title("SpO2 (%)").
				Description("Oxygen saturation, 0-100").
				Value(&s.spo2Str).
				Validate(validateSpO2),

			huh.NewInput().
				Key("heart_rate").
				Title("Heart rate (bpm)").
				Value(&s.hrStr).
				Validate(validateHeartRate),

			huh.NewInput().
				Key("blood_pressure").
				Title("Blood pressure").
				Description("systolic/diastolic, e.g. 120/80").
				Value(&s.bp),
		),
	).WithShowHelp(false).WithShowErrors(true)

	return s
}

func validateTemperature(str string) error {
	f, err := strconv.ParseFloat(strings.TrimSpace(str), 64)
	if err != nil {
		return fmt.Errorf("enter a number")
	}
	if f <= 0 {
		return fmt.Errorf("temperature must be positive")
	}
	return nil
}

func validateSpO2(str string) error {
	n, err := strconv.Atoi(strings.TrimSpace(str))
	if err != nil {
		return fmt.Errorf("enter a whole number")
	}
	if n < 0 || n > 100 {
		return fmt.Errorf("SpO2 must be between 0 and 100")
	}
	return nil
}

func validateHeartRate(str string) error {
	n, err := strconv.Atoi(strings.TrimSpace(str))
	if err != nil {
		return fmt.Errorf("enter a whole number")
	}
	if n <= 0 {
		return fmt.Errorf("heart rate must be positive")
	}
	return nil
}

// Init implements tea.Model
func (s *VitalsScreen) Init() tea.Cmd {
	return s.form.Init()
}

// Update implements tea.Model
func (s *VitalsScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
func (s *VitalsScreen) View() string {
	if s.cancelled {
		return "Cancelled.\n"
	}

	title := components.TitleStyle.Render("STEP 3/4 · VITALS")
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
func (s *VitalsScreen) Done() bool { return s.done }

// Back returns true if the user asked to return to the previous step
func (s *VitalsScreen) Back() bool { return s.back }

// Cancelled returns true if the user cancelled
func (s *VitalsScreen) Cancelled() bool { return s.cancelled }

// Patch returns the collected vital values. Fields that fail to parse are
// left nil so the stored value survives.
func (s *VitalsScreen) Patch() session.VitalsPatch {
	var p session.VitalsPatch
	if f, err := strconv.ParseFloat(strings.TrimSpace(s.tempStr), 64); err == nil {
		p.Temperature = &f
	}
	if n, err := strconv.Atoi(strings.TrimSpace(s.spo2Str)); err == nil {
		p.SpO2 = &n
	}
	if n, err := strconv.Atoi(strings.TrimSpace(s.hrStr)); err == nil {
		p.HeartRate = &n
	}
	bp := strings.TrimSpace(s.bp)
	p.BloodPressure = &bp
	return p
}
