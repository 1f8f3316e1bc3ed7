package screens

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/karuna-health/tbscreen/cmd/tbscreen/wizard/components"
	"github.com/karuna-health/tbscreen/internal/imaging"
	"github.com/karuna-health/tbscreen/internal/session"
)

// ImagingScreen attaches an optional chest radiograph. Completing the form
// here submits the assessment.
type ImagingScreen struct {
	form      *huh.Form
	helpPanel *components.HelpPanel

	path       string
	attachment *session.Attachment

	patientName string
	done        bool
	back        bool
	cancelled   bool
	width       int
	height      int
}

// NewImagingScreen creates the imaging step.
func NewImagingScreen(current *session.Attachment, patientName string) *ImagingScreen {
	s := &ImagingScreen{
		helpPanel:   components.NewHelpPanel(),
		attachment:  current,
		patientName: patientName,
	}
	if current != nil {
		s.path = current.Filename
	}

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("image_path").
				Title("Chest image path").
				Description("DICOM, PNG, or JPEG. Leave empty to skip.").
				Value(&s.path).
				Validate(s.validatePath),
		),
	).WithShowHelp(false).WithShowErrors(true)

	return s
}

// validatePath loads the image eagerly so a bad path blocks submission at
// the field, not after. The loaded attachment is stashed for Attachment().
func (s *ImagingScreen) validatePath(str string) error {
	str = strings.TrimSpace(str)
	if str == "" {
		s.releaseStash()
		return nil
	}
	if s.attachment != nil && s.attachment.Filename == str {
		return nil // unchanged, keep the loaded attachment
	}

	att, err := imaging.Load(str)
	if err != nil {
		return err
	}
	s.releaseStash()
	s.attachment = att
	return nil
}

func (s *ImagingScreen) releaseStash() {
	if s.attachment != nil {
		s.attachment.Preview.Release()
		s.attachment = nil
	}
}

// Init implements tea.Model
func (s *ImagingScreen) Init() tea.Cmd {
	return s.form.Init()
}

// Update implements tea.Model
func (s *ImagingScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
func (s *ImagingScreen) View() string {
	if s.cancelled {
		return "Cancelled.\n"
	}

	title := components.TitleStyle.Render("STEP 4/4 · IMAGING")
	subtitle := components.SubtitleStyle.Render("Patient: " + s.patientName)

	var attached string
	if s.attachment != nil {
		attached = components.SubtitleStyle.Render(
			"Attached: " + s.attachment.Filename + " (preview: " + s.attachment.Preview.Path + ")")
	} else {
		attached = components.SubtitleStyle.Render("No image attached (clinical-only assessment)")
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		subtitle,
		s.form.View(),
		"",
		attached,
		"",
		s.helpPanel.View(),
		"",
		"Enter: Submit for analysis | Esc: Back",
	)
}

// Done returns true if the form was completed
func (s *ImagingScreen) Done() bool { return s.done }

// Back returns true if the user asked to return to the previous step
func (s *ImagingScreen) Back() bool { return s.back }

// Cancelled returns true if the user cancelled
func (s *ImagingScreen) Cancelled() bool { return s.cancelled }

// Attachment returns the loaded image, or nil when the step was skipped.
func (s *ImagingScreen) Attachment() *session.Attachment {
	if strings.TrimSpace(s.path) == "" {
		return nil
	}
	return s.attachment
}
