// Package wizard drives the four-step screening session: patient, symptoms,
// vitals, imaging, then submission and report.
package wizard

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/karuna-health/tbscreen/cmd/tbscreen/wizard/screens"
	"github.com/karuna-health/tbscreen/internal/diagnose"
	"github.com/karuna-health/tbscreen/internal/logging"
	"github.com/karuna-health/tbscreen/internal/report"
	"github.com/karuna-health/tbscreen/internal/session"
)

// Phase represents the current phase/screen of the wizard.
type Phase int

const (
	PhasePatient Phase = iota
	PhaseSymptoms
	PhaseVitals
	PhaseImaging
	PhaseSubmitting
	PhaseReport
	PhaseFailure
	PhaseDegraded
	PhaseError
)

// Service is the diagnosis backend the wizard talks to.
type Service interface {
	screens.PatientLister
	Diagnose(ctx context.Context, sub *diagnose.SubmissionRequest) (*diagnose.Result, error)
}

// Options configures a wizard run.
type Options struct {
	Config Config

	// Carried selects the patient up front, skipping the selection step.
	Carried *session.PatientRef

	// Result renders a saved diagnosis with no session behind it. The wizard
	// opens on the degraded notice and then falls through to a fresh session.
	Result *diagnose.Result
}

// Wizard is the main orchestrator for the screening session.
type Wizard struct {
	store    *session.Store
	service  Service
	renderer *report.Renderer
	log      *zap.Logger

	phase   Phase
	timeout time.Duration

	// Screen instances
	patientScreen    *screens.PatientScreen
	symptomsScreen   *screens.SymptomsScreen
	vitalsScreen     *screens.VitalsScreen
	imagingScreen    *screens.ImagingScreen
	submittingScreen *screens.SubmittingScreen
	reportScreen     *screens.ReportScreen
	failureScreen    *screens.FailureScreen
	degradedScreen   *screens.DegradedScreen
	errorScreen      *screens.ErrorScreen

	// Window size
	width  int
	height int

	// Final state
	cancelled bool
	finished  bool
	err       error
}

// NewWizard creates a wizard against the given service.
func NewWizard(service Service, log *zap.Logger, opts Options) *Wizard {
	if log == nil {
		log = zap.NewNop()
	}

	timeout := time.Duration(opts.Config.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	w := &Wizard{
		store:    session.NewStore(),
		service:  service,
		renderer: report.NewRenderer(log),
		log:      log,
		timeout:  timeout,
	}

	switch {
	case opts.Result != nil:
		// A bare result has no session to pair with.
		corr := diagnose.Correlate(opts.Result, nil)
		w.phase = PhaseDegraded
		w.degradedScreen = screens.NewDegradedScreen(corr.Reason)
	case opts.Carried != nil && w.store.SetPatient(*opts.Carried) == nil:
		w.log.Info("patient carried into session", zap.Int("patient_id", opts.Carried.ID))
		w.transitionToSymptoms()
	default:
		w.transitionToPatient()
	}

	return w
}

// Init implements tea.Model.
func (w *Wizard) Init() tea.Cmd {
	switch w.phase {
	case PhaseSymptoms:
		return w.symptomsScreen.Init()
	case PhaseDegraded:
		return w.degradedScreen.Init()
	default:
		return w.patientScreen.Init()
	}
}

// Update implements tea.Model.
func (w *Wizard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Handle window size for all phases
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		w.width = wsm.Width
		w.height = wsm.Height
	}

	switch w.phase {
	case PhasePatient:
		return w.updatePatient(msg)
	case PhaseSymptoms:
		return w.updateSymptoms(msg)
	case PhaseVitals:
		return w.updateVitals(msg)
	case PhaseImaging:
		return w.updateImaging(msg)
	case PhaseSubmitting:
		return w.updateSubmitting(msg)
	case PhaseReport:
		return w.updateReport(msg)
	case PhaseFailure:
		return w.updateFailure(msg)
	case PhaseDegraded:
		return w.updateDegraded(msg)
	case PhaseError:
		return w.updateError(msg)
	}

	return w, nil
}

// View implements tea.Model.
func (w *Wizard) View() string {
	switch w.phase {
	case PhasePatient:
		return w.patientScreen.View()
	case PhaseSymptoms:
		return w.symptomsScreen.View()
	case PhaseVitals:
		return w.vitalsScreen.View()
	case PhaseImaging:
		return w.imagingScreen.View()
	case PhaseSubmitting:
		return w.submittingScreen.View()
	case PhaseReport:
		return w.reportScreen.View()
	case PhaseFailure:
		return w.failureScreen.View()
	case PhaseDegraded:
		return w.degradedScreen.View()
	case PhaseError:
		return w.errorScreen.View()
	}

	return ""
}

// transitionToPatient opens the patient selection step.
func (w *Wizard) transitionToPatient() {
	w.phase = PhasePatient
	w.patientScreen = screens.NewPatientScreen(w.service)
}

// transitionToSymptoms opens the symptoms step. Refuses to advance without a
// selected patient.
func (w *Wizard) transitionToSymptoms() {
	patient := w.store.Patient()
	if patient == nil {
		w.log.Warn("symptoms step requested without a patient, staying on selection")
		w.transitionToPatient()
		return
	}
	w.phase = PhaseSymptoms
	w.symptomsScreen = screens.NewSymptomsScreen(w.store.Assessment().Symptoms, patient.FullName)
}

// transitionToVitals opens the vitals step.
func (w *Wizard) transitionToVitals() {
	w.phase = PhaseVitals
	w.vitalsScreen = screens.NewVitalsScreen(w.store.Assessment().Vitals, w.store.Patient().FullName)
}

// transitionToImaging opens the imaging step.
func (w *Wizard) transitionToImaging() {
	w.phase = PhaseImaging
	w.imagingScreen = screens.NewImagingScreen(w.store.Assessment().Image, w.store.Patient().FullName)
}

// updatePatient handles updates in the patient selection phase.
func (w *Wizard) updatePatient(msg tea.Msg) (tea.Model, tea.Cmd) {
	model, cmd := w.patientScreen.Update(msg)
	if ps, ok := model.(*screens.PatientScreen); ok {
		w.patientScreen = ps
	}

	if w.patientScreen.Cancelled() {
		w.cancelled = true
		return w, tea.Quit
	}

	if w.patientScreen.Done() {
		if err := w.store.SetPatient(w.patientScreen.Selected()); err != nil {
			w.log.Error("registry returned an unusable patient record", zap.Error(err))
			return w.transitionToError(err)
		}
		w.transitionToSymptoms()
		return w, w.symptomsScreen.Init()
	}

	return w, cmd
}

// updateSymptoms handles updates in the symptoms phase.
func (w *Wizard) updateSymptoms(msg tea.Msg) (tea.Model, tea.Cmd) {
	model, cmd := w.symptomsScreen.Update(msg)
	if ss, ok := model.(*screens.SymptomsScreen); ok {
		w.symptomsScreen = ss
	}

	if w.symptomsScreen.Cancelled() {
		w.cancelled = true
		return w, tea.Quit
	}

	if w.symptomsScreen.Back() {
		// Keep what was entered so far; back is never destructive.
		w.store.UpdateSymptoms(w.symptomsScreen.Patch())
		w.transitionToPatient()
		return w, w.patientScreen.Init()
	}

	if w.symptomsScreen.Done() {
		w.store.UpdateSymptoms(w.symptomsScreen.Patch())
		w.transitionToVitals()
		return w, w.vitalsScreen.Init()
	}

	return w, cmd
}

// updateVitals handles updates in the vitals phase.
func (w *Wizard) updateVitals(msg tea.Msg) (tea.Model, tea.Cmd) {
	model, cmd := w.vitalsScreen.Update(msg)
	if vs, ok := model.(*screens.VitalsScreen); ok {
		w.vitalsScreen = vs
	}

	if w.vitalsScreen.Cancelled() {
		w.cancelled = true
		return w, tea.Quit
	}

	if w.vitalsScreen.Back() {
		if err := w.store.UpdateVitals(w.vitalsScreen.Patch()); err != nil {
			// Partial entries can be out of range; stored values survive.
			w.log.Debug("vitals patch rejected on back navigation", zap.Error(err))
		}
		w.transitionToSymptoms()
		return w, w.symptomsScreen.Init()
	}

	if w.vitalsScreen.Done() {
		if err := w.store.UpdateVitals(w.vitalsScreen.Patch()); err != nil {
			// Field validators should have caught this.
			w.log.Error("completed vitals form failed range checks", zap.Error(err))
			return w.transitionToError(err)
		}
		w.transitionToImaging()
		return w, w.imagingScreen.Init()
	}

	return w, cmd
}

// updateImaging handles updates in the imaging phase.
func (w *Wizard) updateImaging(msg tea.Msg) (tea.Model, tea.Cmd) {
	model, cmd := w.imagingScreen.Update(msg)
	if is, ok := model.(*screens.ImagingScreen); ok {
		w.imagingScreen = is
	}

	if w.imagingScreen.Cancelled() {
		w.cancelled = true
		return w, tea.Quit
	}

	if w.imagingScreen.Back() {
		if err := w.store.SetImage(w.imagingScreen.Attachment()); err != nil {
			w.log.Warn("could not store attachment on back navigation", zap.Error(err))
		}
		w.transitionToVitals()
		return w, w.vitalsScreen.Init()
	}

	if w.imagingScreen.Done() {
		if err := w.store.SetImage(w.imagingScreen.Attachment()); err != nil {
			return w.transitionToError(err)
		}
		return w.startSubmission()
	}

	return w, cmd
}

// startSubmission assembles the session and posts it in the background.
func (w *Wizard) startSubmission() (tea.Model, tea.Cmd) {
	w.phase = PhaseSubmitting
	w.submittingScreen = screens.NewSubmittingScreen()

	submit := func() tea.Msg {
		req, err := diagnose.Assemble(w.store.Assessment())
		if err != nil {
			return screens.SubmitErrMsg{Err: err}
		}

		ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
		defer cancel()

		result, err := w.service.Diagnose(ctx, req)
		if err != nil {
			return screens.SubmitErrMsg{Err: err}
		}
		return screens.DiagnosisMsg{Result: result}
	}

	return w, tea.Batch(w.submittingScreen.Init(), submit)
}

// updateSubmitting handles updates while the analysis runs.
func (w *Wizard) updateSubmitting(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case screens.DiagnosisMsg:
		return w.completeSubmission(msg.Result)

	case screens.SubmitErrMsg:
		// Session stays intact for retry.
		w.log.Warn("submission failed", zap.Error(msg.Err))
		w.phase = PhaseFailure
		w.failureScreen = screens.NewFailureScreen(msg.Err)
		return w, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			w.cancelled = true
			return w, tea.Quit
		}
	}

	model, cmd := w.submittingScreen.Update(msg)
	if ss, ok := model.(*screens.SubmittingScreen); ok {
		w.submittingScreen = ss
	}

	return w, cmd
}

// completeSubmission correlates the result with the session and shows the
// report, or the degraded notice when the pairing is impossible.
func (w *Wizard) completeSubmission(result *diagnose.Result) (tea.Model, tea.Cmd) {
	corr := diagnose.Correlate(result, w.store.Patient())
	if corr.Degraded {
		w.log.Warn("diagnosis could not be paired with the session",
			zap.String("reason", corr.Reason))
		w.phase = PhaseDegraded
		w.degradedScreen = screens.NewDegradedScreen(corr.Reason)
		return w, w.degradedScreen.Init()
	}

	view := w.renderer.Render(corr.Session)
	w.phase = PhaseReport
	w.reportScreen = screens.NewReportScreen(view)
	return w, w.reportScreen.Init()
}

// updateReport handles updates in the report phase.
func (w *Wizard) updateReport(msg tea.Msg) (tea.Model, tea.Cmd) {
	model, cmd := w.reportScreen.Update(msg)
	if rs, ok := model.(*screens.ReportScreen); ok {
		w.reportScreen = rs
	}

	if w.reportScreen.NewSession() {
		if err := w.store.Reset(); err != nil {
			w.log.Warn("session reset left residue", zap.Error(err))
		}
		w.transitionToPatient()
		return w, w.patientScreen.Init()
	}

	if w.reportScreen.Done() {
		w.finished = true
		return w, tea.Quit
	}

	return w, cmd
}

// updateFailure handles updates after a failed submission.
func (w *Wizard) updateFailure(msg tea.Msg) (tea.Model, tea.Cmd) {
	model, cmd := w.failureScreen.Update(msg)
	if fs, ok := model.(*screens.FailureScreen); ok {
		w.failureScreen = fs
	}

	if w.failureScreen.Cancelled() {
		w.cancelled = true
		return w, tea.Quit
	}

	if w.failureScreen.Retry() {
		// Back to imaging with everything still in place.
		w.transitionToImaging()
		return w, w.imagingScreen.Init()
	}

	return w, cmd
}

// updateDegraded handles updates on the degraded notice.
func (w *Wizard) updateDegraded(msg tea.Msg) (tea.Model, tea.Cmd) {
	if _, ok := msg.(screens.ReturnToStartMsg); ok {
		if err := w.store.Reset(); err != nil {
			w.log.Warn("session reset left residue", zap.Error(err))
		}
		w.transitionToPatient()
		return w, w.patientScreen.Init()
	}

	model, cmd := w.degradedScreen.Update(msg)
	if ds, ok := model.(*screens.DegradedScreen); ok {
		w.degradedScreen = ds
	}

	if w.degradedScreen.Cancelled() {
		w.cancelled = true
		return w, tea.Quit
	}

	return w, cmd
}

// transitionToError shows an unrecoverable error.
func (w *Wizard) transitionToError(err error) (tea.Model, tea.Cmd) {
	w.err = err
	w.phase = PhaseError
	w.errorScreen = screens.NewErrorScreen(err)
	return w, nil
}

// updateError handles updates in the error phase.
func (w *Wizard) updateError(msg tea.Msg) (tea.Model, tea.Cmd) {
	model, cmd := w.errorScreen.Update(msg)
	if es, ok := model.(*screens.ErrorScreen); ok {
		w.errorScreen = es
	}

	if w.errorScreen.Done() {
		w.finished = true
		return w, tea.Quit
	}

	return w, cmd
}

// Run starts the interactive screening session.
func Run(opts Options) error {
	log, err := logging.New(opts.Config.LogFile)
	if err != nil {
		return err
	}
	defer log.Sync()

	client := diagnose.NewClient(
		opts.Config.Server,
		opts.Config.Token,
		time.Duration(opts.Config.TimeoutSeconds)*time.Second,
		log,
	)

	wizard := NewWizard(client, log, opts)
	p := tea.NewProgram(wizard, tea.WithAltScreen())

	finalModel, err := p.Run()
	if err != nil {
		return fmt.Errorf("running wizard: %w", err)
	}

	// Check final state
	if w, ok := finalModel.(*Wizard); ok {
		// Always release the preview handle on the way out.
		if resetErr := w.store.Reset(); resetErr != nil {
			log.Warn("could not release session resources", zap.Error(resetErr))
		}
		if w.cancelled {
			return nil // User cancelled, not an error
		}
		if w.err != nil {
			return w.err
		}
	}

	return nil
}
