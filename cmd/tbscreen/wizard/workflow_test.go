package wizard

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cucumber/godog"

	"github.com/karuna-health/tbscreen/cmd/tbscreen/wizard/screens"
	"github.com/karuna-health/tbscreen/internal/diagnose"
	"github.com/karuna-health/tbscreen/internal/report"
	"github.com/karuna-health/tbscreen/internal/session"
)

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}

// workflowContext holds state for a single scenario
type workflowContext struct {
	server *httptest.Server
	store  *session.Store

	serviceResult      diagnose.Result
	capturedPatientID  string
	capturedHadFile    bool
	submissionErr      error
	submissionResponse *diagnose.Result

	correlation diagnose.Correlation
	view        report.View
}

func InitializeScenario(sc *godog.ScenarioContext) {
	wc := &workflowContext{}

	sc.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		wc.store = session.NewStore()
		return ctx, nil
	})

	sc.After(func(ctx context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if wc.server != nil {
			wc.server.Close()
			wc.server = nil
		}
		return ctx, wc.store.Reset()
	})

	sc.Step(`^the diagnosis service will answer with risk "([^"]*)" at probability ([0-9.]+)$`, wc.serviceWillAnswer)
	sc.Step(`^the service recommends "([^"]*)"$`, wc.serviceRecommends)
	sc.Step(`^the diagnosis service is unreachable$`, wc.serviceIsUnreachable)
	sc.Step(`^patient (\d+) "([^"]*)" is selected$`, wc.patientIsSelected)
	sc.Step(`^the operator records a cough lasting (\d+) weeks$`, wc.recordsCough)
	sc.Step(`^the operator records an SpO2 of (\d+)$`, wc.recordsSpO2)
	sc.Step(`^the assessment is submitted without an image$`, wc.submitWithoutImage)
	sc.Step(`^the submission carries patient (\d+) and no file part$`, wc.submissionCarries)
	sc.Step(`^the submission fails$`, wc.submissionFails)
	sc.Step(`^the session still holds patient (\d+) and the recorded symptoms$`, wc.sessionStillHolds)
	sc.Step(`^the report shows the caution theme$`, wc.reportShowsCaution)
	sc.Step(`^the report shows an overall risk of (\d+) percent$`, wc.reportShowsRisk)
	sc.Step(`^the report lists (\d+) recommended action[s]?$`, wc.reportListsActions)
	sc.Step(`^a saved diagnosis result with no active session$`, wc.savedResultNoSession)
	sc.Step(`^the result is correlated$`, wc.resultIsCorrelated)
	sc.Step(`^the correlation is degraded with a reason$`, wc.correlationIsDegraded)
	sc.Step(`^the wizard returns to patient selection after the notice delay$`, wc.returnsAfterDelay)
}

func (wc *workflowContext) serviceWillAnswer(level string, probability float64) error {
	wc.serviceResult = diagnose.Result{
		DiagnosisID: 42,
		Clinical: &diagnose.ClinicalAnalysis{
			Probability: probability,
			Confidence:  0.8,
			Findings:    []string{"Prolonged cough reported"},
		},
	}
	wc.serviceResult.FinalRisk = &diagnose.FinalRisk{Probability: probability}
	if err := json.Unmarshal([]byte(fmt.Sprintf("%q", level)), &wc.serviceResult.FinalRisk.Level); err != nil {
		return err
	}

	wc.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		wc.capturedPatientID = r.FormValue("patient_id")
		_, _, err := r.FormFile("file")
		wc.capturedHadFile = err == nil
		json.NewEncoder(w).Encode(wc.serviceResult)
	}))
	return nil
}

func (wc *workflowContext) serviceRecommends(action string) error {
	wc.serviceResult.RecommendedActions = append(wc.serviceResult.RecommendedActions, action)
	return nil
}

func (wc *workflowContext) serviceIsUnreachable() error {
	wc.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	wc.server.Close() // refuse connections
	return nil
}

func (wc *workflowContext) patientIsSelected(id int, name string) error {
	return wc.store.SetPatient(session.PatientRef{ID: id, FullName: name, Age: 45, Gender: "Male"})
}

func (wc *workflowContext) recordsCough(weeks int) error {
	cough := true
	wc.store.UpdateSymptoms(session.SymptomsPatch{Cough: &cough, CoughDurationWeeks: &weeks})
	return nil
}

func (wc *workflowContext) recordsSpO2(spo2 int) error {
	return wc.store.UpdateVitals(session.VitalsPatch{SpO2: &spo2})
}

func (wc *workflowContext) submitWithoutImage() error {
	req, err := diagnose.Assemble(wc.store.Assessment())
	if err != nil {
		return err
	}

	client := diagnose.NewClient(wc.server.URL, "test-token", 5*time.Second, nil)
	wc.submissionResponse, wc.submissionErr = client.Diagnose(context.Background(), req)

	if wc.submissionErr == nil {
		wc.correlation = diagnose.Correlate(wc.submissionResponse, wc.store.Patient())
		if wc.correlation.Session != nil {
			wc.view = report.NewRenderer(nil).Render(wc.correlation.Session)
		}
	}
	return nil
}

func (wc *workflowContext) submissionCarries(id int) error {
	if wc.submissionErr != nil {
		return fmt.Errorf("submission failed: %v", wc.submissionErr)
	}
	if wc.capturedPatientID != fmt.Sprintf("%d", id) {
		return fmt.Errorf("expected patient_id %d, service saw %q", id, wc.capturedPatientID)
	}
	if wc.capturedHadFile {
		return fmt.Errorf("service received a file part for an image-free submission")
	}
	return nil
}

func (wc *workflowContext) submissionFails() error {
	if wc.submissionErr == nil {
		return fmt.Errorf("expected the submission to fail")
	}
	return nil
}

func (wc *workflowContext) sessionStillHolds(id int) error {
	p := wc.store.Patient()
	if p == nil || p.ID != id {
		return fmt.Errorf("session lost its patient: %+v", p)
	}
	if !wc.store.Assessment().Symptoms.Cough {
		return fmt.Errorf("session lost the recorded symptoms")
	}
	return nil
}

func (wc *workflowContext) reportShowsCaution() error {
	if wc.view.Theme != report.ThemeCaution {
		return fmt.Errorf("expected caution theme, got %v", wc.view.Theme)
	}
	return nil
}

func (wc *workflowContext) reportShowsRisk(percent int) error {
	if !wc.view.Risk.Known || wc.view.Risk.Percent != percent {
		return fmt.Errorf("expected risk %d%%, got %+v", percent, wc.view.Risk)
	}
	return nil
}

func (wc *workflowContext) reportListsActions(count int) error {
	if len(wc.view.Actions) != count {
		return fmt.Errorf("expected %d actions, got %v", count, wc.view.Actions)
	}
	return nil
}

func (wc *workflowContext) savedResultNoSession() error {
	wc.submissionResponse = &diagnose.Result{
		DiagnosisID: 7,
		FinalRisk:   &diagnose.FinalRisk{Level: diagnose.RiskLow, Probability: 0.1},
	}
	return nil
}

func (wc *workflowContext) resultIsCorrelated() error {
	wc.correlation = diagnose.Correlate(wc.submissionResponse, nil)
	return nil
}

func (wc *workflowContext) correlationIsDegraded() error {
	if !wc.correlation.Degraded {
		return fmt.Errorf("expected a degraded correlation, got %+v", wc.correlation)
	}
	if wc.correlation.Reason == "" {
		return fmt.Errorf("degraded correlation must carry a reason")
	}
	return nil
}

func (wc *workflowContext) returnsAfterDelay() error {
	w := NewWizard(&fakeService{}, nil, Options{
		Config: DefaultConfig(),
		Result: wc.submissionResponse,
	})
	if w.phase != PhaseDegraded {
		return fmt.Errorf("expected the degraded notice, got phase %v", w.phase)
	}
	if screens.DegradedReturnDelay != 3*time.Second {
		return fmt.Errorf("unexpected notice delay %v", screens.DegradedReturnDelay)
	}

	w.updateDegraded(screens.ReturnToStartMsg{})
	if w.phase != PhasePatient {
		return fmt.Errorf("expected return to patient selection, got phase %v", w.phase)
	}
	return nil
}
