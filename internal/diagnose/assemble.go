package diagnose

import (
	"errors"
	"strings"

	"github.com/karuna-health/tbscreen/internal/session"
)

// ErrIncompleteSession is returned when assembly is attempted without a
// selected patient. The step controller's guard makes this unreachable in
// normal operation, but the boundary still checks.
var ErrIncompleteSession = errors.New("diagnose: assessment has no patient reference")

// Assemble serializes the aggregated session into one outbound request.
// It is deterministic and has no side effect on the session: assembling the
// same assessment twice yields structurally equal requests.
func Assemble(a *session.Assessment) (*SubmissionRequest, error) {
	if a == nil || a.Patient == nil || a.Patient.ID == 0 {
		return nil, ErrIncompleteSession
	}

	sym := SymptomPayload{
		Cough:         a.Symptoms.Cough,
		CoughDuration: a.Symptoms.CoughDurationWeeks,
		Hemoptysis:    a.Symptoms.Hemoptysis,
		Fever:         a.Symptoms.FeverNightSweats,
		NightSweats:   a.Symptoms.FeverNightSweats,
		WeightLoss:    a.Symptoms.WeightLoss,
		Fatigue:       a.Symptoms.Fatigue,
	}
	if !sym.Cough {
		// Never ship a stale duration for a cough-free assessment.
		sym.CoughDuration = 0
	}

	vit := VitalsPayload{
		Temperature: a.Vitals.Temperature,
		SpO2:        a.Vitals.SpO2,
		HeartRate:   a.Vitals.HeartRate,
	}
	if bp := strings.TrimSpace(a.Vitals.BloodPressure); bp != "" {
		vit.BloodPressure = &bp
	}

	req := &SubmissionRequest{
		PatientID: a.Patient.ID,
		Symptoms:  sym,
		Vitals:    vit,
	}

	if img := a.Image; img != nil && len(img.Data) > 0 {
		req.File = &FilePart{
			Filename:    img.Filename,
			ContentType: img.ContentType,
			Data:        img.Data,
		}
	}

	return req, nil
}
