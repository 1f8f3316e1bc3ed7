package diagnose

import "github.com/karuna-health/tbscreen/internal/session"

// SessionResult pairs a diagnosis result with the patient it was produced
// for. The pairing is the session's own, never inferred from a shared lookup.
type SessionResult struct {
	Patient session.PatientRef
	Result  Result
}

// Correlation is the outcome of matching a result to its session context.
// When Degraded is set, Session is nil and Reason says what was missing.
type Correlation struct {
	Session  *SessionResult
	Degraded bool
	Reason   string
}

// Correlate pairs the result with the session's patient. Either side missing
// yields a degraded correlation instead of a partial pairing: the result is
// never attributed to a guessed patient.
func Correlate(result *Result, patient *session.PatientRef) Correlation {
	switch {
	case result == nil && patient == nil:
		return Correlation{Degraded: true, Reason: "no active session and no result to display"}
	case result == nil:
		return Correlation{Degraded: true, Reason: "no diagnosis result for the active session"}
	case patient == nil:
		return Correlation{Degraded: true, Reason: "result has no originating session"}
	}
	return Correlation{
		Session: &SessionResult{Patient: *patient, Result: *result},
	}
}
