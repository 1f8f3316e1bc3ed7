package diagnose

import (
	"encoding/json"
	"testing"

	"github.com/karuna-health/tbscreen/internal/session"
)

func TestCorrelate(t *testing.T) {
	patient := &session.PatientRef{ID: 12, FullName: "John Doe"}
	result := &Result{DiagnosisID: 42, FinalRisk: &FinalRisk{Level: RiskHigh, Probability: 0.89}}

	cases := []struct {
		name     string
		result   *Result
		patient  *session.PatientRef
		degraded bool
	}{
		{"both present", result, patient, false},
		{"no result", nil, patient, true},
		{"no patient", result, nil, true},
		{"neither", nil, nil, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := Correlate(tc.result, tc.patient)
			if c.Degraded != tc.degraded {
				t.Fatalf("Expected degraded=%v, got %+v", tc.degraded, c)
			}
			if tc.degraded {
				if c.Session != nil {
					t.Error("Degraded correlation must not carry a session pairing")
				}
				if c.Reason == "" {
					t.Error("Degraded correlation must explain what was missing")
				}
				return
			}
			if c.Session == nil {
				t.Fatal("Expected a session pairing")
			}
			if c.Session.Patient.ID != 12 || c.Session.Result.DiagnosisID != 42 {
				t.Errorf("Result paired with wrong session data: %+v", c.Session)
			}
		})
	}
}

func TestRiskLevel_Unmarshal(t *testing.T) {
	cases := []struct {
		in   string
		want RiskLevel
	}{
		{`"High"`, RiskHigh},
		{`"medium"`, RiskMedium},
		{`" LOW "`, RiskLow},
		{`"elevated"`, RiskUnknown},
		{`null`, RiskUnknown},
		{`17`, RiskUnknown},
	}

	for _, tc := range cases {
		var got RiskLevel
		if err := json.Unmarshal([]byte(tc.in), &got); err != nil {
			t.Errorf("Unmarshal(%s) must not fail: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("Unmarshal(%s) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestResult_MissingSectionsDecodeToNil(t *testing.T) {
	var r Result
	if err := json.Unmarshal([]byte(`{"diagnosis_id":7,"final_risk":{"level":"Low","probability":0.1}}`), &r); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if r.Clinical != nil || r.Radiology != nil || r.Fusion != nil {
		t.Errorf("Absent sections must decode to nil: %+v", r)
	}
	if r.FinalRisk == nil || r.FinalRisk.Level != RiskLow {
		t.Errorf("Present section lost: %+v", r.FinalRisk)
	}
}
