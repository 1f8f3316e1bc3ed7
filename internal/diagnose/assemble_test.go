package diagnose

import (
	"errors"
	"reflect"
	"testing"

	"github.com/karuna-health/tbscreen/internal/session"
)

func testAssessment() *session.Assessment {
	return &session.Assessment{
		Patient: &session.PatientRef{ID: 12, FullName: "John Doe"},
		Symptoms: session.SymptomSet{
			Cough:              true,
			CoughDurationWeeks: 4,
			FeverNightSweats:   true,
		},
		Vitals: session.VitalSigns{
			Temperature:   99.1,
			SpO2:          94,
			HeartRate:     88,
			BloodPressure: "130/85",
		},
	}
}

func TestAssemble_NoPatient(t *testing.T) {
	cases := []struct {
		name string
		a    *session.Assessment
	}{
		{"nil assessment", nil},
		{"nil patient", &session.Assessment{}},
		{"zero patient id", &session.Assessment{Patient: &session.PatientRef{FullName: "Ghost"}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Assemble(tc.a); !errors.Is(err, ErrIncompleteSession) {
				t.Errorf("Expected ErrIncompleteSession, got %v", err)
			}
		})
	}
}

func TestAssemble_Deterministic(t *testing.T) {
	a := testAssessment()

	first, err := Assemble(a)
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	second, err := Assemble(a)
	if err != nil {
		t.Fatalf("Second Assemble failed: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("Assembling the same assessment twice diverged:\n%+v\n%+v", first, second)
	}
}

func TestAssemble_FeverFansOutToBothFields(t *testing.T) {
	req, err := Assemble(testAssessment())
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	if !req.Symptoms.Fever || !req.Symptoms.NightSweats {
		t.Errorf("Fever/night-sweats flag must fill both wire fields: %+v", req.Symptoms)
	}
}

func TestAssemble_NoCoughZeroesDuration(t *testing.T) {
	a := testAssessment()
	a.Symptoms.Cough = false
	a.Symptoms.CoughDurationWeeks = 6

	req, err := Assemble(a)
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	if req.Symptoms.CoughDuration != 0 {
		t.Errorf("Expected duration 0 without cough, got %d", req.Symptoms.CoughDuration)
	}
}

func TestAssemble_BloodPressure(t *testing.T) {
	a := testAssessment()

	req, err := Assemble(a)
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	if req.Vitals.BloodPressure == nil || *req.Vitals.BloodPressure != "130/85" {
		t.Errorf("Expected bp 130/85, got %v", req.Vitals.BloodPressure)
	}

	a.Vitals.BloodPressure = "   "
	req, err = Assemble(a)
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	if req.Vitals.BloodPressure != nil {
		t.Errorf("Blank bp must assemble to nil, got %q", *req.Vitals.BloodPressure)
	}
}

func TestAssemble_FilePart(t *testing.T) {
	a := testAssessment()

	req, err := Assemble(a)
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	if req.File != nil {
		t.Error("No attachment must assemble to no file part")
	}

	a.Image = &session.Attachment{Filename: "xray.png", ContentType: "image/png", Data: []byte{1, 2, 3}}
	req, err = Assemble(a)
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	if req.File == nil || req.File.Filename != "xray.png" || len(req.File.Data) != 3 {
		t.Errorf("File part not carried over: %+v", req.File)
	}

	a.Image = &session.Attachment{Filename: "empty.png"}
	req, err = Assemble(a)
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	if req.File != nil {
		t.Error("Empty attachment data must assemble to no file part")
	}
}
