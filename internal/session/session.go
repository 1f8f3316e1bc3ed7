// Package session holds the in-progress assessment for one wizard run.
package session

import (
	"errors"
	"io/fs"
	"os"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrInvalidPatient is returned when a patient reference carries no usable identity.
	ErrInvalidPatient = errors.New("session: patient reference has no id")

	// ErrVitalsOutOfRange is returned when a vital sign fails local range checks.
	ErrVitalsOutOfRange = errors.New("session: vital sign outside accepted range")
)

// PatientRef identifies the patient under assessment. Selected once per
// session and immutable afterwards; sourced from the patient registry.
type PatientRef struct {
	ID       int    `json:"id" validate:"required,gt=0"`
	FullName string `json:"full_name"`
	Age      int    `json:"age"`
	Gender   string `json:"gender"`
	Contact  string `json:"contact_number"`
}

// SymptomSet holds the clinical symptom flags collected in the symptoms step.
// CoughDurationWeeks is only meaningful while Cough is set; the assembler
// never transmits a stale duration for a cough-free assessment.
type SymptomSet struct {
	Cough              bool
	CoughDurationWeeks int
	Hemoptysis         bool
	FeverNightSweats   bool
	WeightLoss         bool
	Fatigue            bool
}

// VitalSigns holds clinician-entered vitals. Values are trusted as entered
// except SpO2, which is a percentage and rejected outside [0,100].
type VitalSigns struct {
	Temperature   float64 `validate:"gt=0"`          // °F
	SpO2          int     `validate:"gte=0,lte=100"` // %
	HeartRate     int     `validate:"gt=0"`          // bpm
	BloodPressure string  // free text "systolic/diastolic"
}

// DefaultVitals are the pre-filled values shown when the vitals step opens.
func DefaultVitals() VitalSigns {
	return VitalSigns{
		Temperature:   98.6,
		SpO2:          98,
		HeartRate:     72,
		BloodPressure: "120/80",
	}
}

// SymptomsPatch is a shallow update to the symptom set. Nil fields leave the
// stored value untouched.
type SymptomsPatch struct {
	Cough              *bool
	CoughDurationWeeks *int
	Hemoptysis         *bool
	FeverNightSweats   *bool
	WeightLoss         *bool
	Fatigue            *bool
}

// VitalsPatch is a shallow update to the vital signs. Nil fields leave the
// stored value untouched.
type VitalsPatch struct {
	Temperature   *float64
	SpO2          *int
	HeartRate     *int
	BloodPressure *string
}

// Preview is a locally generated preview handle for an uploaded image.
// It must be released when the attachment is replaced or the session ends.
type Preview struct {
	Path string
}

// Release removes the preview file. Releasing a missing or already-released
// preview is not an error.
func (p *Preview) Release() error {
	if p == nil || p.Path == "" {
		return nil
	}
	err := os.Remove(p.Path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	p.Path = ""
	return nil
}

// Attachment is a single optional imaging attachment. Absence is valid.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
	Preview     *Preview
}

// Assessment aggregates everything collected across the wizard steps.
type Assessment struct {
	Patient  *PatientRef
	Symptoms SymptomSet
	Vitals   VitalSigns
	Image    *Attachment
}

// Store holds exactly one assessment at a time. One operator, one active
// session: no locking, all mutation happens synchronously through the step
// controller.
type Store struct {
	current  Assessment
	validate *validator.Validate
}

// NewStore creates an empty store seeded with default vitals.
func NewStore() *Store {
	return &Store{
		current:  Assessment{Vitals: DefaultVitals()},
		validate: validator.New(),
	}
}

// Assessment exposes the current session for reading by the controller and
// the assembler.
func (s *Store) Assessment() *Assessment {
	return &s.current
}

// Patient returns the selected patient, or nil before selection.
func (s *Store) Patient() *PatientRef {
	return s.current.Patient
}

// SetPatient selects the patient for this session.
func (s *Store) SetPatient(ref PatientRef) error {
	if err := s.validate.Struct(ref); err != nil {
		return ErrInvalidPatient
	}
	s.current.Patient = &ref
	return nil
}

// UpdateSymptoms merges the patch into the stored symptom set.
func (s *Store) UpdateSymptoms(p SymptomsPatch) {
	sym := &s.current.Symptoms
	if p.Cough != nil {
		sym.Cough = *p.Cough
	}
	if p.CoughDurationWeeks != nil {
		sym.CoughDurationWeeks = *p.CoughDurationWeeks
	}
	if p.Hemoptysis != nil {
		sym.Hemoptysis = *p.Hemoptysis
	}
	if p.FeverNightSweats != nil {
		sym.FeverNightSweats = *p.FeverNightSweats
	}
	if p.WeightLoss != nil {
		sym.WeightLoss = *p.WeightLoss
	}
	if p.Fatigue != nil {
		sym.Fatigue = *p.Fatigue
	}
}

// UpdateVitals merges the patch into the stored vitals. The merged value is
// range-checked before being applied; on failure nothing changes.
func (s *Store) UpdateVitals(p VitalsPatch) error {
	merged := s.current.Vitals
	if p.Temperature != nil {
		merged.Temperature = *p.Temperature
	}
	if p.SpO2 != nil {
		merged.SpO2 = *p.SpO2
	}
	if p.HeartRate != nil {
		merged.HeartRate = *p.HeartRate
	}
	if p.BloodPressure != nil {
		merged.BloodPressure = *p.BloodPressure
	}
	if err := s.validate.Struct(merged); err != nil {
		return ErrVitalsOutOfRange
	}
	s.current.Vitals = merged
	return nil
}

// SetImage replaces the imaging attachment, releasing the previous preview
// handle. A nil attachment clears the step.
func (s *Store) SetImage(att *Attachment) error {
	if prev := s.current.Image; prev != nil && prev != att {
		if err := prev.Preview.Release(); err != nil {
			return err
		}
	}
	s.current.Image = att
	return nil
}

// Reset discards the session, releasing any preview handle. Used when the
// operator navigates away without submitting.
func (s *Store) Reset() error {
	if err := s.SetImage(nil); err != nil {
		return err
	}
	s.current = Assessment{Vitals: DefaultVitals()}
	return nil
}
