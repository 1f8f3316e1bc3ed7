// Package diagnose talks to the AI diagnosis service: it assembles the
// outbound assessment, carries the wire types of the /diagnose contract, and
// correlates the response back to the originating patient context.
package diagnose

import (
	"encoding/json"
	"strings"
)

// RiskLevel is the tiered risk classification in the service response.
type RiskLevel int

const (
	RiskUnknown RiskLevel = iota
	RiskLow
	RiskMedium
	RiskHigh
)

// String returns the wire spelling of the level.
func (r RiskLevel) String() string {
	switch r {
	case RiskLow:
		return "Low"
	case RiskMedium:
		return "Medium"
	case RiskHigh:
		return "High"
	default:
		return "Unknown"
	}
}

// UnmarshalJSON accepts the service's level strings case-insensitively.
// Anything else (including null) decodes to RiskUnknown rather than failing:
// a malformed level is a display concern, not a parse failure.
func (r *RiskLevel) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		*r = RiskUnknown
		return nil
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		*r = RiskLow
	case "medium":
		*r = RiskMedium
	case "high":
		*r = RiskHigh
	default:
		*r = RiskUnknown
	}
	return nil
}

// MarshalJSON writes the wire spelling.
func (r RiskLevel) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

// ClinicalAnalysis is the symptom/vitals stream of the diagnosis.
type ClinicalAnalysis struct {
	Probability float64  `json:"probability"`
	Confidence  float64  `json:"confidence"`
	Findings    []string `json:"findings"`
}

// RadiologyAnalysis is the imaging stream of the diagnosis. Segments carries
// per-feature indices (opacity, asymmetry, texture) keyed by feature name.
type RadiologyAnalysis struct {
	Probability float64            `json:"probability"`
	Findings    []string           `json:"findings"`
	Segments    map[string]float64 `json:"segments"`
}

// FusionAnalysis describes how the two streams were combined.
type FusionAnalysis struct {
	AgreementScore float64 `json:"agreement_score"`
}

// FinalRisk is the fused risk estimate.
type FinalRisk struct {
	Level       RiskLevel `json:"level"`
	Probability float64   `json:"probability"`
}

// Result is the structured multimodal response of POST /diagnose. Analysis
// sections are pointers so a missing section is distinguishable from a zero
// one; the renderer degrades per section instead of failing the report.
type Result struct {
	DiagnosisID           int64              `json:"diagnosis_id"`
	Timestamp             string             `json:"timestamp"`
	Clinical              *ClinicalAnalysis  `json:"clinical_analysis"`
	Radiology             *RadiologyAnalysis `json:"radiology_analysis"`
	Fusion                *FusionAnalysis    `json:"fusion_analysis"`
	FinalRisk             *FinalRisk         `json:"final_risk"`
	ConfidenceExplanation string             `json:"confidence_explanation"`
	RecommendedActions    []string           `json:"recommended_actions"`
}

// SymptomPayload is the structured symptoms field of the submission.
// Fever and NightSweats mirror the single fever/night-sweats flag collected
// in the wizard; the service scores them independently.
type SymptomPayload struct {
	Cough         bool `json:"cough"`
	CoughDuration int  `json:"coughDuration"`
	Hemoptysis    bool `json:"hemoptysis"`
	Fever         bool `json:"fever"`
	NightSweats   bool `json:"nightSweats"`
	WeightLoss    bool `json:"weightLoss"`
	Fatigue       bool `json:"fatigue"`
}

// VitalsPayload is the structured vitals field of the submission.
// BloodPressure is a pointer so "not provided" is transmitted as null and the
// service can tell it apart from a provided empty string.
type VitalsPayload struct {
	Temperature   float64 `json:"temp"`
	SpO2          int     `json:"spo2"`
	HeartRate     int     `json:"heartRate"`
	BloodPressure *string `json:"bp"`
}

// FilePart is the optional out-of-band binary attachment of the submission.
// It travels as its own multipart section, never base64-inlined into the
// structured fields.
type FilePart struct {
	Filename    string
	ContentType string
	Data        []byte
}

// SubmissionRequest is one assembled assessment, ready for transport.
type SubmissionRequest struct {
	PatientID int
	Symptoms  SymptomPayload
	Vitals    VitalsPayload
	File      *FilePart
}
