// Package report turns a correlated diagnosis into a display-ready view.
// Rendering is pure: same result in, same view out, no I/O beyond logging.
package report

import (
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/karuna-health/tbscreen/internal/diagnose"
)

// Theme selects the visual treatment of the report banner.
type Theme int

const (
	ThemeClear Theme = iota
	ThemeCaution
	ThemeCritical
)

var themeByRisk = map[diagnose.RiskLevel]Theme{
	diagnose.RiskLow:    ThemeClear,
	diagnose.RiskMedium: ThemeCaution,
	diagnose.RiskHigh:   ThemeCritical,
}

var titleByRisk = map[diagnose.RiskLevel]string{
	diagnose.RiskLow:    "Low Risk",
	diagnose.RiskMedium: "Medium Risk",
	diagnose.RiskHigh:   "High Risk Detected",
}

// Gauge is a probability ready for display. Known is false when the source
// value was absent; the screen shows a placeholder instead of 0%.
type Gauge struct {
	Percent int
	Known   bool
}

// Segment is one named imaging feature index.
type Segment struct {
	Name  string
	Value Gauge
}

// ClinicalPanel is the symptom/vitals stream of the report.
type ClinicalPanel struct {
	Present     bool
	Probability Gauge
	Confidence  Gauge
	Findings    []string
}

// RadiologyPanel is the imaging stream of the report. Segments are sorted by
// feature name so repeated renders are stable.
type RadiologyPanel struct {
	Present     bool
	Probability Gauge
	Findings    []string
	Segments    []Segment
}

// FusionPanel describes stream agreement.
type FusionPanel struct {
	Present   bool
	Agreement Gauge
}

// View is everything the report screen needs, already ordered and labeled.
type View struct {
	Theme       Theme
	Title       string
	PatientName string
	PatientLine string
	Risk        Gauge
	Clinical    ClinicalPanel
	Radiology   RadiologyPanel
	Fusion      FusionPanel
	Explanation string
	Actions     []string
}

// PlaceholderNoFindings is shown when a stream reports nothing significant.
const PlaceholderNoFindings = "No significant findings for this stream."

// Renderer builds report views. A nil logger renders silently.
type Renderer struct {
	log *zap.Logger
}

func NewRenderer(log *zap.Logger) *Renderer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Renderer{log: log}
}

// Render lays out the correlated result. Missing sections degrade to
// placeholder panels; an unknown risk level falls back to the clear theme.
func (r *Renderer) Render(sr *diagnose.SessionResult) View {
	v := View{
		PatientName: sr.Patient.FullName,
		Explanation: sr.Result.ConfidenceExplanation,
		Actions:     sr.Result.RecommendedActions,
	}
	v.PatientLine = fmt.Sprintf("%s  ·  %d y  ·  %s",
		sr.Patient.FullName, sr.Patient.Age, sr.Patient.Gender)

	level := diagnose.RiskUnknown
	if fr := sr.Result.FinalRisk; fr != nil {
		level = fr.Level
		v.Risk = r.gauge(fr.Probability, "final risk")
	} else {
		r.log.Warn("result has no final risk section",
			zap.Int64("diagnosis_id", sr.Result.DiagnosisID))
	}

	theme, ok := themeByRisk[level]
	if !ok {
		r.log.Warn("unknown risk level, using clear theme",
			zap.Int64("diagnosis_id", sr.Result.DiagnosisID),
			zap.String("level", level.String()))
		theme = ThemeClear
	}
	v.Theme = theme
	if title, ok := titleByRisk[level]; ok {
		v.Title = title
	} else {
		v.Title = "Risk Assessment"
	}

	if c := sr.Result.Clinical; c != nil {
		v.Clinical = ClinicalPanel{
			Present:     true,
			Probability: r.gauge(c.Probability, "clinical probability"),
			Confidence:  r.gauge(c.Confidence, "clinical confidence"),
			Findings:    findingsOrPlaceholder(c.Findings),
		}
	}

	if rad := sr.Result.Radiology; rad != nil {
		panel := RadiologyPanel{
			Present:     true,
			Probability: r.gauge(rad.Probability, "radiology probability"),
			Findings:    findingsOrPlaceholder(rad.Findings),
		}
		names := make([]string, 0, len(rad.Segments))
		for name := range rad.Segments {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			panel.Segments = append(panel.Segments, Segment{
				Name:  name,
				Value: r.gauge(rad.Segments[name], "segment "+name),
			})
		}
		v.Radiology = panel
	}

	if f := sr.Result.Fusion; f != nil {
		v.Fusion = FusionPanel{
			Present:   true,
			Agreement: r.gauge(f.AgreementScore, "agreement score"),
		}
	}

	return v
}

// gauge converts a [0,1] fraction to a whole percent, clamping out-of-range
// values rather than propagating them into the layout.
func (r *Renderer) gauge(fraction float64, what string) Gauge {
	if math.IsNaN(fraction) {
		r.log.Warn("non-numeric fraction in result", zap.String("field", what))
		return Gauge{}
	}
	if fraction < 0 || fraction > 1 {
		r.log.Warn("fraction outside [0,1], clamping",
			zap.String("field", what), zap.Float64("value", fraction))
		fraction = math.Min(math.Max(fraction, 0), 1)
	}
	return Gauge{Percent: int(math.Round(fraction * 100)), Known: true}
}

func findingsOrPlaceholder(findings []string) []string {
	if len(findings) == 0 {
		return []string{PlaceholderNoFindings}
	}
	return findings
}
