package help

// HelpText contains information about a field
type HelpText struct {
	Title       string
	Description string
	Details     string
}

// Texts contains help information for all wizard fields
var Texts = map[string]HelpText{
	"patient": {
		Title:       "PATIENT",
		Description: "Patient under assessment.",
		Details:     "Records come from the clinic registry. The selection is fixed for the rest of the session.",
	},
	"cough": {
		Title:       "COUGH",
		Description: "Persistent cough reported by the patient.",
		Details:     "A cough lasting 2 weeks or longer is a primary TB screening indicator.",
	},
	"cough_duration": {
		Title:       "COUGH DURATION",
		Description: "How long the cough has lasted, in weeks.",
		Details:     "Ignored unless a cough is reported. Durations of 3+ weeks weigh heavily in the clinical score.",
	},
	"hemoptysis": {
		Title:       "HEMOPTYSIS",
		Description: "Coughing up blood or blood-streaked sputum.",
		Details:     "A strong indicator of active pulmonary disease.",
	},
	"fever_night_sweats": {
		Title:       "FEVER / NIGHT SWEATS",
		Description: "Recurring fever or drenching night sweats.",
		Details:     "Classic constitutional symptoms of active TB.",
	},
	"weight_loss": {
		Title:       "WEIGHT LOSS",
		Description: "Unintentional weight loss over recent weeks.",
		Details:     "Ask about appetite and clothing fit if the patient is unsure.",
	},
	"fatigue": {
		Title:       "FATIGUE",
		Description: "Persistent tiredness or weakness.",
		Details:     "Nonspecific on its own but raises the score alongside other symptoms.",
	},
	"temperature": {
		Title:       "TEMPERATURE",
		Description: "Body temperature in degrees Fahrenheit.",
		Details:     "Normal is around 98.6 °F. Values above 100.4 °F indicate fever.",
	},
	"spo2": {
		Title:       "SPO2",
		Description: "Blood oxygen saturation, percent.",
		Details:     "Must be between 0 and 100. Readings below 95% suggest impaired lung function.",
	},
	"heart_rate": {
		Title:       "HEART RATE",
		Description: "Resting heart rate in beats per minute.",
		Details:     "Typical adult resting range is 60-100 bpm.",
	},
	"blood_pressure": {
		Title:       "BLOOD PRESSURE",
		Description: "Blood pressure as systolic/diastolic.",
		Details:     "Free text, e.g. 120/80. Leave empty if not measured.",
	},
	"image_path": {
		Title:       "CHEST IMAGE",
		Description: "Path to a chest radiograph on disk.",
		Details: `Supported formats: DICOM (.dcm), PNG, JPEG.
Leave empty to submit a clinical-only assessment.
The radiology stream is skipped without an image.`,
	},
}
