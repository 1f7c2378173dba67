package inforequest

// Template is a predefined form schema a hospital can apply wholesale and
// then customize. Templates are a convenience only; they pass through the
// same validation as hand-built schemas.
type Template struct {
	Key    string      `json:"key"`
	Name   string      `json:"name"`
	Schema []FormField `json:"schema"`
}

// Templates returns the built-in questionnaires for the two common claim
// kinds.
func Templates() []Template {
	return []Template{
		{
			Key:  "living_benefit",
			Name: "Living benefit claim",
			Schema: []FormField{
				{ID: "symptom_onset_date", Label: "When did the symptoms first appear?", Type: FieldDate, Required: true},
				{ID: "care_cause", Label: "Cause of care", Type: FieldSelect, Options: []string{"illness", "accident"}, Required: true},
				{ID: "previous_treatment", Label: "Previous treatment for the same condition", Type: FieldText, Required: false},
				{ID: "doctor_history", Label: "Doctors and hospitals consulted so far", Type: FieldText, Required: true},
				{ID: "hospitalization_days", Label: "Number of hospitalization days", Type: FieldNumber, Required: false},
			},
		},
		{
			Key:  "death_benefit",
			Name: "Death benefit claim",
			Schema: []FormField{
				{ID: "death_datetime", Label: "Date and time of death", Type: FieldDate, Required: true},
				{ID: "death_place", Label: "Place of death", Type: FieldText, Required: true},
				{ID: "accident_chronology", Label: "Chronology of the accident, if any", Type: FieldText, Required: false},
				{ID: "alcohol_or_drugs", Label: "Was alcohol or drug involvement established?", Type: FieldSelect, Options: []string{"yes", "no", "unknown"}, Required: true},
				{ID: "beneficiary_notes", Label: "Notes on the beneficiary", Type: FieldText, Required: false},
			},
		},
	}
}
