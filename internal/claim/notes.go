package claim

import (
	"encoding/json"
	"strings"
)

// The claims table predates structured claim metadata, so the single notes
// text column carries both the free narrative and an optional JSON block.
// The marker uses an ASCII record separator (0x1E) so ordinary narrative text
// never collides with it. Everything outside this file works with ClaimNotes;
// the raw blob exists only at the repository boundary.
const notesMetaMarker = "\n\x1e--claim-meta.v1--\n"

// NotesMeta is the structured metadata embedded in a claim's notes blob.
type NotesMeta struct {
	Category           string `json:"category,omitempty"`
	BenefitType        string `json:"benefit_type,omitempty"`
	CareCause          string `json:"care_cause,omitempty"`
	SymptomOnsetDate   string `json:"symptom_onset_date,omitempty"`
	PreviousTreatment  string `json:"previous_treatment,omitempty"`
	DoctorHistory      string `json:"doctor_history,omitempty"`
	AccidentChronology string `json:"accident_chronology,omitempty"`
	AlcoholOrDrugs     bool   `json:"alcohol_or_drugs,omitempty"`
	DeathDatetime      string `json:"death_datetime,omitempty"`
	DeathPlace         string `json:"death_place,omitempty"`
	BeneficiaryNotes   string `json:"beneficiary_notes,omitempty"`
}

// ClaimNotes is the decoded form of the notes column.
type ClaimNotes struct {
	Plain string     `json:"plain"`
	Meta  *NotesMeta `json:"meta,omitempty"`
}

// ComposeNotes encodes notes into a single string suitable for the text
// column. Record separators are stripped from the narrative so it can never
// form the marker inside a composed blob; apart from that, a nil Meta
// composes to the plain narrative unchanged.
func ComposeNotes(n ClaimNotes) (string, error) {
	plain := strings.ReplaceAll(n.Plain, "\x1e", "")
	if n.Meta == nil {
		return plain, nil
	}
	raw, err := json.Marshal(n.Meta)
	if err != nil {
		return "", err
	}
	return plain + notesMetaMarker + string(raw), nil
}

// ExtractNotes decodes a notes blob. It never fails: blobs written before the
// metadata format existed, or with a malformed embedded block, come back as
// plain narrative with nil Meta.
func ExtractNotes(blob string) ClaimNotes {
	idx := strings.LastIndex(blob, notesMetaMarker)
	if idx < 0 {
		return ClaimNotes{Plain: blob}
	}
	var meta NotesMeta
	suffix := blob[idx+len(notesMetaMarker):]
	if err := json.Unmarshal([]byte(suffix), &meta); err != nil {
		return ClaimNotes{Plain: blob}
	}
	return ClaimNotes{Plain: blob[:idx], Meta: &meta}
}
