package models

import "time"

// DiabetesType is the closed set of diagnosis categories a submission
// can carry. The values are the display strings used on the wire.
type DiabetesType string

const (
	DiabetesType1       DiabetesType = "Type 1"
	DiabetesType2       DiabetesType = "Type 2"
	DiabetesPrediabetes DiabetesType = "Prediabetes"
)

// DiabetesTypeAll is the filter wildcard, not a valid submission value.
const DiabetesTypeAll = "all"

// Valid reports whether t is an accepted submission category.
func (t DiabetesType) Valid() bool {
	switch t {
	case DiabetesType1, DiabetesType2, DiabetesPrediabetes:
		return true
	}
	return false
}

// Submission is one patient intake record: a tongue photo plus lab values.
// Immutable once created; every view treats it as read-only.
type Submission struct {
	ID             string       `json:"id"`
	PatientID      string       `json:"patient_id"`
	PatientName    string       `json:"patient_name"`
	PatientEmail   string       `json:"patient_email"`
	PatientAge     int          `json:"patient_age"`
	TongueImageURL string       `json:"tongue_image_url"`
	BloodGlucose   float64      `json:"blood_glucose"`
	HbA1c          float64      `json:"hba1c"`
	InsulinLevel   *float64     `json:"insulin_level,omitempty"`
	DiabetesType   DiabetesType `json:"diabetes_type"`
	Symptoms       []string     `json:"symptoms"`
	Medications    []string     `json:"medications"`
	Notes          string       `json:"notes,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
}

// FilterCriteria is the transient, view-local filter state for the
// dashboard lists. The zero value matches everything once DiabetesType
// is set to DiabetesTypeAll.
type FilterCriteria struct {
	Query        string
	DiabetesType string
}

// MatchesAll reports whether the criteria place no restriction at all.
func (c FilterCriteria) MatchesAll() bool {
	return c.Query == "" && (c.DiabetesType == "" || c.DiabetesType == DiabetesTypeAll)
}
