package domain

import "time"

// FormPhase is the Form Controller state.
type FormPhase string

const (
	PhaseEditing    FormPhase = "editing"
	PhaseSubmitting FormPhase = "submitting"
	PhaseFetching   FormPhase = "fetching"
	PhaseDisplaying FormPhase = "displaying"
)

// FormState is everything the Form Controller owns for one session: the
// field values being edited, the errors of the last submission and the
// geometry currently on the map.
type FormState struct {
	Phase       FormPhase           `json:"phase"`
	Values      map[string]string   `json:"values,omitempty"`
	FieldErrors FieldErrors         `json:"field_errors,omitempty"`
	Summary     string              `json:"summary,omitempty"`
	FetchError  string              `json:"fetch_error,omitempty"`
	RetryBox    *BoundingBox        `json:"retry_box,omitempty"`
	LastBox     *BoundingBox        `json:"last_box,omitempty"`
	Geometry    *GeometryCollection `json:"geometry,omitempty"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// NewFormState returns an empty form in the Editing phase.
func NewFormState() *FormState {
	return &FormState{Phase: PhaseEditing, Values: map[string]string{}}
}

// HasErrors reports whether the last submission was rejected.
func (s *FormState) HasErrors() bool {
	return len(s.FieldErrors) > 0 || s.Summary != ""
}

// ClearErrors drops the errors of the previous submission.
func (s *FormState) ClearErrors() {
	s.FieldErrors = nil
	s.Summary = ""
	s.FetchError = ""
	s.RetryBox = nil
}

// SubmissionEvent is published after every submission.
type SubmissionEvent struct {
	SessionID    string       `json:"session_id"`
	Result       string       `json:"result"`
	BoundingBox  *BoundingBox `json:"bbox,omitempty"`
	FeatureCount int          `json:"feature_count"`
	Error        string       `json:"error,omitempty"`
	At           time.Time    `json:"at"`
}
