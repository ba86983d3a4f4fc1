package client

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"strconv"
	"strings"
)

// Validator is the transport to the OBE analysis service.
type Validator interface {
	// Validate submits both files and the threshold in a single request
	// and returns the decoded analysis.
	Validate(ctx context.Context, req Request) (*Result, error)
}

// File is an opaque file selection. Data is sent as-is.
type File struct {
	Name string
	Data []byte
}

// Request is the payload of one validation call.
type Request struct {
	Syllabus  File
	Questions File
	Threshold float64
}

// FormatThreshold renders a threshold the way it is sent on the wire:
// the shortest decimal that round-trips, e.g. 0.7 -> "0.7".
func FormatThreshold(t float64) string {
	return strconv.FormatFloat(t, 'f', -1, 64)
}

// ImagePrefix is the data URI prefix of a base64 PNG. The service sends
// the bare payload; a payload that already carries the prefix is accepted.
const ImagePrefix = "data:image/png;base64,"

// Result is the analysis returned by the service. It is rendered as
// received; nothing checks that the numbers agree with each other.
type Result struct {
	Results              []QuestionResult `json:"results"`
	Accuracy             Value            `json:"accuracy"`
	Precision            Value            `json:"precision"`
	Recall               Value            `json:"recall"`
	F1Score              Value            `json:"f1_score"`
	ConfusionMatrixImage string           `json:"confusion_matrix_image,omitempty"`
}

// QuestionResult is one row of the per-question table.
type QuestionResult struct {
	Question        string `json:"question"`
	BestMatch       string `json:"best_matching_syllabus"`
	SimilarityScore Value  `json:"similarity_score"`
	Coherent        string `json:"coherent"`
}

// IsCoherent reports whether the service marked the question as aligned.
func (q QuestionResult) IsCoherent() bool {
	return q.Coherent == "Yes"
}

// HasImage reports whether a confusion matrix was returned.
func (r *Result) HasImage() bool {
	return r != nil && r.ConfusionMatrixImage != ""
}

// DecodeImage returns the raw PNG bytes of the confusion matrix.
func (r *Result) DecodeImage() ([]byte, error) {
	return base64.StdEncoding.DecodeString(strings.TrimPrefix(r.ConfusionMatrixImage, ImagePrefix))
}

// Value is a scalar kept as the raw JSON token the service wrote, so it is
// displayed verbatim and written back unchanged. null is the empty Value.
// Text that is not a JSON token is treated as a plain string.
type Value string

func (v *Value) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*v = ""
		return nil
	}
	*v = Value(b)
	return nil
}

func (v Value) MarshalJSON() ([]byte, error) {
	if v == "" {
		return []byte("null"), nil
	}
	if json.Valid([]byte(v)) {
		return []byte(v), nil
	}
	return json.Marshal(string(v))
}

// IsString reports whether the service sent the value as a JSON string.
func (v Value) IsString() bool {
	return len(v) > 0 && v[0] == '"'
}

// Float parses the displayed text as a number.
func (v Value) Float() (float64, bool) {
	f, err := strconv.ParseFloat(v.String(), 64)
	return f, err == nil
}

// String returns the display text: strings are unquoted, numbers keep
// their literal text.
func (v Value) String() string {
	if v.IsString() {
		var s string
		if err := json.Unmarshal([]byte(v), &s); err == nil {
			return s
		}
	}
	return string(v)
}
