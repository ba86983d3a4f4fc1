// Package validation holds the upload workflow: the two file slots, the
// threshold and the request lifecycle. It has no UI or transport concerns.
package validation

import (
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/abhisek/obevalidator/internal/client"
)

// FileSuffix is the only accepted file extension.
const FileSuffix = ".txt"

// DefaultThreshold is the alignment threshold used when none is given.
const DefaultThreshold = 0.7

// Slot names one of the two file inputs.
type Slot int

const (
	SlotSyllabus Slot = iota
	SlotQuestions
)

func (s Slot) String() string {
	if s == SlotSyllabus {
		return "syllabus"
	}
	return "question"
}

// AcceptsName reports whether name carries the required suffix.
func AcceptsName(name string) bool {
	return strings.HasSuffix(name, FileSuffix)
}

// ReadFile loads the file at path as a selection. The suffix is checked
// before anything is read.
func ReadFile(path string) (client.File, error) {
	name := filepath.Base(path)
	if !AcceptsName(name) {
		return client.File{}, ErrInvalidFileType
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return client.File{}, err
	}
	return client.File{Name: name, Data: data}, nil
}

// Selection is the user's input for one submission.
type Selection struct {
	Syllabus  *client.File
	Questions *client.File
	Threshold float64
}

// Complete reports whether both slots are populated.
func (s Selection) Complete() bool {
	return s.Syllabus != nil && s.Questions != nil
}

// Workflow tracks a selection through one request lifecycle.
type Workflow struct {
	sel    Selection
	phase  Phase
	result *client.Result
	err    error
}

// NewWorkflow creates an Idle workflow with the given initial threshold.
func NewWorkflow(threshold float64) *Workflow {
	return &Workflow{sel: Selection{Threshold: threshold}}
}

// SelectFile stores f in slot. A name without the .txt suffix is rejected
// with ErrInvalidFileType and the slot keeps its previous file.
func (w *Workflow) SelectFile(slot Slot, f client.File) error {
	if w.phase == InFlight {
		return ErrBusy
	}
	if !AcceptsName(f.Name) {
		return ErrInvalidFileType
	}
	switch slot {
	case SlotSyllabus:
		w.sel.Syllabus = &f
	case SlotQuestions:
		w.sel.Questions = &f
	}
	return nil
}

// File returns the file in slot, or nil.
func (w *Workflow) File(slot Slot) *client.File {
	if slot == SlotSyllabus {
		return w.sel.Syllabus
	}
	return w.sel.Questions
}

// ParseThreshold sets the threshold from user text. Text that is not a
// finite number returns ErrInvalidThreshold and leaves it unchanged.
func (w *Workflow) ParseThreshold(s string) error {
	t, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(t) || math.IsInf(t, 0) {
		return ErrInvalidThreshold
	}
	w.sel.Threshold = t
	return nil
}

// Selection returns the current selection.
func (w *Workflow) Selection() Selection {
	return w.sel
}

// Phase returns the lifecycle phase.
func (w *Workflow) Phase() Phase {
	return w.phase
}

// Begin checks the preconditions and moves to InFlight, returning the
// request to send. On error the phase is unchanged and nothing must be sent.
func (w *Workflow) Begin() (client.Request, error) {
	if w.phase == InFlight {
		return client.Request{}, ErrBusy
	}
	if !w.sel.Complete() {
		return client.Request{}, ErrMissingInput
	}
	if err := w.transition(InFlight); err != nil {
		return client.Request{}, err
	}
	w.err = nil
	return client.Request{
		Syllabus:  *w.sel.Syllabus,
		Questions: *w.sel.Questions,
		Threshold: w.sel.Threshold,
	}, nil
}

// Complete records a successful response.
func (w *Workflow) Complete(res *client.Result) error {
	if err := w.transition(Completed); err != nil {
		return err
	}
	if res == nil {
		res = &client.Result{}
	}
	w.result = res
	return nil
}

// Fail records a failed request. No result is kept.
func (w *Workflow) Fail(err error) error {
	if terr := w.transition(Failed); terr != nil {
		return terr
	}
	w.result = nil
	w.err = err
	return nil
}

// Result returns the result of a Completed workflow, or nil.
func (w *Workflow) Result() *client.Result {
	return w.result
}

// Err returns the error of the last failed request, or nil.
func (w *Workflow) Err() error {
	return w.err
}

func (w *Workflow) transition(to Phase) error {
	if !CanTransition(w.phase, to) {
		return &TransitionError{From: w.phase, To: to}
	}
	w.phase = to
	return nil
}
