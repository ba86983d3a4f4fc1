package validation

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/abhisek/obevalidator/internal/client"
)

func txt(name string) client.File {
	return client.File{Name: name, Data: []byte("content of " + name)}
}

func TestSelectFileRejectsNonTxt(t *testing.T) {
	names := []string{"syllabus.pdf", "questions.TXT", "notes.txt.bak", "txt", "", "archive.tar"}

	for _, slot := range []Slot{SlotSyllabus, SlotQuestions} {
		for _, name := range names {
			w := NewWorkflow(DefaultThreshold)
			prior := txt("prior.txt")
			if err := w.SelectFile(slot, prior); err != nil {
				t.Fatalf("prior selection: %v", err)
			}

			err := w.SelectFile(slot, client.File{Name: name})
			if !errors.Is(err, ErrInvalidFileType) {
				t.Errorf("%s/%q: expected ErrInvalidFileType, got %v", slot, name, err)
			}
			if got := w.File(slot); got == nil || got.Name != "prior.txt" {
				t.Errorf("%s/%q: slot changed to %+v", slot, name, got)
			}
		}
	}
}

func TestSelectFileRejectsNonTxtOnEmptySlot(t *testing.T) {
	w := NewWorkflow(DefaultThreshold)
	if err := w.SelectFile(SlotQuestions, client.File{Name: "q.docx"}); !errors.Is(err, ErrInvalidFileType) {
		t.Fatalf("expected ErrInvalidFileType, got %v", err)
	}
	if w.File(SlotQuestions) != nil {
		t.Error("expected empty slot to stay empty")
	}
}

func TestSelectFileReplacesPrior(t *testing.T) {
	w := NewWorkflow(DefaultThreshold)
	_ = w.SelectFile(SlotSyllabus, txt("a.txt"))
	_ = w.SelectFile(SlotSyllabus, txt("b.txt"))

	if got := w.File(SlotSyllabus).Name; got != "b.txt" {
		t.Errorf("expected b.txt, got %q", got)
	}
	if w.File(SlotQuestions) != nil {
		t.Error("questions slot should be untouched")
	}
}

func TestBeginRequiresBothFiles(t *testing.T) {
	tests := []struct {
		name      string
		syllabus  bool
		questions bool
	}{
		{"neither", false, false},
		{"syllabus only", true, false},
		{"questions only", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWorkflow(DefaultThreshold)
			if tt.syllabus {
				_ = w.SelectFile(SlotSyllabus, txt("s.txt"))
			}
			if tt.questions {
				_ = w.SelectFile(SlotQuestions, txt("q.txt"))
			}

			_, err := w.Begin()
			if !errors.Is(err, ErrMissingInput) {
				t.Fatalf("expected ErrMissingInput, got %v", err)
			}
			if w.Phase() != Idle {
				t.Errorf("expected phase Idle, got %s", w.Phase())
			}
		})
	}
}

func TestBeginBuildsRequest(t *testing.T) {
	w := NewWorkflow(DefaultThreshold)
	_ = w.SelectFile(SlotSyllabus, txt("s.txt"))
	_ = w.SelectFile(SlotQuestions, txt("q.txt"))

	req, err := w.Begin()
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if req.Syllabus.Name != "s.txt" || req.Questions.Name != "q.txt" {
		t.Errorf("unexpected files: %q %q", req.Syllabus.Name, req.Questions.Name)
	}
	if client.FormatThreshold(req.Threshold) != "0.7" {
		t.Errorf("expected threshold 0.7, got %v", req.Threshold)
	}
	if w.Phase() != InFlight {
		t.Errorf("expected InFlight, got %s", w.Phase())
	}
}

func TestBeginWhileInFlightIsBusy(t *testing.T) {
	w := NewWorkflow(DefaultThreshold)
	_ = w.SelectFile(SlotSyllabus, txt("s.txt"))
	_ = w.SelectFile(SlotQuestions, txt("q.txt"))
	if _, err := w.Begin(); err != nil {
		t.Fatal(err)
	}

	if _, err := w.Begin(); !errors.Is(err, ErrBusy) {
		t.Errorf("expected ErrBusy, got %v", err)
	}
	if err := w.SelectFile(SlotSyllabus, txt("other.txt")); !errors.Is(err, ErrBusy) {
		t.Errorf("expected ErrBusy for selection in flight, got %v", err)
	}
}

func TestCompleteAndFail(t *testing.T) {
	ready := func() *Workflow {
		w := NewWorkflow(DefaultThreshold)
		_ = w.SelectFile(SlotSyllabus, txt("s.txt"))
		_ = w.SelectFile(SlotQuestions, txt("q.txt"))
		if _, err := w.Begin(); err != nil {
			t.Fatal(err)
		}
		return w
	}

	w := ready()
	res := &client.Result{Accuracy: "0.9"}
	if err := w.Complete(res); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if w.Phase() != Completed || w.Phase().View() != ViewResults {
		t.Errorf("expected Completed/results, got %s", w.Phase())
	}
	if w.Result() != res {
		t.Error("expected result kept")
	}

	w = ready()
	boom := errors.New("boom")
	if err := w.Fail(boom); err != nil {
		t.Fatalf("Fail: %v", err)
	}
	if w.Phase().View() != ViewForm {
		t.Errorf("expected form after failure, got view %d", w.Phase().View())
	}
	if w.Result() != nil {
		t.Error("expected no result after failure")
	}
	if !errors.Is(w.Err(), boom) {
		t.Errorf("expected recorded error, got %v", w.Err())
	}

	// Resubmitting after a failure is allowed and keeps the selection.
	if _, err := w.Begin(); err != nil {
		t.Errorf("expected resubmit after failure, got %v", err)
	}
}

func TestInvalidTransitions(t *testing.T) {
	w := NewWorkflow(DefaultThreshold)

	var terr *TransitionError
	if err := w.Complete(&client.Result{}); !errors.As(err, &terr) {
		t.Errorf("Complete from Idle: expected TransitionError, got %v", err)
	}
	if err := w.Fail(errors.New("x")); !errors.As(err, &terr) {
		t.Errorf("Fail from Idle: expected TransitionError, got %v", err)
	}
	if w.Phase() != Idle {
		t.Errorf("expected phase unchanged, got %s", w.Phase())
	}
}

func TestCanTransition(t *testing.T) {
	allowed := map[[2]Phase]bool{
		{Idle, InFlight}:      true,
		{Failed, InFlight}:    true,
		{InFlight, Completed}: true,
		{InFlight, Failed}:    true,
	}
	phases := []Phase{Idle, InFlight, Completed, Failed}
	for _, from := range phases {
		for _, to := range phases {
			want := allowed[[2]Phase{from, to}]
			if got := CanTransition(from, to); got != want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestPhaseViews(t *testing.T) {
	want := map[Phase]View{Idle: ViewForm, InFlight: ViewLoading, Completed: ViewResults, Failed: ViewForm}
	for p, v := range want {
		if p.View() != v {
			t.Errorf("%s.View() = %d, want %d", p, p.View(), v)
		}
	}
}

func TestParseThreshold(t *testing.T) {
	w := NewWorkflow(DefaultThreshold)

	if err := w.ParseThreshold(" 0.85 "); err != nil {
		t.Fatalf("ParseThreshold: %v", err)
	}
	if w.Selection().Threshold != 0.85 {
		t.Errorf("expected 0.85, got %v", w.Selection().Threshold)
	}

	for _, bad := range []string{"", "abc", "NaN", "Inf", "0.7.1"} {
		if err := w.ParseThreshold(bad); !errors.Is(err, ErrInvalidThreshold) {
			t.Errorf("%q: expected ErrInvalidThreshold, got %v", bad, err)
		}
	}
	if w.Selection().Threshold != 0.85 {
		t.Errorf("threshold changed by invalid input: %v", w.Selection().Threshold)
	}
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "syllabus.txt")
	if err := os.WriteFile(good, []byte("unit 1"), 0o644); err != nil {
		t.Fatal(err)
	}

	f, err := ReadFile(good)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if f.Name != "syllabus.txt" || string(f.Data) != "unit 1" {
		t.Errorf("unexpected file: %+v", f)
	}

	if _, err := ReadFile(filepath.Join(dir, "missing.pdf")); !errors.Is(err, ErrInvalidFileType) {
		t.Errorf("expected ErrInvalidFileType before reading, got %v", err)
	}
	if _, err := ReadFile(filepath.Join(dir, "missing.txt")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

func TestMessage(t *testing.T) {
	tests := map[error]string{
		ErrInvalidFileType:           MsgInvalidFileType,
		ErrMissingInput:              MsgMissingInput,
		ErrInvalidThreshold:          MsgInvalidThreshold,
		errors.New("dial tcp: boom"): MsgFailure,
		&client.ErrRequestFailed{}:   MsgFailure,
	}
	for err, want := range tests {
		if got := Message(err); got != want {
			t.Errorf("Message(%v) = %q, want %q", err, got, want)
		}
	}
}
