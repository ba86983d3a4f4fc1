package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/obevalidator/internal/client"
	"github.com/abhisek/obevalidator/internal/ui/theme"
	"github.com/abhisek/obevalidator/internal/validation"
)

const (
	outputTable = "table"
	outputJSON  = "json"
)

type validateFlags struct {
	syllabus  string
	questions string
	threshold float64
	output    string
	matrixOut string
}

func newValidateCmd() *cobra.Command {
	var f validateFlags

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a question set against a syllabus without the UI",
		Example: "  obevalidator validate --syllabus syllabus.txt --questions questions.txt\n" +
			"  obevalidator validate --syllabus s.txt --questions q.txt --threshold 0.8 --output json --matrix-out cm.png",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, f)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.syllabus, "syllabus", "", "Syllabus file (.txt)")
	fl.StringVar(&f.questions, "questions", "", "Question file (.txt)")
	fl.Float64Var(&f.threshold, "threshold", validation.DefaultThreshold, "Alignment threshold (default from config)")
	fl.StringVarP(&f.output, "output", "o", outputTable, "Output format: table or json")
	fl.StringVar(&f.matrixOut, "matrix-out", "", "Write the confusion matrix PNG to this file")
	return cmd
}

func runValidate(cmd *cobra.Command, f validateFlags) error {
	if f.output != outputTable && f.output != outputJSON {
		return fmt.Errorf("unknown output format %q (want %s or %s)", f.output, outputTable, outputJSON)
	}

	rt, err := setup(cmd)
	if err != nil {
		return err
	}
	defer rt.log.Sync()

	threshold := rt.cfg.Threshold
	if cmd.Flags().Changed("threshold") {
		threshold = f.threshold
	}

	req, err := buildRequest(f.syllabus, f.questions, threshold)
	if err != nil {
		return err
	}

	id := uuid.NewString()
	res, err := rt.client.Validate(client.WithRequestID(cmd.Context(), id), req)
	if err != nil {
		return fmt.Errorf("%s: %w", validation.MsgFailure, err)
	}
	rt.log.Info("validation finished", zap.String("request_id", id), zap.Int("rows", len(res.Results)))

	if f.matrixOut != "" {
		if err := writeMatrix(f.matrixOut, res); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if f.output == outputJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	return printResult(out, res)
}

// buildRequest applies the same selection rules as the workflow screen.
func buildRequest(syllabus, questions string, threshold float64) (client.Request, error) {
	wf := validation.NewWorkflow(threshold)
	files := []struct {
		slot validation.Slot
		path string
	}{
		{validation.SlotSyllabus, syllabus},
		{validation.SlotQuestions, questions},
	}
	for _, in := range files {
		if in.path == "" {
			continue
		}
		file, err := validation.ReadFile(in.path)
		if err != nil {
			return client.Request{}, fmt.Errorf("%s file %s: %w", in.slot, in.path, err)
		}
		if err := wf.SelectFile(in.slot, file); err != nil {
			return client.Request{}, fmt.Errorf("%s file %s: %w", in.slot, in.path, err)
		}
	}

	req, err := wf.Begin()
	if err != nil {
		return client.Request{}, fmt.Errorf("%s: %w", validation.Message(err), err)
	}
	return req, nil
}

func writeMatrix(path string, res *client.Result) error {
	if !res.HasImage() {
		return fmt.Errorf("no confusion matrix in response")
	}
	raw, err := res.DecodeImage()
	if err != nil {
		return fmt.Errorf("decode confusion matrix: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write confusion matrix: %w", err)
	}
	return nil
}

func printResult(w io.Writer, res *client.Result) error {
	rows := make([][]string, 0, len(res.Results))
	for _, r := range res.Results {
		rows = append(rows, []string{r.Question, r.BestMatch, r.SimilarityScore.String(), r.Coherent})
	}

	header := lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(theme.Border)).
		Headers("Question", "Best Match", "Similarity", "Coherent").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return header
			case col == 3 && res.Results[row].IsCoherent():
				return cell.Foreground(theme.Success)
			case col == 3:
				return cell.Foreground(theme.Error)
			}
			return cell
		})

	metrics := fmt.Sprintf("Accuracy: %s   Precision: %s   Recall: %s   F1 Score: %s",
		res.Accuracy, res.Precision, res.Recall, res.F1Score)

	_, err := fmt.Fprintf(w, "%s\n%s\n", t.Render(), metrics)
	return err
}
