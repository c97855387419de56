package score

import (
	"fmt"
	"io"
)

// Render writes the human readable report: accuracy, one line per label,
// the macro average, then the flagged and urgent views.
func (r *Report) Render(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "accuracy: %.2f\n", r.Accuracy); err != nil {
		return fmt.Errorf("writing accuracy: %w", err)
	}

	for _, m := range r.Labels {
		if err := renderLine(w, string(m.Label), m.Counts, m.Precision, m.Recall, m.F1); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(w, "macro-averaged F-score: %.2f\n", r.MacroF1); err != nil {
		return fmt.Errorf("writing macro average: %w", err)
	}

	for _, b := range []BinaryMetrics{r.Flagged, r.Urgent} {
		if err := renderLine(w, b.Name, b.Counts, b.Precision, b.Recall, b.F1); err != nil {
			return err
		}
	}

	return nil
}

func renderLine(w io.Writer, name string, c Counts, p, r, f float64) error {
	_, err := fmt.Fprintf(w, "%s\tP R F:\t%.2f (%d/%d)\t%.2f (%d/%d)\t%.2f\n",
		name, p, c.Correct, c.System, r, c.Correct, c.Gold, f)
	if err != nil {
		return fmt.Errorf("writing %s metrics: %w", name, err)
	}
	return nil
}
