package score

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/mchmarny/triage/pkg/label"
	"github.com/mchmarny/triage/pkg/submission"
)

const (
	viewFlagged = "flagged"
	viewUrgent  = "urgent"
)

// Options configures a scoring run.
type Options struct {
	// Scheme maps labels to their binary views.
	Scheme label.Scheme
	// Scored is the label subset averaged into the macro F1.
	Scored []label.Label
}

// DefaultOptions scores every label except the majority class.
func DefaultOptions() Options {
	return Options{
		Scheme: label.DefaultScheme(),
		Scored: label.DefaultScored(),
	}
}

// LabelMetrics holds per-label results.
type LabelMetrics struct {
	Label     label.Label `json:"label" yaml:"label"`
	Counts    Counts      `json:"counts" yaml:"counts"`
	Precision float64     `json:"precision" yaml:"precision"`
	Recall    float64     `json:"recall" yaml:"recall"`
	F1        float64     `json:"f1" yaml:"f1"`
	Scored    bool        `json:"scored" yaml:"scored"`
}

// BinaryMetrics holds results for a derived two-class view.
type BinaryMetrics struct {
	Name      string  `json:"name" yaml:"name"`
	Counts    Counts  `json:"counts" yaml:"counts"`
	Precision float64 `json:"precision" yaml:"precision"`
	Recall    float64 `json:"recall" yaml:"recall"`
	F1        float64 `json:"f1" yaml:"f1"`
}

// Report is the full result of scoring a test collection against gold.
type Report struct {
	Test         string         `json:"test" yaml:"test"`
	Gold         string         `json:"gold" yaml:"gold"`
	Total        int            `json:"total" yaml:"total"`
	Agreed       int            `json:"agreed" yaml:"agreed"`
	Accuracy     float64        `json:"accuracy" yaml:"accuracy"`
	Labels       []LabelMetrics `json:"labels" yaml:"labels"`
	ScoredLabels []label.Label  `json:"scored_labels" yaml:"scored_labels"`
	MacroF1      float64        `json:"macro_f1" yaml:"macro_f1"`
	Flagged      BinaryMetrics  `json:"flagged" yaml:"flagged"`
	Urgent       BinaryMetrics  `json:"urgent" yaml:"urgent"`
}

// Label returns the metrics for l, or false if l was not scored.
func (r *Report) Label(l label.Label) (LabelMetrics, bool) {
	for _, m := range r.Labels {
		if m.Label == l {
			return m, true
		}
	}
	return LabelMetrics{}, false
}

// Score compares test to gold. Both collections must be sorted by ID and
// hold the same IDs position by position.
func Score(test, gold *submission.Collection, opts Options) (*Report, error) {
	if test == nil || gold == nil {
		return nil, errors.New("test and gold collections required")
	}

	if len(opts.Scheme.Labels()) == 0 {
		opts.Scheme = label.DefaultScheme()
	}
	if opts.Scored == nil {
		opts.Scored = label.DefaultScored()
	}

	for _, l := range opts.Scored {
		if !opts.Scheme.Contains(l) {
			return nil, fmt.Errorf("scored label %q is not part of the label scheme", l)
		}
	}

	if test.Len() != gold.Len() {
		return nil, submission.NewCountMismatchError(test.Len(), gold.Len())
	}

	for i := range test.Pairs {
		if test.Pairs[i].ID != gold.Pairs[i].ID {
			return nil, submission.NewAlignmentError(i, test.Pairs[i].ID, gold.Pairs[i].ID)
		}
	}

	testLabels := labelsOf(test)
	goldLabels := labelsOf(gold)

	r := &Report{
		Test:         test.Source,
		Gold:         gold.Source,
		Total:        len(testLabels),
		ScoredLabels: opts.Scored,
	}

	for i := range testLabels {
		if testLabels[i] == goldLabels[i] {
			r.Agreed++
		}
	}
	if r.Total > 0 {
		r.Accuracy = float64(r.Agreed) / float64(r.Total)
	}

	scored := make(map[label.Label]bool, len(opts.Scored))
	for _, l := range opts.Scored {
		scored[l] = true
	}

	var sum float64
	for _, l := range opts.Scheme.Labels() {
		m := labelMetrics(l, testLabels, goldLabels)
		m.Scored = scored[l]
		if m.Scored {
			sum += m.F1
		}
		r.Labels = append(r.Labels, m)
	}
	if len(opts.Scored) > 0 {
		r.MacroF1 = sum / float64(len(opts.Scored))
	}

	r.Flagged = binaryMetrics(viewFlagged, opts.Scheme.Flagged, testLabels, goldLabels)
	r.Urgent = binaryMetrics(viewUrgent, opts.Scheme.Urgent, testLabels, goldLabels)

	slog.Debug("scored",
		"total", r.Total,
		"accuracy", r.Accuracy,
		"macro_f1", r.MacroF1,
		"scored", label.Join(opts.Scored))

	return r, nil
}

func labelsOf(c *submission.Collection) []label.Label {
	list := make([]label.Label, len(c.Pairs))
	for i, p := range c.Pairs {
		list[i] = p.Label
	}
	return list
}

func labelMetrics(l label.Label, test, gold []label.Label) LabelMetrics {
	var c Counts
	for i := range test {
		c.Add(test[i] == l, gold[i] == l)
	}
	return LabelMetrics{
		Label:     l,
		Counts:    c,
		Precision: c.Precision(),
		Recall:    c.Recall(),
		F1:        c.F1(),
	}
}

func binaryMetrics(name string, view func(label.Label) bool, test, gold []label.Label) BinaryMetrics {
	var c Counts
	for i := range test {
		c.Add(view(test[i]), view(gold[i]))
	}
	return BinaryMetrics{
		Name:      name,
		Counts:    c,
		Precision: c.Precision(),
		Recall:    c.Recall(),
		F1:        c.F1(),
	}
}
