package submission

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/mchmarny/triage/pkg/label"
)

const (
	fieldSeparator = "\t"
	maxLineBytes   = 1 << 20
)

// Pair is a single post ID and its triage label.
type Pair struct {
	ID    string      `json:"id" yaml:"id"`
	Label label.Label `json:"label" yaml:"label"`
}

// Collection is a validated set of pairs sorted by ID.
type Collection struct {
	Source string `json:"source" yaml:"source"`
	Pairs  []Pair `json:"pairs" yaml:"pairs"`
}

// Len returns the number of pairs.
func (c *Collection) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Pairs)
}

// IDs returns the sorted pair IDs.
func (c *Collection) IDs() []string {
	if c == nil {
		return nil
	}
	ids := make([]string, len(c.Pairs))
	for i, p := range c.Pairs {
		ids[i] = p.ID
	}
	return ids
}

// Load validates the file at path and returns its pairs sorted by ID.
// When constraints is non-empty the file ID set must equal it exactly.
func Load(path string, constraints Constraints) (*Collection, error) {
	if path == "" {
		return nil, fmt.Errorf("submission path required")
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening submission file %s: %w", path, err)
	}
	defer f.Close()

	return Read(f, path, constraints)
}

// Read validates pairs from r. The source is only used in diagnostics.
func Read(r io.Reader, source string, constraints Constraints) (*Collection, error) {
	if r == nil {
		return nil, fmt.Errorf("reader required")
	}

	seen := make(map[string]bool)
	pairs := make([]Pair, 0)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, bufio.MaxScanTokenSize), maxLineBytes)

	for i := 0; scanner.Scan(); i++ {
		line := strings.TrimSpace(scanner.Text())

		fields := strings.Split(line, fieldSeparator)
		if len(fields) != 2 {
			return nil, lineError(KindFormat, i, line, source, "does not have two columns")
		}
		id, text := fields[0], fields[1]

		l, err := label.Parse(text)
		if err != nil {
			return nil, lineError(KindInvalidLabel, i, line, source, "has an invalid label")
		}

		if seen[id] {
			return nil, lineError(KindDuplicateID, i, line, source, fmt.Sprintf("repeats id %s", id))
		}
		seen[id] = true

		if !constraints.Empty() && !constraints.Has(id) {
			return nil, lineError(KindUnexpectedID, i, line, source, fmt.Sprintf("has id %s which is not allowed", id))
		}

		pairs = append(pairs, Pair{ID: id, Label: l})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", source, err)
	}

	if !constraints.Empty() && len(seen) != constraints.Len() {
		return nil, &ValidationError{
			Kind:   KindSizeMismatch,
			Line:   -1,
			Source: source,
			Detail: fmt.Sprintf("found %d ids, expected %d", len(seen), constraints.Len()),
		}
	}

	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].ID < pairs[j].ID
	})

	slog.Debug("submission loaded", "source", source, "pairs", len(pairs))

	return &Collection{
		Source: source,
		Pairs:  pairs,
	}, nil
}
