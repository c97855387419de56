package submission

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// Constraints is the exact set of IDs a submission must contain.
// A nil or empty set imposes no constraint.
type Constraints map[string]struct{}

// NewConstraints builds a set from ids. Blank ids are skipped.
func NewConstraints(ids ...string) Constraints {
	c := make(Constraints, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		c[id] = struct{}{}
	}
	return c
}

// Empty reports whether the set imposes no constraint.
func (c Constraints) Empty() bool {
	return len(c) == 0
}

// Len returns the number of IDs in the set.
func (c Constraints) Len() int {
	return len(c)
}

// Has reports whether id is in the set.
func (c Constraints) Has(id string) bool {
	_, ok := c[id]
	return ok
}

// Sorted returns the IDs in lexicographic order.
func (c Constraints) Sorted() []string {
	list := make([]string, 0, len(c))
	for id := range c {
		list = append(list, id)
	}
	sort.Strings(list)
	return list
}

// ReadConstraints reads one ID per line from r. Lines are trimmed and blank
// lines skipped.
func ReadConstraints(r io.Reader) (Constraints, error) {
	if r == nil {
		return nil, fmt.Errorf("reader required")
	}

	c := make(Constraints)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, bufio.MaxScanTokenSize), maxLineBytes)
	for scanner.Scan() {
		id := strings.TrimSpace(scanner.Text())
		if id == "" {
			continue
		}
		c[id] = struct{}{}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading constraints: %w", err)
	}

	return c, nil
}

// LoadConstraints reads the constraint file at path.
func LoadConstraints(path string) (Constraints, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening constraint file %s: %w", path, err)
	}
	defer f.Close()

	c, err := ReadConstraints(f)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return c, nil
}
