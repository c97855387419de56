package label

import (
	"fmt"
	"strings"
)

// Label is a triage label indicating the assessed urgency of a post.
type Label string

const (
	Crisis Label = "crisis"
	Red    Label = "red"
	Amber  Label = "amber"
	Green  Label = "green"
)

// All returns the fixed label set in severity order.
func All() []Label {
	return []Label{Crisis, Red, Amber, Green}
}

// Parse returns the label for s or an error if s is not in the fixed set.
func Parse(s string) (Label, error) {
	l := Label(s)
	if !l.Valid() {
		return "", fmt.Errorf("invalid label: %q", s)
	}
	return l, nil
}

// Valid reports whether l belongs to the fixed label set.
func (l Label) Valid() bool {
	switch l {
	case Crisis, Red, Amber, Green:
		return true
	default:
		return false
	}
}

func (l Label) String() string {
	return string(l)
}

// ParseList parses a comma separated list of labels, e.g. "crisis,red,amber".
// Duplicates are dropped and the result is returned in severity order.
func ParseList(s string) ([]Label, error) {
	seen := make(map[Label]bool)
	for _, part := range strings.Split(s, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		l, err := Parse(part)
		if err != nil {
			return nil, err
		}
		seen[l] = true
	}

	if len(seen) == 0 {
		return nil, fmt.Errorf("no labels in: %q", s)
	}

	list := make([]Label, 0, len(seen))
	for _, l := range All() {
		if seen[l] {
			list = append(list, l)
		}
	}
	return list, nil
}

// Join renders labels as a comma separated list.
func Join(labels []Label) string {
	parts := make([]string, len(labels))
	for i, l := range labels {
		parts[i] = string(l)
	}
	return strings.Join(parts, ",")
}
