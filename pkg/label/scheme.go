package label

// Views holds the binary groupings a label maps to.
type Views struct {
	// Flagged is true for any level of risk (everything but green).
	Flagged bool `json:"flagged" yaml:"flagged"`
	// Urgent is true for high-severity risk (crisis or red).
	Urgent bool `json:"urgent" yaml:"urgent"`
}

// Scheme is an immutable table of labels and their binary views.
type Scheme struct {
	labels []Label
	views  map[Label]Views
}

// DefaultScheme returns the four-way triage scheme.
func DefaultScheme() Scheme {
	return Scheme{
		labels: All(),
		views: map[Label]Views{
			Crisis: {Flagged: true, Urgent: true},
			Red:    {Flagged: true, Urgent: true},
			Amber:  {Flagged: true, Urgent: false},
			Green:  {Flagged: false, Urgent: false},
		},
	}
}

// Labels returns a copy of the scheme labels in display order.
func (s Scheme) Labels() []Label {
	list := make([]Label, len(s.labels))
	copy(list, s.labels)
	return list
}

// Flagged reports whether l counts as flagged.
func (s Scheme) Flagged(l Label) bool {
	return s.views[l].Flagged
}

// Urgent reports whether l counts as urgent.
func (s Scheme) Urgent(l Label) bool {
	return s.views[l].Urgent
}

// Contains reports whether l is part of the scheme.
func (s Scheme) Contains(l Label) bool {
	_, ok := s.views[l]
	return ok
}

// Majority is the trivial class excluded from the default macro average.
const Majority = Green

// DefaultScored returns the labels included in the macro average by default:
// every label except the majority class.
func DefaultScored() []Label {
	list := make([]Label, 0, len(All())-1)
	for _, l := range All() {
		if l != Majority {
			list = append(list, l)
		}
	}
	return list
}
