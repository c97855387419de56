package submission

import (
	"fmt"
	"strings"
)

// Kind identifies a validation failure category. Kinds are numbered in the
// order the checks are performed, and the number doubles as the exit status.
type Kind int

const (
	KindFormat Kind = iota + 1
	KindInvalidLabel
	KindDuplicateID
	KindUnexpectedID
	KindSizeMismatch
	KindCountMismatch
	KindAlignment
)

var kindNames = map[Kind]string{
	KindFormat:        "format",
	KindInvalidLabel:  "invalid label",
	KindDuplicateID:   "duplicate id",
	KindUnexpectedID:  "unexpected id",
	KindSizeMismatch:  "size mismatch",
	KindCountMismatch: "count mismatch",
	KindAlignment:     "alignment mismatch",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ExitCode returns the process exit status for the kind.
func (k Kind) ExitCode() int {
	return int(k)
}

// ValidationError describes why a file or a pair of files was rejected.
type ValidationError struct {
	Kind Kind
	// Line is the 0-indexed line number, or -1 for whole-file checks.
	Line    int
	Content string
	Source  string
	Detail  string
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	if e.Line >= 0 {
		fmt.Fprintf(&b, "Line %d (%s)", e.Line, e.Content)
		if e.Source != "" {
			fmt.Fprintf(&b, " in %s", e.Source)
		}
		b.WriteString(" ")
	} else if e.Source != "" {
		fmt.Fprintf(&b, "%s: ", e.Source)
	}
	b.WriteString(e.Detail)
	return b.String()
}

// ExitCode returns the process exit status for the error.
func (e *ValidationError) ExitCode() int {
	return e.Kind.ExitCode()
}

func lineError(kind Kind, line int, content, source, detail string) *ValidationError {
	return &ValidationError{
		Kind:    kind,
		Line:    line,
		Content: content,
		Source:  source,
		Detail:  detail,
	}
}

// NewCountMismatchError is returned when test and gold hold a different
// number of pairs.
func NewCountMismatchError(test, gold int) *ValidationError {
	return &ValidationError{
		Kind:   KindCountMismatch,
		Line:   -1,
		Detail: fmt.Sprintf("number of test (%d) and gold (%d) instances is not equal", test, gold),
	}
}

// NewAlignmentError is returned when the sorted test and gold IDs diverge.
func NewAlignmentError(pos int, testID, goldID string) *ValidationError {
	return &ValidationError{
		Kind:   KindAlignment,
		Line:   -1,
		Detail: fmt.Sprintf("position %d ids are not equal (%s, %s)", pos, testID, goldID),
	}
}
