package presentation

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// NameDiff renders a line diff of two dataset name lists. Removed names are
// prefixed with "-", kept names with a space and added names with "+".
func NameDiff(before, after []string) string {
	dmp := diffmatchpatch.New()

	oldText := joinLines(before)
	newText := joinLines(after)
	oldChars, newChars, lines := dmp.DiffLinesToChars(oldText, newText)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(oldChars, newChars, false), lines)

	var b strings.Builder
	for _, d := range diffs {
		prefix := " "
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			b.WriteString(prefix)
			b.WriteString(line)
		}
	}
	return b.String()
}

func joinLines(names []string) string {
	if len(names) == 0 {
		return ""
	}
	return strings.Join(names, "\n") + "\n"
}
