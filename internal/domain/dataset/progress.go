package dataset

// ProgressReporter receives one call per dataset visited by LoadInfo.
// position is 1-based. Implementations must not block.
type ProgressReporter interface {
	Progress(position, total int, label string)
}

// ProgressFunc adapts a function to ProgressReporter.
type ProgressFunc func(position, total int, label string)

// Progress calls f.
func (f ProgressFunc) Progress(position, total int, label string) {
	f(position, total, label)
}

type nopProgress struct{}

func (nopProgress) Progress(int, int, string) {}

// NopProgress discards progress reports.
var NopProgress ProgressReporter = nopProgress{}
