package testutil

import (
	"fmt"
	"testing"
)

// TrialCollection builds a root with datasets d0, d1, ... holding the given trial counts.
func TrialCollection(t *testing.T, trials ...int) string {
	t.Helper()
	b := NewCollectionBuilder(t)
	for i, n := range trials {
		b.WithDataset(fmt.Sprintf("d%d", i), WithTrials(n))
	}
	return b.Build()
}

// StandardCollection builds the three-dataset root used across command tests:
// a (100 trials), b (150 trials), c (80 trials).
func StandardCollection(t *testing.T) string {
	t.Helper()
	return NewCollectionBuilder(t).
		WithDataset("a", WithTrials(100), WithSubject("M1"), WithSaveTags("1", "2")).
		WithDataset("b", WithTrials(150), WithSubject("M1"), WithSaveTags("3")).
		WithDataset("c", WithTrials(80), WithSubject("M2"), WithChannels(64)).
		Build()
}
