package dataset

import (
	"fmt"
	"slices"

	"github.com/zjrosen/runmanager/internal/log"
)

// FilterDatasets keeps the datasets whose mask entry is true, in their
// original order. mask must have one entry per dataset.
func (c *Collection) FilterDatasets(mask []bool) error {
	if len(mask) != len(c.datasets) {
		return fmt.Errorf("%w: got %d, have %d datasets", ErrMaskLength, len(mask), len(c.datasets))
	}

	keep := make([]int, 0, len(mask))
	for i, ok := range mask {
		if ok {
			keep = append(keep, i)
		}
	}
	c.applyFilter(keep)
	return nil
}

// SelectDatasets keeps the datasets at the given positions. Order and
// duplicates in indices are ignored; the kept datasets stay in collection order.
func (c *Collection) SelectDatasets(indices ...int) error {
	var missing []string
	for _, pos := range indices {
		if pos < 0 || pos >= len(c.datasets) {
			missing = append(missing, fmt.Sprintf("#%d", pos))
		}
	}
	if len(missing) > 0 {
		return &NotFoundError{Identifiers: missing}
	}

	keep := slices.Clone(indices)
	slices.Sort(keep)
	c.applyFilter(slices.Compact(keep))
	return nil
}

// FilterHavingMinimumTrials keeps datasets with at least minTrials trials.
// Uses cached trial counts; datasets whose info is not loaded count as zero.
func (c *Collection) FilterHavingMinimumTrials(minTrials int) {
	mask := make([]bool, len(c.datasets))
	for i, ds := range c.datasets {
		mask[i] = ds.info.NTrials >= minTrials
	}
	// mask length always matches
	_ = c.FilterDatasets(mask)
}

// FilterHavingMinimumTrialsForBatchSize keeps datasets with enough trials for
// every run and returns the trial threshold that was applied.
func (c *Collection) FilterHavingMinimumTrialsForBatchSize(runs ...RunParams) int {
	minTrials := RequiredTrials(runs...)
	c.FilterHavingMinimumTrials(minTrials)
	return minTrials
}

func (c *Collection) applyFilter(keep []int) {
	before := len(c.datasets)
	c.retain(keep)
	if removed := before - len(c.datasets); removed > 0 {
		log.Info(log.CatCollection, "filtered datasets", "collection", c.name,
			"removed", removed, "remaining", len(c.datasets))
	}
}
