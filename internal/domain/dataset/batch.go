package dataset

import "math"

// roundingSlack absorbs float error in products like 20 * 1.1 before rounding.
const roundingSlack = 1e-9

// RunParams are the batch parameters of one training run.
type RunParams struct {
	Name             string
	BatchSize        int
	TrainToTestRatio float64
}

// RequiredTrials returns the trial count a dataset needs to serve a run:
// ceil(batchSize * (trainToTestRatio + 1)). Zero for a non-positive batch size.
func (r RunParams) RequiredTrials() int {
	if r.BatchSize <= 0 {
		return 0
	}
	ratio := r.TrainToTestRatio
	if ratio < 0 || math.IsNaN(ratio) {
		ratio = 0
	}
	return int(math.Ceil(float64(r.BatchSize)*(ratio+1) - roundingSlack))
}

// RequiredTrials returns the largest RequiredTrials over runs, or 0 for none.
func RequiredTrials(runs ...RunParams) int {
	required := 0
	for _, r := range runs {
		required = max(required, r.RequiredTrials())
	}
	return required
}

// MinTrials returns the smallest cached trial count, or 0 for an empty collection.
func (c *Collection) MinTrials() int {
	if len(c.datasets) == 0 {
		return 0
	}
	minTrials := c.datasets[0].info.NTrials
	for _, ds := range c.datasets[1:] {
		minTrials = min(minTrials, ds.info.NTrials)
	}
	return minTrials
}

// ComputeMaxBatchSizeForTrainToRatio returns the largest batch size every
// dataset can fill under the given train/test ratio, and the trial count of
// the smallest dataset. A zero batch size means nothing is feasible.
func (c *Collection) ComputeMaxBatchSizeForTrainToRatio(trainToTestRatio float64) (maxBatchSize, minTrials int) {
	minTrials = c.MinTrials()
	if minTrials <= 0 || trainToTestRatio < 0 || math.IsNaN(trainToTestRatio) {
		return 0, minTrials
	}
	maxBatchSize = int(math.Floor(float64(minTrials)/(trainToTestRatio+1) + roundingSlack))
	return maxBatchSize, minTrials
}
