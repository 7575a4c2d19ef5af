package dataset

import "context"

// CollectionReader defines read-only access to a dataset collection.
// Presentation and launcher code depend on this instead of *Collection.
type CollectionReader interface {
	Name() string
	Comment() string
	Path() string
	NDatasets() int
	DatasetNames() []string
	InfoLoaded() bool
	InfoTable(ctx context.Context) ([]InfoRow, error)
	MinTrials() int
	ComputeMaxBatchSizeForTrainToRatio(trainToTestRatio float64) (maxBatchSize, minTrials int)
}

// Compile-time check that Collection implements CollectionReader.
var _ CollectionReader = (*Collection)(nil)
