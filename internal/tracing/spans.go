package tracing

// Span attribute keys.
const (
	AttrDatasetName    = "dataset.name"
	AttrDatasetPath    = "dataset.path"
	AttrDatasetReload  = "dataset.reload"
	AttrDatasetTrials  = "dataset.n_trials"
	AttrCollectionName = "collection.name"
	AttrCollectionSize = "collection.size"
)

// Span names.
const (
	SpanLoadInfo       = "dataset.load_info"
	SpanLoadCollection = "collection.load_info"
)
