// Package dataset implements the domain layer for dataset collections.
//
// The package contains no infrastructure code: reading metadata from disk,
// caching and indexing all live behind the InfoLoader interface and are wired
// in by the application layer.
//
// # Core Types
//
// Dataset is a named unit of recorded data. Its metadata (Info) is loaded
// lazily through an InfoLoader and cached on the dataset until a reload is
// requested. A dataset holds a non-owning back-reference to the Collection
// that currently contains it.
//
// Collection is an ordered registry of datasets, unique by name. It provides:
//   - AddDataset/ClearDatasets for membership (re-adding a name replaces in place)
//   - IsMember/FindDataset/MatchDatasetsByName for lookup via a Search variant
//   - LoadInfo/ReloadInfo/InfoLoaded for metadata loading orchestration
//   - FilterDatasets/SelectDatasets/FilterHavingMinimumTrials for shrinking the set
//   - ComputeMaxBatchSizeForTrainToRatio for the cross-dataset batch size ceiling
//   - DeepCopy for an independent snapshot with repaired back-references
//
// # Search
//
// Lookups take a Search value, one of ByName, ByInstance or ByIndex:
//
//	found, idx := coll.IsMember(dataset.ByName{"m1_d1", "m1_d2"})
//	sets, err := coll.FindDataset(dataset.ByIndex{0, 2})
//
// # Batch Size Feasibility
//
// For a train/test ratio r, a dataset with n trials supports batch sizes up to
// floor(n / (r + 1)). The collection-wide ceiling is taken over the dataset
// with the fewest trials. A zero result means no batch size is feasible.
package dataset
