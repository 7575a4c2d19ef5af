package dataset

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCollection_FilterDatasets(t *testing.T) {
	coll := mkCollection(t, 1, 2, 3, 4)
	dropped := coll.Dataset(1)

	err := coll.FilterDatasets([]bool{true, false, true, true})

	require.NoError(t, err)
	require.Equal(t, []string{"d0", "d2", "d3"}, coll.DatasetNames())
	require.Nil(t, dropped.Collection())
	requireBackReferences(t, coll)

	found, index := coll.IsMember(ByName{"d3", "d1"})
	require.Equal(t, []bool{true, false}, found)
	require.Equal(t, []int{2, -1}, index, "name index follows the filtered sequence")
}

func TestCollection_FilterDatasets_MaskLength(t *testing.T) {
	coll := mkCollection(t, 1, 2)

	err := coll.FilterDatasets([]bool{true})

	require.ErrorIs(t, err, ErrMaskLength)
	require.Equal(t, 2, coll.NDatasets())
}

func TestCollection_SelectDatasets(t *testing.T) {
	coll := mkCollection(t, 1, 2, 3, 4)

	err := coll.SelectDatasets(3, 0, 3)

	require.NoError(t, err)
	require.Equal(t, []string{"d0", "d3"}, coll.DatasetNames(), "original order kept, duplicates collapsed")
	requireBackReferences(t, coll)
}

func TestCollection_SelectDatasets_OutOfRange(t *testing.T) {
	coll := mkCollection(t, 1, 2)

	err := coll.SelectDatasets(0, 5)

	require.ErrorIs(t, err, ErrNotFound)
	require.Equal(t, 2, coll.NDatasets(), "collection untouched on error")
}

func TestCollection_SelectDatasets_None(t *testing.T) {
	coll := mkCollection(t, 1, 2)

	require.NoError(t, coll.SelectDatasets())
	require.Zero(t, coll.NDatasets())
}

func TestCollection_FilterHavingMinimumTrials(t *testing.T) {
	coll := mkCollection(t, 100, 150, 80)

	coll.FilterHavingMinimumTrials(100)

	require.Equal(t, []string{"d0", "d1"}, coll.DatasetNames())
}

func TestCollection_FilterHavingMinimumTrials_DoesNotLoad(t *testing.T) {
	loader := &stubLoader{infos: map[string]Info{"a": {NTrials: 500}}}
	coll := NewCollection("c", WithLoader(loader))
	coll.NewDataset("a")

	coll.FilterHavingMinimumTrials(1)

	require.Empty(t, loader.calls)
	require.Zero(t, coll.NDatasets(), "unloaded datasets count as zero trials")
}

func TestCollection_FilterHavingMinimumTrialsForBatchSize(t *testing.T) {
	t.Run("batch 20 keeps all", func(t *testing.T) {
		coll := mkCollection(t, 100, 150, 80)

		threshold := coll.FilterHavingMinimumTrialsForBatchSize(RunParams{BatchSize: 20, TrainToTestRatio: 3})

		require.Equal(t, 80, threshold)
		require.Equal(t, []string{"d0", "d1", "d2"}, coll.DatasetNames())
	})

	t.Run("batch 21 drops the 80 trial dataset", func(t *testing.T) {
		coll := mkCollection(t, 100, 150, 80)

		threshold := coll.FilterHavingMinimumTrialsForBatchSize(RunParams{BatchSize: 21, TrainToTestRatio: 3})

		require.Equal(t, 84, threshold)
		require.Equal(t, []string{"d0", "d1"}, coll.DatasetNames())
	})

	t.Run("largest requirement wins", func(t *testing.T) {
		coll := mkCollection(t, 100, 150, 80)

		threshold := coll.FilterHavingMinimumTrialsForBatchSize(
			RunParams{BatchSize: 10, TrainToTestRatio: 1},
			RunParams{BatchSize: 30, TrainToTestRatio: 3},
		)

		require.Equal(t, 120, threshold)
		require.Equal(t, []string{"d1"}, coll.DatasetNames())
	})

	t.Run("no runs keeps all", func(t *testing.T) {
		coll := mkCollection(t, 0, 1)

		require.Zero(t, coll.FilterHavingMinimumTrialsForBatchSize())
		require.Equal(t, 2, coll.NDatasets())
	})
}
