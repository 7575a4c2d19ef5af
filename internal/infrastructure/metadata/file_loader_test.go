package metadata_test

import (
	"context"
	"io/fs"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/runmanager/internal/domain/dataset"
	"github.com/zjrosen/runmanager/internal/infrastructure/metadata"
	"github.com/zjrosen/runmanager/internal/testutil"
)

func TestFileLoader_LoadInfo(t *testing.T) {
	root := testutil.NewCollectionBuilder(t).
		WithDataset("a", testutil.WithTrials(120), testutil.WithSubject("M3"), testutil.WithSaveTags("1", "2")).
		Build()
	loader := metadata.NewFileLoader("")

	info, err := loader.LoadInfo(context.Background(), dataset.LoadRequest{Name: "a", Path: filepath.Join(root, "a")})

	require.NoError(t, err)
	require.Equal(t, "M3", info.Subject)
	require.Equal(t, 120, info.NTrials)
	require.Equal(t, 96, info.NChannels)
	require.Equal(t, []string{"1", "2"}, info.SaveTags)
	require.Equal(t, time.Date(2019, time.March, 14, 0, 0, 0, 0, time.UTC), info.CollectionDate)
}

func TestFileLoader_LoadInfo_Errors(t *testing.T) {
	root := testutil.NewCollectionBuilder(t).
		WithDataset("missing", testutil.WithoutInfo()).
		WithDataset("negative", testutil.WithRawInfo("subject: M1\nn_trials: -4\n")).
		WithDataset("baddate", testutil.WithRawInfo("date: yesterday\nn_trials: 1\n")).
		WithDataset("garbage", testutil.WithRawInfo("n_trials: [1, 2\n")).
		Build()
	loader := metadata.NewFileLoader(testutil.InfoFile)

	tests := []struct {
		name    string
		path    string
		wantErr error
	}{
		{name: "missing", path: filepath.Join(root, "missing"), wantErr: fs.ErrNotExist},
		{name: "negative", path: filepath.Join(root, "negative"), wantErr: dataset.ErrInvalidInfo},
		{name: "baddate", path: filepath.Join(root, "baddate"), wantErr: dataset.ErrInvalidInfo},
		{name: "garbage", path: filepath.Join(root, "garbage"), wantErr: dataset.ErrInvalidInfo},
		{name: "nopath", path: "", wantErr: metadata.ErrNoPath},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loader.LoadInfo(context.Background(), dataset.LoadRequest{Name: tt.name, Path: tt.path})
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestFileLoader_LoadInfo_CanceledContext(t *testing.T) {
	root := testutil.TrialCollection(t, 10)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := metadata.NewFileLoader("").LoadInfo(ctx, dataset.LoadRequest{Name: "d0", Path: filepath.Join(root, "d0")})

	require.ErrorIs(t, err, context.Canceled)
}

func TestParseInfo_DateLayouts(t *testing.T) {
	tests := []struct {
		content string
		want    time.Time
	}{
		{content: "date: 2020-01-02\n", want: time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC)},
		{content: "date: \"2020-01-02T10:11:12Z\"\n", want: time.Date(2020, 1, 2, 10, 11, 12, 0, time.UTC)},
		{content: "date: \"2020-01-02 10:11:12\"\n", want: time.Date(2020, 1, 2, 10, 11, 12, 0, time.UTC)},
		{content: "subject: M1\n", want: time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.content, func(t *testing.T) {
			info, err := metadata.ParseInfo([]byte(tt.content))
			require.NoError(t, err)
			require.True(t, tt.want.Equal(info.CollectionDate), "got %v", info.CollectionDate)
		})
	}
}

func TestWriteInfo_RoundTripsThroughLoader(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a")
	want := dataset.Info{
		Subject:        "M2",
		CollectionDate: time.Date(2018, time.June, 1, 0, 0, 0, 0, time.UTC),
		SaveTags:       []string{"4"},
		NTrials:        33,
		NChannels:      12,
	}

	require.NoError(t, metadata.WriteInfo(dir, metadata.DefaultInfoFile, want))
	got, err := metadata.NewFileLoader("").LoadInfo(context.Background(), dataset.LoadRequest{Name: "a", Path: dir})

	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestFileLoader_WithCollection(t *testing.T) {
	root := testutil.StandardCollection(t)
	coll := dataset.NewCollection("standard",
		dataset.WithPath(root),
		dataset.WithLoader(metadata.NewFileLoader("")),
	)
	for _, name := range []string{"a", "b", "c"} {
		coll.NewDataset(name)
	}

	require.NoError(t, coll.LoadInfo(context.Background(), false))
	require.True(t, coll.InfoLoaded())

	maxBatch, minTrials := coll.ComputeMaxBatchSizeForTrainToRatio(3)
	require.Equal(t, 20, maxBatch)
	require.Equal(t, 80, minTrials)
}
