package datasets

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/zjrosen/runmanager/internal/config"
	"github.com/zjrosen/runmanager/internal/domain/dataset"
	"github.com/zjrosen/runmanager/internal/infrastructure/sqlite"
	"github.com/zjrosen/runmanager/internal/testutil"
	"github.com/zjrosen/runmanager/internal/tracing"
)

func newService(t *testing.T, opts Options) *Service {
	t.Helper()
	svc, err := NewService(opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })
	return svc
}

func configFor(root string, datasets ...string) config.Config {
	cfg := config.Defaults()
	cfg.Collection.Name = "test"
	cfg.Collection.Path = root
	cfg.Collection.Datasets = datasets
	return cfg
}

func TestNewService_DiscoversDatasets(t *testing.T) {
	root := testutil.NewCollectionBuilder(t).
		WithDataset("b").
		WithDataset("a").
		WithDataset("empty", testutil.WithoutInfo()).
		Build()

	svc := newService(t, Options{Config: configFor(root)})

	require.Equal(t, root, svc.Root())
	require.Equal(t, []string{"a", "b"}, svc.Collection().DatasetNames())
	require.False(t, svc.Collection().InfoLoaded())
}

func TestNewService_ConfiguredOrderWins(t *testing.T) {
	root := testutil.StandardCollection(t)

	svc := newService(t, Options{Config: configFor(root, "c", "a")})

	require.Equal(t, []string{"c", "a"}, svc.Collection().DatasetNames())
}

func TestNewService_RelativeRootAndOverride(t *testing.T) {
	root := testutil.StandardCollection(t)
	parent, name := filepath.Split(root)

	cfg := configFor(name)
	svc := newService(t, Options{Config: cfg, BaseDir: parent})
	require.Equal(t, root, svc.Root())

	other := testutil.TrialCollection(t, 10)
	svc = newService(t, Options{Config: cfg, BaseDir: parent, Root: other})
	require.Equal(t, []string{"d0"}, svc.Collection().DatasetNames())
}

func TestNewService_RejectsInvalidCollection(t *testing.T) {
	_, err := NewService(Options{Config: configFor(t.TempDir(), "a", "a")})
	require.ErrorContains(t, err, "duplicate dataset")
}

func TestService_InfoTable(t *testing.T) {
	root := testutil.StandardCollection(t)
	svc := newService(t, Options{Config: configFor(root)})

	rows, err := svc.InfoTable(context.Background())

	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, "a", rows[0].Name)
	require.Equal(t, "1,2", rows[0].SaveTags)
	require.Equal(t, 64, rows[2].NChannels)
	require.True(t, svc.Collection().InfoLoaded())
}

func TestService_LoadInfo_MissingInfoFile(t *testing.T) {
	root := testutil.NewCollectionBuilder(t).WithDataset("a", testutil.WithoutInfo()).Build()
	svc := newService(t, Options{Config: configFor(root, "a")})

	err := svc.LoadInfo(context.Background(), false)

	require.ErrorIs(t, err, fs.ErrNotExist)
}

func TestService_Filter(t *testing.T) {
	tests := []struct {
		name      string
		runs      []dataset.RunParams
		minTrials int
		threshold int
		after     []string
	}{
		{
			name:      "runs only",
			runs:      []dataset.RunParams{{BatchSize: 25, TrainToTestRatio: 3}},
			threshold: 100,
			after:     []string{"a", "b"},
		},
		{
			name:      "explicit threshold above runs",
			runs:      []dataset.RunParams{{BatchSize: 20, TrainToTestRatio: 3}},
			minTrials: 120,
			threshold: 120,
			after:     []string{"b"},
		},
		{
			name:      "threshold only",
			minTrials: 80,
			threshold: 80,
			after:     []string{"a", "b", "c"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newService(t, Options{Config: configFor(testutil.StandardCollection(t))})

			result, err := svc.Filter(context.Background(), tt.runs, tt.minTrials)

			require.NoError(t, err)
			require.Equal(t, tt.threshold, result.Threshold)
			require.Equal(t, []string{"a", "b", "c"}, result.Before)
			require.Equal(t, tt.after, result.After)
			require.Equal(t, tt.after, svc.Collection().DatasetNames())
		})
	}
}

func TestService_Filter_NoCriteria(t *testing.T) {
	svc := newService(t, Options{Config: configFor(testutil.StandardCollection(t))})

	_, err := svc.Filter(context.Background(), nil, 0)

	require.ErrorIs(t, err, ErrNoCriteria)
}

func TestService_BatchSizes(t *testing.T) {
	svc := newService(t, Options{Config: configFor(testutil.StandardCollection(t))})

	results, err := svc.BatchSizes(context.Background(), []dataset.RunParams{
		{Name: "r3", BatchSize: 20, TrainToTestRatio: 3},
		{Name: "r1", BatchSize: 50, TrainToTestRatio: 1},
	})

	require.NoError(t, err)
	require.Equal(t, []BatchSize{
		{Run: "r3", Ratio: 3, Configured: 20, MaxBatchSize: 20, MinTrials: 80},
		{Run: "r1", Ratio: 1, Configured: 50, MaxBatchSize: 40, MinTrials: 80},
	}, results)
}

func TestService_Refresh_DiscoveredPicksUpChanges(t *testing.T) {
	root := testutil.StandardCollection(t)
	svc := newService(t, Options{Config: configFor(root)})
	ctx := context.Background()
	require.NoError(t, svc.LoadInfo(ctx, false))

	testutil.UpdateDataset(t, root, "a", testutil.WithTrials(40))
	testutil.UpdateDataset(t, root, "d", testutil.WithTrials(10))
	require.NoError(t, os.RemoveAll(filepath.Join(root, "c")))

	require.NoError(t, svc.Refresh(ctx, []string{"a", "c", "d"}))

	coll := svc.Collection()
	require.Equal(t, []string{"a", "b", "d"}, coll.DatasetNames())
	require.True(t, coll.InfoLoaded())
	require.Equal(t, 10, coll.MinTrials())
	require.Equal(t, 40, coll.Dataset(0).NTrials(), "cached info for a was invalidated")
}

func TestService_Refresh_ConfiguredReloadsChanged(t *testing.T) {
	root := testutil.StandardCollection(t)
	svc := newService(t, Options{Config: configFor(root, "b", "a")})
	ctx := context.Background()
	require.NoError(t, svc.LoadInfo(ctx, false))

	testutil.UpdateDataset(t, root, "a", testutil.WithTrials(7))
	require.NoError(t, svc.Refresh(ctx, []string{"a", "unknown"}))

	require.Equal(t, []string{"b", "a"}, svc.Collection().DatasetNames())
	require.Equal(t, 7, svc.Collection().Dataset(1).NTrials())
}

func TestService_IndexPersistsAndPrunes(t *testing.T) {
	root := testutil.StandardCollection(t)
	cfg := configFor(root)
	cfg.Cache.Enabled = false
	cfg.Index.Enabled = true
	cfg.Index.Path = filepath.Join(t.TempDir(), "index.db")
	ctx := context.Background()

	svc, err := NewService(Options{Config: cfg})
	require.NoError(t, err)
	require.NoError(t, svc.LoadInfo(ctx, false))

	require.NoError(t, os.RemoveAll(filepath.Join(root, "c")))
	require.NoError(t, svc.Refresh(ctx, []string{"c"}))
	require.NoError(t, svc.Close())
	require.NoError(t, svc.Close(), "close is idempotent")

	db, err := sqlite.NewDB(cfg.Index.Path)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	entries, err := db.InfoRepository().List(ctx, root)
	require.NoError(t, err)
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	require.ElementsMatch(t, []string{"a", "b"}, names)
}

func TestService_PruneIndex_DisabledIsNoop(t *testing.T) {
	svc := newService(t, Options{Config: configFor(testutil.StandardCollection(t))})

	n, err := svc.PruneIndex(context.Background())

	require.NoError(t, err)
	require.Zero(t, n)
}

func TestService_LoadInfo_Traced(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	root := testutil.StandardCollection(t)
	svc := newService(t, Options{Config: configFor(root), Tracer: provider.Tracer("test")})

	require.NoError(t, svc.LoadInfo(context.Background(), false))

	spans := recorder.Ended()
	require.Len(t, spans, 4)
	parent := spans[len(spans)-1]
	require.Equal(t, tracing.SpanLoadCollection, parent.Name())
	for _, span := range spans[:3] {
		require.Equal(t, tracing.SpanLoadInfo, span.Name())
		require.Equal(t, parent.SpanContext().SpanID(), span.Parent().SpanID())
	}
}

func TestService_ReportsProgress(t *testing.T) {
	var labels []string
	progress := dataset.ProgressFunc(func(_, _ int, label string) {
		labels = append(labels, label)
	})
	svc := newService(t, Options{Config: configFor(testutil.StandardCollection(t)), Progress: progress})

	require.NoError(t, svc.LoadInfo(context.Background(), false))

	require.Equal(t, []string{"a", "b", "c"}, labels)
}
