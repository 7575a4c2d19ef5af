package datasets

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/runmanager/internal/config"
	"github.com/zjrosen/runmanager/internal/domain/dataset"
	"github.com/zjrosen/runmanager/internal/infrastructure/metadata"
	"github.com/zjrosen/runmanager/internal/infrastructure/sqlite"
	"github.com/zjrosen/runmanager/internal/log"
	"github.com/zjrosen/runmanager/internal/paths"
	"github.com/zjrosen/runmanager/internal/tracing"
)

// Options configures NewService.
type Options struct {
	Config config.Config
	// BaseDir resolves a relative collection path, usually the config file's directory.
	BaseDir string
	// Root overrides collection.path when set.
	Root string
	// Tracer wraps the loader chain in spans. Nil disables the tracing layer.
	Tracer   trace.Tracer
	Progress dataset.ProgressReporter
}

// Service owns a collection and the loaders that fill its info.
type Service struct {
	cfg        config.Config
	root       string
	infoFile   string
	discovered bool
	tracer     trace.Tracer
	progress   dataset.ProgressReporter

	loader     dataset.InfoLoader
	cache      *metadata.CachedLoader
	db         *sqlite.DB
	collection *dataset.Collection
}

// NewService resolves the collection root, builds the loader chain and
// populates the collection's membership. Info is not loaded.
func NewService(opts Options) (*Service, error) {
	cfg := opts.Config
	if err := config.ValidateCollection(cfg.Collection); err != nil {
		return nil, err
	}

	path := cfg.Collection.Path
	if opts.Root != "" {
		path = opts.Root
	}
	infoFile := cfg.Collection.InfoFile
	if infoFile == "" {
		infoFile = metadata.DefaultInfoFile
	}

	s := &Service{
		cfg:        cfg,
		root:       paths.ResolveCollectionRoot(path, opts.BaseDir),
		infoFile:   infoFile,
		discovered: len(cfg.Collection.Datasets) == 0,
		tracer:     opts.Tracer,
		progress:   opts.Progress,
	}

	if err := s.buildLoader(); err != nil {
		return nil, err
	}
	if err := s.rebuild(); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

func (s *Service) buildLoader() error {
	var loader dataset.InfoLoader = metadata.NewFileLoader(s.infoFile)

	if s.cfg.Index.Enabled {
		indexPath := s.cfg.Index.Path
		if indexPath == "" {
			indexPath = paths.DefaultIndexPath()
		}
		db, err := sqlite.NewDB(paths.ExpandHome(indexPath))
		if err != nil {
			return fmt.Errorf("opening info index: %w", err)
		}
		s.db = db
		loader = sqlite.NewIndexedLoader(db.InfoRepository(), loader, s.infoFile)
	}

	if s.cfg.Cache.Enabled {
		s.cache = metadata.NewCachedLoader(loader, s.cfg.Cache.TTL)
		loader = s.cache
	}

	s.loader = tracing.WrapLoader(s.tracer, loader)
	log.Debug(log.CatCollection, "loader chain built",
		"index", s.db != nil, "cache", s.cache != nil, "tracing", s.tracer != nil)
	return nil
}

// rebuild replaces the collection with a fresh one holding the configured or
// discovered members.
func (s *Service) rebuild() error {
	names := s.cfg.Collection.Datasets
	if s.discovered {
		found, err := metadata.Discover(s.root, s.infoFile)
		if err != nil {
			return fmt.Errorf("discovering datasets: %w", err)
		}
		names = found
	}

	opts := []dataset.Option{
		dataset.WithPath(s.root),
		dataset.WithLoader(s.loader),
		dataset.WithComment(s.cfg.Collection.Comment),
	}
	if s.progress != nil {
		opts = append(opts, dataset.WithProgress(s.progress))
	}
	coll := dataset.NewCollection(s.cfg.Collection.Name, opts...)
	for _, name := range names {
		coll.NewDataset(name)
	}
	s.collection = coll

	log.Info(log.CatCollection, "collection built", "name", coll.Name(), "root", s.root,
		"datasets", coll.NDatasets(), "discovered", s.discovered)
	return nil
}

// Collection returns the managed collection.
func (s *Service) Collection() *dataset.Collection { return s.collection }

// Root returns the resolved collection root.
func (s *Service) Root() string { return s.root }

// InfoFile returns the per-dataset info file name.
func (s *Service) InfoFile() string { return s.infoFile }

// LoadInfo loads collection info under a single collection span.
func (s *Service) LoadInfo(ctx context.Context, reload bool) (err error) {
	ctx, span := tracing.StartCollectionSpan(ctx, s.tracer, s.collection.Name(), s.collection.NDatasets())
	defer func() { tracing.EndSpan(span, err) }()
	return s.collection.LoadInfo(ctx, reload)
}

// InfoTable loads missing info and returns the summary rows.
func (s *Service) InfoTable(ctx context.Context) ([]dataset.InfoRow, error) {
	if err := s.LoadInfo(ctx, false); err != nil {
		return nil, err
	}
	return s.collection.InfoTable(ctx)
}

// Refresh drops cached info for the changed datasets, re-reads membership
// when it is discovered, and loads whatever is missing.
func (s *Service) Refresh(ctx context.Context, changed []string) error {
	if s.cache != nil {
		for _, name := range changed {
			s.cache.Invalidate(ctx, filepath.Join(s.root, name))
		}
	}

	if s.discovered {
		if err := s.rebuild(); err != nil {
			return err
		}
		if _, err := s.PruneIndex(ctx); err != nil {
			log.ErrorErr(log.CatDB, "pruning index failed", err, "root", s.root)
		}
		return s.LoadInfo(ctx, false)
	}

	found, index := s.collection.IsMember(dataset.ByName(changed))
	for i, ok := range found {
		if !ok {
			continue
		}
		if err := s.collection.Dataset(index[i]).LoadInfo(ctx, true); err != nil {
			return fmt.Errorf("collection %s: %w", s.collection.Name(), err)
		}
	}
	return s.LoadInfo(ctx, false)
}

// PruneIndex removes index rows for datasets no longer in the collection.
// It returns zero when the index is disabled.
func (s *Service) PruneIndex(ctx context.Context) (int64, error) {
	if s.db == nil {
		return 0, nil
	}
	return s.db.InfoRepository().Prune(ctx, s.root, s.collection.DatasetNames())
}

// FilterResult reports a filtering pass.
type FilterResult struct {
	Threshold int
	Before    []string
	After     []string
}

// ErrNoCriteria is returned by Filter when neither runs nor a threshold is given.
var ErrNoCriteria = errors.New("no filter criteria: give runs or a minimum trial count")

// Filter loads info and keeps the datasets that serve every run. A positive
// minTrials raises the threshold further.
func (s *Service) Filter(ctx context.Context, runs []dataset.RunParams, minTrials int) (FilterResult, error) {
	if len(runs) == 0 && minTrials <= 0 {
		return FilterResult{}, ErrNoCriteria
	}
	if err := s.LoadInfo(ctx, false); err != nil {
		return FilterResult{}, err
	}

	result := FilterResult{Before: s.collection.DatasetNames()}
	if required := dataset.RequiredTrials(runs...); minTrials > required {
		s.collection.FilterHavingMinimumTrials(minTrials)
		result.Threshold = minTrials
	} else {
		result.Threshold = s.collection.FilterHavingMinimumTrialsForBatchSize(runs...)
	}
	result.After = s.collection.DatasetNames()
	return result, nil
}

// BatchSize is the feasibility of one run against the collection.
type BatchSize struct {
	Run          string
	Ratio        float64
	Configured   int
	MaxBatchSize int
	MinTrials    int
}

// BatchSizes loads info and computes the largest batch size per run ratio.
func (s *Service) BatchSizes(ctx context.Context, runs []dataset.RunParams) ([]BatchSize, error) {
	if err := s.LoadInfo(ctx, false); err != nil {
		return nil, err
	}
	results := make([]BatchSize, len(runs))
	for i, run := range runs {
		maxBatch, minTrials := s.collection.ComputeMaxBatchSizeForTrainToRatio(run.TrainToTestRatio)
		results[i] = BatchSize{
			Run:          run.Name,
			Ratio:        run.TrainToTestRatio,
			Configured:   run.BatchSize,
			MaxBatchSize: maxBatch,
			MinTrials:    minTrials,
		}
	}
	return results, nil
}

// Close releases the index connection, if any.
func (s *Service) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
