package dataset

import (
	"context"
	"fmt"

	"github.com/zjrosen/runmanager/internal/log"
)

// Collection is an ordered registry of datasets, unique by name.
type Collection struct {
	name    string
	comment string
	path    string

	datasets []*Dataset
	index    map[string]int // name -> position in datasets

	loader   InfoLoader
	progress ProgressReporter
}

// Option configures a Collection.
type Option func(*Collection)

// WithComment sets the collection comment.
func WithComment(comment string) Option {
	return func(c *Collection) {
		c.comment = comment
	}
}

// WithPath sets the root directory used to resolve dataset paths.
func WithPath(path string) Option {
	return func(c *Collection) {
		c.path = path
	}
}

// WithLoader sets the loader handed to datasets created with NewDataset.
func WithLoader(loader InfoLoader) Option {
	return func(c *Collection) {
		c.loader = loader
	}
}

// WithProgress sets the reporter notified during LoadInfo.
func WithProgress(progress ProgressReporter) Option {
	return func(c *Collection) {
		if progress != nil {
			c.progress = progress
		}
	}
}

// NewCollection creates an empty collection.
func NewCollection(name string, opts ...Option) *Collection {
	c := &Collection{
		name:     name,
		datasets: make([]*Dataset, 0),
		index:    make(map[string]int),
		progress: NopProgress,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns the collection name.
func (c *Collection) Name() string { return c.name }

// Comment returns the collection comment.
func (c *Collection) Comment() string { return c.comment }

// Path returns the collection root directory.
func (c *Collection) Path() string { return c.path }

// SetName sets the collection name.
func (c *Collection) SetName(name string) { c.name = name }

// SetComment sets the collection comment.
func (c *Collection) SetComment(comment string) { c.comment = comment }

// SetPath sets the collection root directory.
func (c *Collection) SetPath(path string) { c.path = path }

// SetProgress replaces the progress reporter. nil restores the no-op reporter.
func (c *Collection) SetProgress(progress ProgressReporter) {
	if progress == nil {
		progress = NopProgress
	}
	c.progress = progress
}

// NewDataset creates a dataset using the collection loader and registers it.
func (c *Collection) NewDataset(name string) *Dataset {
	ds := New(name, c.loader)
	c.AddDataset(ds)
	return ds
}

// AddDataset appends ds, or replaces the dataset with the same name in place.
// The dataset's back-reference is set to c, overwriting any previous owner.
// Returns true when an existing dataset was replaced.
func (c *Collection) AddDataset(ds *Dataset) bool {
	if ds == nil {
		return false
	}

	ds.collection = c

	if pos, ok := c.index[ds.name]; ok {
		old := c.datasets[pos]
		if old != ds {
			c.detach(old)
		}
		c.datasets[pos] = ds
		log.Info(log.CatCollection, "replacing dataset with same name",
			"collection", c.name, "dataset", ds.name, "position", pos)
		return true
	}

	c.index[ds.name] = len(c.datasets)
	c.datasets = append(c.datasets, ds)
	return false
}

// ClearDatasets removes every dataset.
func (c *Collection) ClearDatasets() {
	for _, ds := range c.datasets {
		c.detach(ds)
	}
	c.datasets = make([]*Dataset, 0)
	c.index = make(map[string]int)
}

// Datasets returns the datasets in order. The slice is a copy; the datasets are not.
func (c *Collection) Datasets() []*Dataset {
	out := make([]*Dataset, len(c.datasets))
	copy(out, c.datasets)
	return out
}

// Dataset returns the dataset at position i, or nil when out of range.
func (c *Collection) Dataset(i int) *Dataset {
	if i < 0 || i >= len(c.datasets) {
		return nil
	}
	return c.datasets[i]
}

// NDatasets returns the number of datasets.
func (c *Collection) NDatasets() int {
	return len(c.datasets)
}

// DatasetNames returns dataset names in order.
func (c *Collection) DatasetNames() []string {
	names := make([]string, len(c.datasets))
	for i, ds := range c.datasets {
		names[i] = ds.name
	}
	return names
}

// LoadInfo loads metadata for every dataset that is not loaded, or for all of
// them when reload is true. Datasets are visited in order and the first
// failure stops the pass.
func (c *Collection) LoadInfo(ctx context.Context, reload bool) error {
	total := len(c.datasets)
	for i, ds := range c.datasets {
		if ds.infoLoaded && !reload {
			continue
		}
		c.progress.Progress(i+1, total, ds.name)
		log.Debug(log.CatDataset, "loading info", "collection", c.name, "dataset", ds.name,
			"position", i+1, "total", total, "reload", reload)

		if err := ds.LoadInfo(ctx, reload); err != nil {
			log.ErrorErr(log.CatDataset, "info load failed", err, "dataset", ds.name)
			return fmt.Errorf("collection %s: %w", c.name, err)
		}
	}
	return nil
}

// ReloadInfo reloads metadata for every dataset.
func (c *Collection) ReloadInfo(ctx context.Context) error {
	return c.LoadInfo(ctx, true)
}

// InfoLoaded reports whether every dataset has its info loaded.
func (c *Collection) InfoLoaded() bool {
	for _, ds := range c.datasets {
		if !ds.infoLoaded {
			return false
		}
	}
	return true
}

// InfoTable loads any missing info and returns one summary row per dataset.
func (c *Collection) InfoTable(ctx context.Context) ([]InfoRow, error) {
	if err := c.LoadInfo(ctx, false); err != nil {
		return nil, err
	}
	rows := make([]InfoRow, len(c.datasets))
	for i, ds := range c.datasets {
		rows[i] = newInfoRow(ds.name, ds.info)
	}
	return rows, nil
}

// DeepCopy returns an independent collection holding clones of every dataset,
// each pointing back at the copy.
func (c *Collection) DeepCopy() *Collection {
	cp := &Collection{
		name:     c.name,
		comment:  c.comment,
		path:     c.path,
		datasets: make([]*Dataset, len(c.datasets)),
		index:    make(map[string]int, len(c.index)),
		loader:   c.loader,
		progress: c.progress,
	}
	for i, ds := range c.datasets {
		clone := ds.clone()
		clone.collection = cp
		cp.datasets[i] = clone
		cp.index[clone.name] = i
	}
	return cp
}

// retain keeps the datasets at the given ascending positions.
func (c *Collection) retain(keep []int) {
	kept := make([]*Dataset, 0, len(keep))
	selected := make(map[int]bool, len(keep))
	for _, pos := range keep {
		selected[pos] = true
		kept = append(kept, c.datasets[pos])
	}
	for pos, ds := range c.datasets {
		if !selected[pos] {
			c.detach(ds)
		}
	}

	c.datasets = kept
	c.index = make(map[string]int, len(kept))
	for i, ds := range kept {
		c.index[ds.name] = i
	}
}

// detach clears the back-reference of a dataset leaving c.
func (c *Collection) detach(ds *Dataset) {
	if ds.collection == c {
		ds.collection = nil
	}
}
