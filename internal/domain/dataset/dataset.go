package dataset

import (
	"context"
	"fmt"
	"path/filepath"
	"time"
)

// Dataset is a named unit of recorded data with lazily loaded metadata.
type Dataset struct {
	name       string
	loader     InfoLoader
	info       Info
	infoLoaded bool

	// collection is a non-owning back-reference maintained by Collection.
	collection *Collection
}

// New creates a dataset that is not yet part of any collection.
// loader may be nil when info is populated with SetInfo.
func New(name string, loader InfoLoader) *Dataset {
	return &Dataset{
		name:   name,
		loader: loader,
	}
}

// Name returns the dataset name.
func (d *Dataset) Name() string {
	return d.name
}

// Collection returns the collection currently holding the dataset, or nil.
func (d *Dataset) Collection() *Collection {
	return d.collection
}

// Path returns the dataset location under its collection root.
// Returns "" when the dataset has no collection or the collection has no path.
func (d *Dataset) Path() string {
	if d.collection == nil || d.collection.path == "" {
		return ""
	}
	return filepath.Join(d.collection.path, d.name)
}

// InfoLoaded reports whether metadata has been loaded or set.
func (d *Dataset) InfoLoaded() bool {
	return d.infoLoaded
}

// Info returns a copy of the cached metadata. Zero-valued until loaded.
func (d *Dataset) Info() Info {
	return d.info.clone()
}

// Subject returns the cached subject identifier.
func (d *Dataset) Subject() string {
	return d.info.Subject
}

// CollectionDate returns the cached recording date.
func (d *Dataset) CollectionDate() time.Time {
	return d.info.CollectionDate
}

// SaveTags returns a copy of the cached save tags.
func (d *Dataset) SaveTags() []string {
	return d.info.clone().SaveTags
}

// NTrials returns the cached trial count.
func (d *Dataset) NTrials() int {
	return d.info.NTrials
}

// NChannels returns the cached channel count.
func (d *Dataset) NChannels() int {
	return d.info.NChannels
}

// SetInfo stores metadata directly and marks the dataset as loaded.
func (d *Dataset) SetInfo(info Info) error {
	if err := info.Validate(); err != nil {
		return fmt.Errorf("dataset %s: %w", d.name, err)
	}
	d.info = info.clone()
	d.infoLoaded = true
	return nil
}

// LoadInfo populates metadata through the loader. It does nothing when info is
// already loaded and reload is false.
func (d *Dataset) LoadInfo(ctx context.Context, reload bool) error {
	if d.infoLoaded && !reload {
		return nil
	}
	if d.loader == nil {
		return fmt.Errorf("dataset %s: %w", d.name, ErrNoLoader)
	}

	info, err := d.loader.LoadInfo(ctx, LoadRequest{
		Name:   d.name,
		Path:   d.Path(),
		Reload: reload,
	})
	if err != nil {
		return fmt.Errorf("loading info for dataset %s: %w", d.name, err)
	}
	return d.SetInfo(info)
}

// clone copies the dataset without its collection back-reference.
func (d *Dataset) clone() *Dataset {
	return &Dataset{
		name:       d.name,
		loader:     d.loader,
		info:       d.info.clone(),
		infoLoaded: d.infoLoaded,
	}
}
