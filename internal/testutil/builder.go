// Package testutil provides fixtures for dataset collection tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// InfoFile is the info file name written by the builder.
const InfoFile = "dataset.yaml"

// CollectionBuilder lays out a collection root directory with one
// sub-directory per dataset.
type CollectionBuilder struct {
	t        *testing.T
	root     string
	datasets []datasetData
}

// NewCollectionBuilder creates a builder rooted in a fresh temp directory.
func NewCollectionBuilder(t *testing.T) *CollectionBuilder {
	t.Helper()
	return &CollectionBuilder{t: t, root: t.TempDir()}
}

// WithDataset adds a dataset with optional configuration.
func (b *CollectionBuilder) WithDataset(name string, opts ...DatasetOption) *CollectionBuilder {
	d := defaultDataset(name)
	for _, opt := range opts {
		opt(&d)
	}
	b.datasets = append(b.datasets, d)
	return b
}

// Build writes every dataset and returns the collection root.
func (b *CollectionBuilder) Build() string {
	b.t.Helper()
	for _, d := range b.datasets {
		WriteDataset(b.t, b.root, d)
	}
	return b.root
}

// WriteDataset writes a single dataset directory under root.
func WriteDataset(t *testing.T, root string, d datasetData) {
	t.Helper()

	dir := filepath.Join(root, d.name)
	require.NoError(t, os.MkdirAll(dir, 0750))
	if d.noInfo {
		return
	}

	content := []byte(d.raw)
	if d.raw == "" {
		doc := map[string]any{
			"subject":    d.subject,
			"save_tags":  d.saveTags,
			"n_trials":   d.nTrials,
			"n_channels": d.nChannels,
		}
		if !d.date.IsZero() {
			doc["date"] = d.date.Format("2006-01-02")
		}
		var err error
		content, err = yaml.Marshal(doc)
		require.NoError(t, err)
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, InfoFile), content, 0600))
}

// UpdateDataset rewrites the info file of an existing dataset under root.
func UpdateDataset(t *testing.T, root, name string, opts ...DatasetOption) {
	t.Helper()
	d := defaultDataset(name)
	for _, opt := range opts {
		opt(&d)
	}
	WriteDataset(t, root, d)
}
