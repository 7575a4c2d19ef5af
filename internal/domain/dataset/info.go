package dataset

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"
)

// Info is the lazily loaded metadata of a dataset.
type Info struct {
	Subject        string
	CollectionDate time.Time
	SaveTags       []string
	NChannels      int
	NTrials        int
}

// Validate rejects negative counts.
func (i Info) Validate() error {
	if i.NTrials < 0 {
		return fmt.Errorf("%w: n_trials %d is negative", ErrInvalidInfo, i.NTrials)
	}
	if i.NChannels < 0 {
		return fmt.Errorf("%w: n_channels %d is negative", ErrInvalidInfo, i.NChannels)
	}
	return nil
}

// clone returns a copy that shares no slices with i.
func (i Info) clone() Info {
	i.SaveTags = slices.Clone(i.SaveTags)
	return i
}

// LoadRequest identifies the dataset whose info should be loaded.
type LoadRequest struct {
	Name string
	// Path is the dataset location resolved against its collection root.
	// Empty when the dataset is not part of a collection with a root path.
	Path string
	// Reload asks loaders to bypass any cached copy.
	Reload bool
}

// InfoLoader loads dataset metadata from backing storage.
type InfoLoader interface {
	LoadInfo(ctx context.Context, req LoadRequest) (Info, error)
}

// InfoLoaderFunc adapts a function to InfoLoader.
type InfoLoaderFunc func(ctx context.Context, req LoadRequest) (Info, error)

// LoadInfo calls f.
func (f InfoLoaderFunc) LoadInfo(ctx context.Context, req LoadRequest) (Info, error) {
	return f(ctx, req)
}

// InfoRow is one row of the dataset summary table.
type InfoRow struct {
	Name      string
	Subject   string
	Date      time.Time
	SaveTags  string   // comma-joined
	Tags      []string // SaveTags as stored, one element per tag
	NTrials   int
	NChannels int
}

func newInfoRow(name string, info Info) InfoRow {
	return InfoRow{
		Name:      name,
		Subject:   info.Subject,
		Date:      info.CollectionDate,
		SaveTags:  strings.Join(info.SaveTags, ","),
		Tags:      slices.Clone(info.SaveTags),
		NTrials:   info.NTrials,
		NChannels: info.NChannels,
	}
}
