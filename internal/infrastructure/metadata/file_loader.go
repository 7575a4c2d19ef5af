// Package metadata reads dataset info files from a collection root.
package metadata

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/zjrosen/runmanager/internal/domain/dataset"
	"github.com/zjrosen/runmanager/internal/log"
)

// DefaultInfoFile is the info file name looked up inside each dataset directory.
const DefaultInfoFile = "dataset.yaml"

// ErrNoPath is returned when a dataset has no resolved location to read from.
var ErrNoPath = errors.New("dataset has no path")

var dateLayouts = []string{"2006-01-02", time.RFC3339, "2006-01-02 15:04:05"}

// InfoFile is the on-disk shape of a dataset info file.
type InfoFile struct {
	Subject   string   `yaml:"subject"`
	Date      string   `yaml:"date,omitempty"`
	SaveTags  []string `yaml:"save_tags,flow,omitempty"`
	NTrials   int      `yaml:"n_trials"`
	NChannels int      `yaml:"n_channels"`
}

// ToDomain converts the file contents into validated dataset info.
func (f InfoFile) ToDomain() (dataset.Info, error) {
	info := dataset.Info{
		Subject:   f.Subject,
		SaveTags:  f.SaveTags,
		NTrials:   f.NTrials,
		NChannels: f.NChannels,
	}
	if f.Date != "" {
		date, err := parseDate(f.Date)
		if err != nil {
			return dataset.Info{}, err
		}
		info.CollectionDate = date
	}
	if err := info.Validate(); err != nil {
		return dataset.Info{}, err
	}
	return info, nil
}

// FromDomain converts dataset info into its file representation.
func FromDomain(info dataset.Info) InfoFile {
	f := InfoFile{
		Subject:   info.Subject,
		SaveTags:  info.SaveTags,
		NTrials:   info.NTrials,
		NChannels: info.NChannels,
	}
	if !info.CollectionDate.IsZero() {
		f.Date = info.CollectionDate.Format("2006-01-02")
	}
	return f
}

func parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unrecognized date %q", dataset.ErrInvalidInfo, value)
}

// ParseInfo decodes the contents of an info file.
func ParseInfo(content []byte) (dataset.Info, error) {
	var f InfoFile
	if err := yaml.Unmarshal(content, &f); err != nil {
		return dataset.Info{}, fmt.Errorf("%w: %v", dataset.ErrInvalidInfo, err)
	}
	return f.ToDomain()
}

// MarshalInfo encodes info in the info file format.
func MarshalInfo(info dataset.Info) ([]byte, error) {
	return yaml.Marshal(FromDomain(info))
}

// WriteInfo writes info into dir/infoFile, creating dir when needed.
func WriteInfo(dir, infoFile string, info dataset.Info) error {
	content, err := MarshalInfo(info)
	if err != nil {
		return fmt.Errorf("encoding info: %w", err)
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("creating dataset directory: %w", err)
	}
	return os.WriteFile(filepath.Join(dir, infoFile), content, 0600)
}

// Compile-time check that FileLoader implements dataset.InfoLoader.
var _ dataset.InfoLoader = (*FileLoader)(nil)

// FileLoader reads info from <dataset path>/<InfoFile>.
type FileLoader struct {
	infoFile string
}

// NewFileLoader creates a loader. An empty infoFile selects DefaultInfoFile.
func NewFileLoader(infoFile string) *FileLoader {
	if infoFile == "" {
		infoFile = DefaultInfoFile
	}
	return &FileLoader{infoFile: infoFile}
}

// InfoFile returns the info file name the loader reads.
func (l *FileLoader) InfoFile() string {
	return l.infoFile
}

// InfoPath returns the location of the info file for a dataset directory.
func (l *FileLoader) InfoPath(datasetPath string) string {
	return filepath.Join(datasetPath, l.infoFile)
}

// LoadInfo reads and parses the info file. A missing file wraps fs.ErrNotExist.
func (l *FileLoader) LoadInfo(ctx context.Context, req dataset.LoadRequest) (dataset.Info, error) {
	if err := ctx.Err(); err != nil {
		return dataset.Info{}, err
	}
	if req.Path == "" {
		return dataset.Info{}, fmt.Errorf("%s: %w", req.Name, ErrNoPath)
	}

	path := l.InfoPath(req.Path)
	start := time.Now()
	content, err := os.ReadFile(path) //nolint:gosec // path is built from the configured collection root
	if err != nil {
		return dataset.Info{}, fmt.Errorf("reading %s: %w", path, err)
	}

	info, err := ParseInfo(content)
	if err != nil {
		return dataset.Info{}, fmt.Errorf("parsing %s: %w", path, err)
	}

	log.Debug(log.CatDataset, "info file read", "dataset", req.Name, "path", path, "duration", time.Since(start))
	return info, nil
}
